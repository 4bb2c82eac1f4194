package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent      Status = "present"
	StatusAbsent       Status = "absent"
	StatusLate         Status = "late"
	StatusLeave        Status = "leave"
	StatusHalfDay      Status = "half-day"
	StatusWorkFromHome Status = "work-from-home"
)

// AllStatuses returns every status in display order
func AllStatuses() []Status {
	return []Status{StatusPresent, StatusLate, StatusAbsent, StatusLeave, StatusHalfDay, StatusWorkFromHome}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusLeave, StatusHalfDay, StatusWorkFromHome:
		return true
	}
	return false
}

type LocationKind string

const (
	LocationOffice LocationKind = "office"
	LocationRemote LocationKind = "remote"
	LocationField  LocationKind = "field"
)

type Method string

const (
	MethodWeb    Method = "web"
	MethodMobile Method = "mobile"
	MethodKiosk  Method = "kiosk"
)

type BreakKind string

const (
	BreakLunch    BreakKind = "lunch"
	BreakShort    BreakKind = "short"
	BreakPersonal BreakKind = "personal"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type LeaveType string

const (
	LeaveAnnual   LeaveType = "annual"
	LeaveSick     LeaveType = "sick"
	LeavePersonal LeaveType = "personal"
	LeaveUnpaid   LeaveType = "unpaid"
	LeaveOther    LeaveType = "other"
)

// CheckInfo describes one check-in or check-out event.
type CheckInfo struct {
	Time         time.Time    `json:"time"`
	LocationKind LocationKind `json:"location_kind"`
	Method       Method       `json:"method"`
	SourceIP     *string      `json:"source_ip,omitempty"`
	DeviceInfo   *string      `json:"device_info,omitempty"`
}

type Break struct {
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Kind            BreakKind  `json:"kind"`
}

// CorrectionRequest is the single correction slot of a record.
type CorrectionRequest struct {
	RequestedBy         string        `json:"requested_by"`
	Reason              string        `json:"reason"`
	CorrectCheckInTime  *time.Time    `json:"correct_check_in_time,omitempty"`
	CorrectCheckOutTime *time.Time    `json:"correct_check_out_time,omitempty"`
	Status              RequestStatus `json:"status"`
	ApprovedBy          *string       `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time    `json:"approved_at,omitempty"`
	RequestedAt         time.Time     `json:"requested_at"`
	AdminNotes          *string       `json:"admin_notes,omitempty"`
}

// LeaveRequest is the leave slot of one day. PreviousStatus keeps the status the
// record had before the leave overwrote it.
type LeaveRequest struct {
	LeaveType      LeaveType     `json:"leave_type"`
	Reason         string        `json:"reason"`
	Status         RequestStatus `json:"status"`
	ApprovedBy     *string       `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty"`
	RequestedAt    time.Time     `json:"requested_at"`
	AdminNotes     *string       `json:"admin_notes,omitempty"`
	PreviousStatus *Status       `json:"previous_status,omitempty"`
}

type Attendance struct {
	ID                string
	EmployeeID        string
	DayKey            time.Time
	CheckIn           *CheckInfo
	CheckOut          *CheckInfo
	Status            Status
	WorkHours         float64
	ProductiveHours   float64
	IsLate            bool
	LateBy            int
	Breaks            []Break
	CorrectionRequest *CorrectionRequest
	LeaveRequest      *LeaveRequest
	Notes             *string
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO / Join
	EmployeeName *string
}

func (a *Attendance) IsCheckedIn() bool {
	return a.CheckIn != nil
}

func (a *Attendance) IsCheckedOut() bool {
	return a.CheckOut != nil
}

// OpenBreak returns the index of the break without an end, or -1.
func (a *Attendance) OpenBreak() int {
	for i := len(a.Breaks) - 1; i >= 0; i-- {
		if a.Breaks[i].End == nil {
			return i
		}
	}
	return -1
}

// TotalBreakMinutes sums closed breaks only.
func (a *Attendance) TotalBreakMinutes() int {
	total := 0
	for _, b := range a.Breaks {
		if b.End != nil {
			total += b.DurationMinutes
		}
	}
	return total
}

func (a *Attendance) HasPendingCorrection() bool {
	return a.CorrectionRequest != nil && a.CorrectionRequest.Status == RequestPending
}

func (a *Attendance) HasPendingLeave() bool {
	return a.LeaveRequest != nil && a.LeaveRequest.Status == RequestPending
}

// AppendNote adds a line to Notes.
func (a *Attendance) AppendNote(note string) {
	if note == "" {
		return
	}
	if a.Notes == nil || *a.Notes == "" {
		a.Notes = &note
		return
	}
	joined := *a.Notes + "\n" + note
	a.Notes = &joined
}
