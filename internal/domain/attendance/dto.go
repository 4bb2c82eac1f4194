package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	LocationKind string  `json:"location_kind" validate:"omitempty,oneof=office remote field"`
	Method       string  `json:"method" validate:"omitempty,oneof=web mobile kiosk"`
	DeviceInfo   *string `json:"device_info,omitempty" validate:"omitempty,max=255"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=1000"`

	// Filled by the handler from the request.
	SourceIP  string `json:"-"`
	UserAgent string `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	return validator.Struct(r).Err()
}

// CheckInfo builds the stored sub-record, applying defaults.
func (r *CheckInRequest) CheckInfo(at time.Time) CheckInfo {
	return newCheckInfo(at, r.LocationKind, r.Method, r.SourceIP, r.DeviceInfo, r.UserAgent)
}

type CheckOutRequest struct {
	LocationKind string  `json:"location_kind" validate:"omitempty,oneof=office remote field"`
	Method       string  `json:"method" validate:"omitempty,oneof=web mobile kiosk"`
	DeviceInfo   *string `json:"device_info,omitempty" validate:"omitempty,max=255"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=1000"`

	SourceIP  string `json:"-"`
	UserAgent string `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	return validator.Struct(r).Err()
}

func (r *CheckOutRequest) CheckInfo(at time.Time) CheckInfo {
	return newCheckInfo(at, r.LocationKind, r.Method, r.SourceIP, r.DeviceInfo, r.UserAgent)
}

func newCheckInfo(at time.Time, kind, method, sourceIP string, deviceInfo *string, userAgent string) CheckInfo {
	info := CheckInfo{
		Time:         at.UTC(),
		LocationKind: LocationOffice,
		Method:       MethodWeb,
	}
	if kind != "" {
		info.LocationKind = LocationKind(kind)
	}
	if method != "" {
		info.Method = Method(method)
	}
	if sourceIP != "" {
		info.SourceIP = &sourceIP
	}
	if deviceInfo != nil && strings.TrimSpace(*deviceInfo) != "" {
		info.DeviceInfo = deviceInfo
	} else if userAgent != "" {
		if len(userAgent) > 255 {
			userAgent = userAgent[:255]
		}
		info.DeviceInfo = &userAgent
	}
	return info
}

type StartBreakRequest struct {
	Kind string `json:"kind" validate:"omitempty,oneof=lunch short personal"`
}

func (r *StartBreakRequest) Validate() error {
	return validator.Struct(r).Err()
}

// ========================================
// RESPONSES
// ========================================

type CheckInfoResponse struct {
	Time         string  `json:"time"`
	LocationKind string  `json:"location_kind"`
	Method       string  `json:"method"`
	SourceIP     *string `json:"source_ip,omitempty"`
	DeviceInfo   *string `json:"device_info,omitempty"`
}

type BreakResponse struct {
	Start           string  `json:"start"`
	End             *string `json:"end,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	Kind            string  `json:"kind"`
}

type CorrectionResponse struct {
	RequestedBy         string  `json:"requested_by"`
	Reason              string  `json:"reason"`
	CorrectCheckInTime  *string `json:"correct_check_in_time,omitempty"`
	CorrectCheckOutTime *string `json:"correct_check_out_time,omitempty"`
	Status              string  `json:"status"`
	ApprovedBy          *string `json:"approved_by,omitempty"`
	ApprovedAt          *string `json:"approved_at,omitempty"`
	RequestedAt         string  `json:"requested_at"`
	AdminNotes          *string `json:"admin_notes,omitempty"`
}

type LeaveRequestResponse struct {
	LeaveType      string  `json:"leave_type"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`
	RequestedAt    string  `json:"requested_at"`
	AdminNotes     *string `json:"admin_notes,omitempty"`
	PreviousStatus *string `json:"previous_status,omitempty"`
}

type AttendanceResponse struct {
	ID                string                `json:"id"`
	EmployeeID        string                `json:"employee_id"`
	EmployeeName      *string               `json:"employee_name,omitempty"`
	Date              string                `json:"date"`
	CheckIn           *CheckInfoResponse    `json:"check_in,omitempty"`
	CheckOut          *CheckInfoResponse    `json:"check_out,omitempty"`
	Status            string                `json:"status"`
	WorkHours         float64               `json:"work_hours"`
	ProductiveHours   float64               `json:"productive_hours"`
	IsLate            bool                  `json:"is_late"`
	LateBy            int                   `json:"late_by"`
	Breaks            []BreakResponse       `json:"breaks"`
	CorrectionRequest *CorrectionResponse   `json:"correction_request,omitempty"`
	LeaveRequest      *LeaveRequestResponse `json:"leave_request,omitempty"`
	Notes             *string               `json:"notes,omitempty"`
	Version           int                   `json:"version"`
	CreatedAt         string                `json:"created_at"`
	UpdatedAt         string                `json:"updated_at"`
}

// NewAttendanceResponse renders times in the organization's zone.
func NewAttendanceResponse(a Attendance, clk clock.Clock) AttendanceResponse {
	loc := clk.Location()
	format := func(t time.Time) string { return t.In(loc).Format(time.RFC3339) }
	formatPtr := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		s := format(*t)
		return &s
	}
	checkInfo := func(c *CheckInfo) *CheckInfoResponse {
		if c == nil {
			return nil
		}
		return &CheckInfoResponse{
			Time:         format(c.Time),
			LocationKind: string(c.LocationKind),
			Method:       string(c.Method),
			SourceIP:     c.SourceIP,
			DeviceInfo:   c.DeviceInfo,
		}
	}

	resp := AttendanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		Date:            clk.FormatDay(a.DayKey),
		CheckIn:         checkInfo(a.CheckIn),
		CheckOut:        checkInfo(a.CheckOut),
		Status:          string(a.Status),
		WorkHours:       a.WorkHours,
		ProductiveHours: a.ProductiveHours,
		IsLate:          a.IsLate,
		LateBy:          a.LateBy,
		Breaks:          make([]BreakResponse, 0, len(a.Breaks)),
		Notes:           a.Notes,
		Version:         a.Version,
		CreatedAt:       format(a.CreatedAt),
		UpdatedAt:       format(a.UpdatedAt),
	}

	for _, b := range a.Breaks {
		resp.Breaks = append(resp.Breaks, BreakResponse{
			Start:           format(b.Start),
			End:             formatPtr(b.End),
			DurationMinutes: b.DurationMinutes,
			Kind:            string(b.Kind),
		})
	}

	if c := a.CorrectionRequest; c != nil {
		resp.CorrectionRequest = &CorrectionResponse{
			RequestedBy:         c.RequestedBy,
			Reason:              c.Reason,
			CorrectCheckInTime:  formatPtr(c.CorrectCheckInTime),
			CorrectCheckOutTime: formatPtr(c.CorrectCheckOutTime),
			Status:              string(c.Status),
			ApprovedBy:          c.ApprovedBy,
			ApprovedAt:          formatPtr(c.ApprovedAt),
			RequestedAt:         format(c.RequestedAt),
			AdminNotes:          c.AdminNotes,
		}
	}

	if l := a.LeaveRequest; l != nil {
		lr := &LeaveRequestResponse{
			LeaveType:   string(l.LeaveType),
			Reason:      l.Reason,
			Status:      string(l.Status),
			ApprovedBy:  l.ApprovedBy,
			ApprovedAt:  formatPtr(l.ApprovedAt),
			RequestedAt: format(l.RequestedAt),
			AdminNotes:  l.AdminNotes,
		}
		if l.PreviousStatus != nil {
			prev := string(*l.PreviousStatus)
			lr.PreviousStatus = &prev
		}
		resp.LeaveRequest = lr
	}

	return resp
}

type StatusResponse struct {
	Date         string              `json:"date"`
	IsCheckedIn  bool                `json:"is_checked_in"`
	IsCheckedOut bool                `json:"is_checked_out"`
	OnBreak      bool                `json:"on_break"`
	Attendance   *AttendanceResponse `json:"attendance,omitempty"`
}

// ========================================
// SUMMARY / LISTING
// ========================================

type SummaryRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=1970,max=9999"`
}

func (r *SummaryRequest) Validate() error {
	return validator.Struct(r).Err()
}

type SummaryResponse struct {
	Month                int            `json:"month"`
	Year                 int            `json:"year"`
	TotalRecords         int            `json:"total_records"`
	StatusCounts         map[string]int `json:"status_counts"`
	TotalWorkHours       float64        `json:"total_work_hours"`
	AverageWorkHours     float64        `json:"average_work_hours"`
	TotalProductiveHours float64        `json:"total_productive_hours"`
	TotalLateMinutes     int            `json:"total_late_minutes"`
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, status, check_in_time
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validatePaging(&errs, &f.Page, &f.Limit)
	validateRange(&errs, f.StartDate, f.EndDate)

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "invalid status")
	}

	if f.SortBy == "" {
		f.SortBy = "date"
	} else if !validator.IsInSlice(f.SortBy, []string{"date", "status", "check_in_time"}) {
		errs.Add("sort_by", "sort_by must be one of: date, status, check_in_time")
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be asc or desc")
	}

	return errs.Err()
}

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	validatePaging(&errs, &f.Page, &f.Limit)
	validateRange(&errs, f.StartDate, f.EndDate)
	return errs.Err()
}

func validatePaging(errs *validator.ValidationErrors, page, limit *int) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1
	}
	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
}

func validateRange(errs *validator.ValidationErrors, start, end *string) {
	var s, e time.Time
	var okStart, okEnd bool
	if start != nil {
		if s, okStart = validator.IsValidDate(*start); !okStart {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if end != nil {
		if e, okEnd = validator.IsValidDate(*end); !okEnd {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if okStart && okEnd && s.After(e) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalItems  int64                `json:"total_items"`
	TotalPages  int                  `json:"total_pages"`
}

type DailyRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *DailyRequest) Validate() error {
	return validator.Struct(r).Err()
}

type DailyEntry struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Position     *string `json:"position,omitempty"`
	AttendanceID *string `json:"attendance_id,omitempty"`
	Status       string  `json:"status"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	IsLate       bool    `json:"is_late"`
	LateBy       int     `json:"late_by"`
	WorkHours    float64 `json:"work_hours"`
}

type DailyResponse struct {
	Date         string         `json:"date"`
	Employees    []DailyEntry   `json:"employees"`
	StatusCounts map[string]int `json:"status_counts"`
}

// ========================================
// CORRECTION DTOs
// ========================================

type CreateCorrectionRequest struct {
	Date                string  `json:"date" validate:"required,datetime=2006-01-02"`
	Reason              string  `json:"reason" validate:"required,max=1000"`
	CorrectCheckInTime  *string `json:"correct_check_in_time,omitempty"`
	CorrectCheckOutTime *string `json:"correct_check_out_time,omitempty"`
}

func (r *CreateCorrectionRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Reason != "" && validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	if r.CorrectCheckInTime == nil && r.CorrectCheckOutTime == nil {
		errs.Add("correct_check_in_time", "at least one of correct_check_in_time or correct_check_out_time is required")
	}
	if r.CorrectCheckInTime != nil && !isCorrectionTime(*r.CorrectCheckInTime) {
		errs.Add("correct_check_in_time", "correct_check_in_time must be RFC3339 or HH:MM")
	}
	if r.CorrectCheckOutTime != nil && !isCorrectionTime(*r.CorrectCheckOutTime) {
		errs.Add("correct_check_out_time", "correct_check_out_time must be RFC3339 or HH:MM")
	}

	return errs.Err()
}

func isCorrectionTime(s string) bool {
	if _, ok := validator.IsValidDateTime(s); ok {
		return true
	}
	return validator.IsValidTimeOfDay(s)
}

// ResolveCorrectionTime turns an RFC3339 instant or an HH:MM wall time on dayKey into an instant.
func ResolveCorrectionTime(s string, dayKey time.Time) (time.Time, error) {
	if t, ok := validator.IsValidDateTime(s); ok {
		return t.UTC(), nil
	}
	tod, err := clock.ParseTimeOfDay(s)
	if err != nil {
		return time.Time{}, err
	}
	return dayKey.Add(tod), nil
}

type ApproveCorrectionRequest struct {
	ID         string  `json:"-"`
	AdminNotes *string `json:"admin_notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *ApproveCorrectionRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	return errs.Err()
}

type RejectCorrectionRequest struct {
	ID         string `json:"-"`
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}

func (r *RejectCorrectionRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if validator.IsEmpty(r.AdminNotes) {
		errs.Add("admin_notes", "admin_notes is required when rejecting")
	}
	return errs.Err()
}

// ========================================
// LEAVE DTOs
// ========================================

// MaxLeaveDays caps a single leave submission.
const MaxLeaveDays = 90

type CreateLeaveRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	LeaveType string `json:"leave_type" validate:"required,oneof=annual sick personal unpaid other"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

func (r *CreateLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	if start.After(end) {
		errs.Add("end_date", "end_date must not be before start_date")
	} else if int(end.Sub(start).Hours()/24)+1 > MaxLeaveDays {
		errs.Add("end_date", "leave must not span more than 90 days")
	}

	return errs.Err()
}

type ApproveLeaveRequest struct {
	ID         string  `json:"-"`
	AdminNotes *string `json:"admin_notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *ApproveLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	return errs.Err()
}

type RejectLeaveRequest struct {
	ID         string `json:"-"`
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}

func (r *RejectLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if validator.IsEmpty(r.AdminNotes) {
		errs.Add("admin_notes", "admin_notes is required when rejecting")
	}
	return errs.Err()
}

type LeaveResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Days      int                  `json:"days"`
	Records   []AttendanceResponse `json:"records"`
}
