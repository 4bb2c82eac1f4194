package notification

import (
	"time"
)

// EventType is the realtime event name sent to subscribers.
type EventType string

const (
	TypeAttendanceMarked    EventType = "attendance-marked"
	TypeAttendanceUpdated   EventType = "attendance-updated"
	TypeBreakStarted        EventType = "break-started"
	TypeBreakEnded          EventType = "break-ended"
	TypeCorrectionRequested EventType = "correction-requested"
	TypeCorrectionApproved  EventType = "correction-approved"
	TypeCorrectionRejected  EventType = "correction-rejected"
	TypeLeaveRequested      EventType = "leave-requested"
	TypeLeaveApproved       EventType = "leave-approved"
	TypeLeaveRejected       EventType = "leave-rejected"
)

const ChannelSupervisors = "supervisors"

// EmployeeChannel is the personal channel of one employee.
func EmployeeChannel(employeeID string) string {
	return "employee:" + employeeID
}

type Timestamps struct {
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// Event is the envelope published on a channel.
type Event struct {
	Type         EventType  `json:"type"`
	RecordID     string     `json:"record_id"`
	EmployeeRef  string     `json:"employee_ref"`
	EmployeeName string     `json:"employee_name"`
	Date         string     `json:"date"`
	Timestamps   Timestamps `json:"timestamps"`
	Status       string     `json:"status"`
	Location     *string    `json:"location,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
