package attendance

import (
	"context"
	"time"
)

// ListQuery is the storage-level form of AttendanceFilter. From/To are day keys, To exclusive.
type ListQuery struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Status     *Status
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}

// AttendanceRepository defines data access methods for attendance records.
// (employee_id, day_key) is unique; Create reports ErrDuplicateRecord when it is taken.
type AttendanceRepository interface {
	// Create inserts a new record, atomically against the unique key
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrAttendanceNotFound when missing
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDay returns nil, nil when the employee has no record that day
	GetByEmployeeAndDay(ctx context.Context, employeeID string, dayKey time.Time) (*Attendance, error)

	// ListByEmployeeAndRange returns records with from <= day_key < to, oldest first
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	// ListByDay returns every record of one day
	ListByDay(ctx context.Context, dayKey time.Time) ([]Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, query ListQuery) ([]Attendance, int64, error)

	// HasPendingLeave reports whether any day in [from, to) has a pending leave request
	HasPendingLeave(ctx context.Context, employeeID string, from, to time.Time) (bool, error)

	// Update writes the record only if its stored version still equals attendance.Version.
	// Returns the stored record with the bumped version, or ErrConcurrentUpdate.
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	// Delete removes a record permanently
	Delete(ctx context.Context, id string) error

	// CreateAbsences inserts the records whose (employee, day) is still free and
	// returns how many were inserted
	CreateAbsences(ctx context.Context, records []Attendance) (int, error)
}

// Transactor runs fn so that every repository call made with the ctx it receives
// commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
