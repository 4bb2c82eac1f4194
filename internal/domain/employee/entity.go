package employee

import "time"

type Employee struct {
	ID               string
	UserID           *string
	EmployeeCode     string
	FullName         string
	Email            string
	Position         *string
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusInactive   EmploymentStatus = "inactive"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee is expected to attend.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
