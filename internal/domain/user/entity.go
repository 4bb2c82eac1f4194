package user

type Role string

const (
	RoleEmployee   Role = "employee"   // Regular employee
	RoleSupervisor Role = "supervisor" // Can approve corrections/leave and see everyone's attendance
	RoleAdmin      Role = "admin"      // Supervisor plus administrative deletes
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated identity the HTTP layer hands to the core.
type Caller struct {
	UserID     string
	EmployeeID *string
	Email      string
	Role       Role
}

// IsSupervisor checks if caller is supervisor or admin
func (c Caller) IsSupervisor() bool {
	return c.Role == RoleSupervisor || c.Role == RoleAdmin
}

// IsAdmin checks if caller is admin
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
