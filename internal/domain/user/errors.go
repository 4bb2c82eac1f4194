package user

import "errors"

var (
	ErrCallerMissing            = errors.New("caller identity missing")
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrEmployeeProfileRequired  = errors.New("caller has no employee profile")
	ErrSupervisorAccessRequired = errors.New("supervisor access required")
	ErrAdminAccessRequired      = errors.New("admin access required")
	ErrInsufficientPermissions  = errors.New("insufficient permissions")
)
