package user

type Permission string

const (
	// Self Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionCorrectionCreate  Permission = "correction.create"
	PermissionLeaveCreate       Permission = "leave.create"

	// Supervision
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionCorrectionApprove Permission = "correction.approve"
	PermissionLeaveApprove      Permission = "leave.approve"
	PermissionStreamSubscribe   Permission = "stream.subscribe"

	// Administration
	PermissionAttendanceDelete Permission = "attendance.delete"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionCorrectionCreate,
		PermissionLeaveCreate,
		PermissionAttendanceViewAll,
		PermissionCorrectionApprove,
		PermissionLeaveApprove,
		PermissionStreamSubscribe,
		PermissionAttendanceDelete,
	},
	RoleSupervisor: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionCorrectionCreate,
		PermissionLeaveCreate,
		PermissionAttendanceViewAll,
		PermissionCorrectionApprove,
		PermissionLeaveApprove,
		PermissionStreamSubscribe,
	},
	RoleEmployee: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionCorrectionCreate,
		PermissionLeaveCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
