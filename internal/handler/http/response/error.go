package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity and access
	case errors.Is(err, user.ErrCallerMissing):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, "Employee profile required")
	case errors.Is(err, user.ErrSupervisorAccessRequired):
		Forbidden(w, "Supervisor access required")
	case errors.Is(err, user.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee directory
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		NotFound(w, "No check-in found for today")
	case errors.Is(err, attendance.ErrNoOpenBreak):
		NotFound(w, "No open break found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		Conflict(w, "Attendance for today is already completed")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrDuplicateRecord):
		Conflict(w, "Attendance record for this day already exists")
	case errors.Is(err, attendance.ErrConcurrentUpdate):
		Conflict(w, "Attendance record was modified by another request")
	case errors.Is(err, attendance.ErrBreakAlreadyOpen):
		Conflict(w, "A break is already in progress")
	case errors.Is(err, attendance.ErrCorrectionPending):
		Conflict(w, "A correction request is already pending for this day")
	case errors.Is(err, attendance.ErrNoPendingCorrection):
		Conflict(w, "No pending correction request")
	case errors.Is(err, attendance.ErrLeavePending):
		Conflict(w, "A pending leave request overlaps these dates")
	case errors.Is(err, attendance.ErrNoPendingLeave):
		Conflict(w, "No pending leave request")
	case errors.Is(err, attendance.ErrInvalidTimeOrder):
		ValidationError(w, map[string]string{"check_out_time": "check-out must be after check-in"})
	case errors.Is(err, attendance.ErrCheckOutWithoutCheckIn):
		ValidationError(w, map[string]string{"check_in_time": "check-out requires a check-in"})

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
