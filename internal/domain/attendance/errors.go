package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrAlreadyCompleted  = errors.New("attendance already completed for today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")

	// Break errors
	ErrBreakAlreadyOpen = errors.New("a break is already in progress")
	ErrNoOpenBreak      = errors.New("no break in progress")

	// Record invariants
	ErrInvalidTimeOrder       = errors.New("check-out time must be after check-in time")
	ErrCheckOutWithoutCheckIn = errors.New("check-out time requires a check-in time")
	ErrDuplicateRecord        = errors.New("attendance record already exists for this employee and day")
	ErrConcurrentUpdate       = errors.New("attendance record was modified by another request")

	// Correction errors
	ErrCorrectionPending   = errors.New("a correction request is already pending for this day")
	ErrNoPendingCorrection = errors.New("no pending correction request for this record")

	// Leave errors
	ErrLeavePending   = errors.New("a pending leave request already exists in this date range")
	ErrNoPendingLeave = errors.New("no pending leave request for this record")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
