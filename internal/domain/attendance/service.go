package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for the daily check-in/out lifecycle
type AttendanceService interface {
	// CheckIn opens today's record for the calling employee
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes today's record
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	StartBreak(ctx context.Context, req StartBreakRequest) (AttendanceResponse, error)
	EndBreak(ctx context.Context) (AttendanceResponse, error)

	// GetStatus reports today's check-in/out booleans
	GetStatus(ctx context.Context) (StatusResponse, error)

	// GetSummary aggregates one month of the caller's records
	GetSummary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)

	// GetMyAttendance retrieves attendance records for the authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (supervisor)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetDaily rolls up every active employee for one day, absent when no record exists
	GetDaily(ctx context.Context, req DailyRequest) (DailyResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// DeleteAttendance permanently removes a record (admin)
	DeleteAttendance(ctx context.Context, id string) error

	// MarkAbsentEmployees materializes absent records for dayKey
	MarkAbsentEmployees(ctx context.Context, dayKey time.Time) (int, error)
}

// CorrectionService defines the correction approval workflow
type CorrectionService interface {
	RequestCorrection(ctx context.Context, req CreateCorrectionRequest) (AttendanceResponse, error)
	ApproveCorrection(ctx context.Context, req ApproveCorrectionRequest) (AttendanceResponse, error)
	RejectCorrection(ctx context.Context, req RejectCorrectionRequest) (AttendanceResponse, error)
}

// LeaveService defines the leave workflow
type LeaveService interface {
	RequestLeave(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	ApproveLeave(ctx context.Context, req ApproveLeaveRequest) (AttendanceResponse, error)
	RejectLeave(ctx context.Context, req RejectLeaveRequest) (AttendanceResponse, error)
}
