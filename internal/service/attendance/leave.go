package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	base
	transactor attendance.Transactor
}

func NewLeaveService(
	repo attendance.AttendanceRepository,
	transactor attendance.Transactor,
	directory employee.Directory,
	notifier notification.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) attendance.LeaveService {
	return &LeaveServiceImpl{
		base:       newBase(repo, directory, notifier, clk, logger),
		transactor: transactor,
	}
}

// RequestLeave implements attendance.LeaveService.
// One record per calendar day in [start_date, end_date]; the whole span is written or nothing is.
func (s *LeaveServiceImpl) RequestLeave(ctx context.Context, req attendance.CreateLeaveRequest) (attendance.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.LeaveResponse{}, err
	}

	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.LeaveResponse{}, err
	}

	start, err := s.clock.ParseDay(req.StartDate)
	if err != nil {
		return attendance.LeaveResponse{}, validator.ValidationErrors{{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"}}
	}
	end, err := s.clock.ParseDay(req.EndDate)
	if err != nil {
		return attendance.LeaveResponse{}, validator.ValidationErrors{{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"}}
	}
	days := s.clock.Days(start, end)
	_, until := s.clock.DayRange(end)

	requestedAt := s.now().UTC()
	reason := strings.TrimSpace(req.Reason)
	saved := make([]attendance.Attendance, 0, len(days))

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.repo.HasPendingLeave(ctx, emp.ID, start, until)
		if err != nil {
			return err
		}
		if pending {
			return attendance.ErrLeavePending
		}

		for _, day := range days {
			lr := &attendance.LeaveRequest{
				LeaveType:   attendance.LeaveType(req.LeaveType),
				Reason:      reason,
				Status:      attendance.RequestPending,
				RequestedAt: requestedAt,
			}

			existing, err := s.repo.GetByEmployeeAndDay(ctx, emp.ID, day)
			if err != nil {
				return err
			}

			var rec attendance.Attendance
			if existing == nil {
				rec, err = s.repo.Create(ctx, attendance.Attendance{
					EmployeeID:   emp.ID,
					DayKey:       day,
					Status:       attendance.StatusLeave,
					LeaveRequest: lr,
				})
			} else {
				// check-in/out facts stay on the record; the status it had is kept for a rejection
				updated := *existing
				if updated.Status != attendance.StatusLeave {
					prev := updated.Status
					lr.PreviousStatus = &prev
				} else if existing.LeaveRequest != nil {
					lr.PreviousStatus = existing.LeaveRequest.PreviousStatus
				}
				updated.Status = attendance.StatusLeave
				updated.LeaveRequest = lr
				rec, err = s.repo.Update(ctx, updated)
			}
			if err != nil {
				return err
			}
			saved = append(saved, named(rec, emp))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, attendance.ErrLeavePending) {
			return attendance.LeaveResponse{}, err
		}
		return attendance.LeaveResponse{}, s.fail(ctx, "request_leave", emp.ID, start, err)
	}

	s.logger.InfoContext(ctx, "leave requested",
		"employee_id", emp.ID, "start_date", req.StartDate, "end_date", req.EndDate, "days", len(saved))

	resp := attendance.LeaveResponse{
		StartDate: s.clock.FormatDay(start),
		EndDate:   s.clock.FormatDay(end),
		Days:      len(saved),
		Records:   make([]attendance.AttendanceResponse, 0, len(saved)),
	}
	for _, rec := range saved {
		s.notify(ctx, notification.TypeLeaveRequested, rec, notification.ChannelSupervisors)
		resp.Records = append(resp.Records, s.respond(rec))
	}

	return resp, nil
}

func (s *LeaveServiceImpl) pendingLeave(ctx context.Context, operation, id string) (attendance.Attendance, user.Caller, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return attendance.Attendance{}, user.Caller{}, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, caller, s.fail(ctx, operation, "", time.Time{}, err)
	}
	if !rec.HasPendingLeave() {
		return attendance.Attendance{}, caller, attendance.ErrNoPendingLeave
	}
	return rec, caller, nil
}

// ApproveLeave implements attendance.LeaveService.
func (s *LeaveServiceImpl) ApproveLeave(ctx context.Context, req attendance.ApproveLeaveRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, caller, err := s.pendingLeave(ctx, "approve_leave", req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	approver := actorRef(caller)
	lr := *rec.LeaveRequest
	lr.Status = attendance.RequestApproved
	lr.ApprovedBy = &approver
	lr.ApprovedAt = &now
	lr.AdminNotes = req.AdminNotes
	rec.LeaveRequest = &lr
	rec.Status = attendance.StatusLeave

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "approve_leave", rec.EmployeeID, rec.DayKey, err)
	}

	s.withNamesOne(ctx, &saved)
	s.logger.InfoContext(ctx, "leave approved",
		"attendance_id", saved.ID, "employee_id", saved.EmployeeID, "approved_by", approver)
	s.notify(ctx, notification.TypeLeaveApproved, saved,
		notification.ChannelSupervisors, notification.EmployeeChannel(saved.EmployeeID))

	return s.respond(saved), nil
}

// RejectLeave implements attendance.LeaveService.
// The day falls back to the status it had before the leave was requested.
func (s *LeaveServiceImpl) RejectLeave(ctx context.Context, req attendance.RejectLeaveRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, caller, err := s.pendingLeave(ctx, "reject_leave", req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	approver := actorRef(caller)
	notes := strings.TrimSpace(req.AdminNotes)
	lr := *rec.LeaveRequest
	lr.Status = attendance.RequestRejected
	lr.ApprovedBy = &approver
	lr.ApprovedAt = &now
	lr.AdminNotes = &notes
	rec.LeaveRequest = &lr

	if rec.Status == attendance.StatusLeave {
		if lr.PreviousStatus != nil {
			rec.Status = *lr.PreviousStatus
		} else {
			rec.Status = ""
			rec.Status = attendance.DeriveStatus(rec)
		}
	}

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "reject_leave", rec.EmployeeID, rec.DayKey, err)
	}

	s.withNamesOne(ctx, &saved)
	s.logger.InfoContext(ctx, "leave rejected",
		"attendance_id", saved.ID, "employee_id", saved.EmployeeID, "rejected_by", approver)
	s.notify(ctx, notification.TypeLeaveRejected, saved,
		notification.ChannelSupervisors, notification.EmployeeChannel(saved.EmployeeID))

	return s.respond(saved), nil
}
