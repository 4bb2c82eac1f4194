package attendance

import (
	"context"
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

type CorrectionServiceImpl struct {
	base
}

func NewCorrectionService(
	repo attendance.AttendanceRepository,
	directory employee.Directory,
	notifier notification.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) attendance.CorrectionService {
	return &CorrectionServiceImpl{base: newBase(repo, directory, notifier, clk, logger)}
}

// RequestCorrection implements attendance.CorrectionService.
func (s *CorrectionServiceImpl) RequestCorrection(ctx context.Context, req attendance.CreateCorrectionRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	day, err := s.clock.ParseDay(req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}
	if day.After(s.today()) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "date", Message: "date must not be in the future"}}
	}

	start, end := s.clock.DayRange(day)
	var errs validator.ValidationErrors
	resolve := func(field string, raw *string) *time.Time {
		if raw == nil {
			return nil
		}
		t, err := attendance.ResolveCorrectionTime(*raw, day)
		if err != nil {
			errs.Add(field, field+" must be RFC3339 or HH:MM")
			return nil
		}
		if t.Before(start) || !t.Before(end) {
			errs.Add(field, field+" must fall on "+req.Date)
			return nil
		}
		return &t
	}
	correctIn := resolve("correct_check_in_time", req.CorrectCheckInTime)
	correctOut := resolve("correct_check_out_time", req.CorrectCheckOutTime)
	if err := errs.Err(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	existing, err := s.repo.GetByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "request_correction", emp.ID, day, err)
	}
	if existing != nil && existing.HasPendingCorrection() {
		return attendance.AttendanceResponse{}, attendance.ErrCorrectionPending
	}

	// the corrected pair must be consistent with whatever is already recorded
	effectiveIn := correctIn
	effectiveOut := correctOut
	if existing != nil {
		if effectiveIn == nil && existing.CheckIn != nil {
			t := existing.CheckIn.Time
			effectiveIn = &t
		}
		if effectiveOut == nil && existing.CheckOut != nil {
			t := existing.CheckOut.Time
			effectiveOut = &t
		}
	}
	if effectiveOut != nil && effectiveIn == nil {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "correct_check_in_time", Message: "correct_check_in_time is required when the day has no check-in"}}
	}
	if effectiveIn != nil && effectiveOut != nil && !effectiveOut.After(*effectiveIn) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "correct_check_out_time", Message: "correct_check_out_time must be after check-in time"}}
	}

	correction := &attendance.CorrectionRequest{
		RequestedBy:         emp.ID,
		Reason:              strings.TrimSpace(req.Reason),
		CorrectCheckInTime:  correctIn,
		CorrectCheckOutTime: correctOut,
		Status:              attendance.RequestPending,
		RequestedAt:         s.now().UTC(),
	}

	var saved attendance.Attendance
	if existing == nil {
		saved, err = s.repo.Create(ctx, attendance.Attendance{
			EmployeeID:        emp.ID,
			DayKey:            day,
			Status:            attendance.StatusAbsent,
			CorrectionRequest: correction,
		})
	} else {
		rec := *existing
		rec.CorrectionRequest = correction
		saved, err = s.repo.Update(ctx, rec)
	}
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "request_correction", emp.ID, day, err)
	}

	saved = named(saved, emp)
	s.logger.InfoContext(ctx, "correction requested",
		"attendance_id", saved.ID, "employee_id", emp.ID, "day", req.Date)
	s.notify(ctx, notification.TypeCorrectionRequested, saved, notification.ChannelSupervisors)

	return s.respond(saved), nil
}

// pendingCorrection loads the record and checks it still carries a pending correction.
func (s *CorrectionServiceImpl) pendingCorrection(ctx context.Context, operation, id string) (attendance.Attendance, user.Caller, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return attendance.Attendance{}, user.Caller{}, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, caller, s.fail(ctx, operation, "", time.Time{}, err)
	}
	if !rec.HasPendingCorrection() {
		return attendance.Attendance{}, caller, attendance.ErrNoPendingCorrection
	}
	return rec, caller, nil
}

// ApproveCorrection implements attendance.CorrectionService.
func (s *CorrectionServiceImpl) ApproveCorrection(ctx context.Context, req attendance.ApproveCorrectionRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, caller, err := s.pendingCorrection(ctx, "approve_correction", req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	cr := *rec.CorrectionRequest
	if cr.CorrectCheckInTime != nil {
		if rec.CheckIn != nil {
			in := *rec.CheckIn
			in.Time = *cr.CorrectCheckInTime
			rec.CheckIn = &in
		} else {
			rec.CheckIn = &attendance.CheckInfo{
				Time:         *cr.CorrectCheckInTime,
				LocationKind: attendance.LocationOffice,
				Method:       attendance.MethodWeb,
			}
		}
	}
	if cr.CorrectCheckOutTime != nil {
		if rec.CheckOut != nil {
			out := *rec.CheckOut
			out.Time = *cr.CorrectCheckOutTime
			rec.CheckOut = &out
		} else {
			rec.CheckOut = &attendance.CheckInfo{
				Time:         *cr.CorrectCheckOutTime,
				LocationKind: attendance.LocationOffice,
				Method:       attendance.MethodWeb,
			}
		}
	}

	rec, err = attendance.RecomputeDerived(rec, s.clock)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "approve_correction", rec.EmployeeID, rec.DayKey, err)
	}
	// An absent day is promoted by the corrected check-in, to late when it is past the cutoff.
	switch rec.Status {
	case attendance.StatusAbsent, attendance.StatusPresent, attendance.StatusLate:
		rec.Status = attendance.DeriveStatus(rec)
	}

	now := s.now().UTC()
	approver := actorRef(caller)
	cr.Status = attendance.RequestApproved
	cr.ApprovedBy = &approver
	cr.ApprovedAt = &now
	cr.AdminNotes = req.AdminNotes
	rec.CorrectionRequest = &cr

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "approve_correction", rec.EmployeeID, rec.DayKey, err)
	}

	s.withNamesOne(ctx, &saved)
	s.logger.InfoContext(ctx, "correction approved",
		"attendance_id", saved.ID, "employee_id", saved.EmployeeID, "approved_by", approver)
	s.notify(ctx, notification.TypeCorrectionApproved, saved,
		notification.ChannelSupervisors, notification.EmployeeChannel(saved.EmployeeID))

	return s.respond(saved), nil
}

// RejectCorrection implements attendance.CorrectionService.
func (s *CorrectionServiceImpl) RejectCorrection(ctx context.Context, req attendance.RejectCorrectionRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, caller, err := s.pendingCorrection(ctx, "reject_correction", req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	approver := actorRef(caller)
	notes := strings.TrimSpace(req.AdminNotes)
	cr := *rec.CorrectionRequest
	cr.Status = attendance.RequestRejected
	cr.ApprovedBy = &approver
	cr.ApprovedAt = &now
	cr.AdminNotes = &notes
	rec.CorrectionRequest = &cr

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "reject_correction", rec.EmployeeID, rec.DayKey, err)
	}

	s.withNamesOne(ctx, &saved)
	s.logger.InfoContext(ctx, "correction rejected",
		"attendance_id", saved.ID, "employee_id", saved.EmployeeID, "rejected_by", approver)
	s.notify(ctx, notification.TypeCorrectionRejected, saved,
		notification.ChannelSupervisors, notification.EmployeeChannel(saved.EmployeeID))

	return s.respond(saved), nil
}
