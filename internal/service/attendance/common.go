package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
)

// base carries the collaborators shared by the attendance, correction and leave services.
type base struct {
	repo      attendance.AttendanceRepository
	directory employee.Directory
	notifier  notification.Notifier
	clock     clock.Clock
	now       func() time.Time
	logger    *slog.Logger
}

func newBase(repo attendance.AttendanceRepository, directory employee.Directory, notifier notification.Notifier, clk clock.Clock, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		clock:     clk,
		now:       time.Now,
		logger:    logger,
	}
}

// currentEmployee resolves the authenticated caller to a directory employee.
func (b *base) currentEmployee(ctx context.Context) (employee.Employee, user.Caller, error) {
	caller, err := user.CallerFromContext(ctx)
	if err != nil {
		return employee.Employee{}, user.Caller{}, err
	}

	var emp employee.Employee
	if caller.EmployeeID != nil && *caller.EmployeeID != "" {
		emp, err = b.directory.GetByID(ctx, *caller.EmployeeID)
	} else {
		emp, err = b.directory.GetByUserID(ctx, caller.UserID)
	}
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, caller, err
		}
		return employee.Employee{}, caller, b.fail(ctx, "resolve_employee", "", time.Time{}, err)
	}
	if !emp.IsActive() {
		return employee.Employee{}, caller, employee.ErrEmployeeInactive
	}

	return emp, caller, nil
}

// actorRef is how an approver is recorded on a request.
func actorRef(caller user.Caller) string {
	if caller.EmployeeID != nil && *caller.EmployeeID != "" {
		return *caller.EmployeeID
	}
	return caller.UserID
}

func (b *base) today() time.Time {
	return b.clock.DayKey(b.now())
}

// expected errors are returned as-is; anything else is logged with context and wrapped.
var expected = []error{
	attendance.ErrDuplicateRecord,
	attendance.ErrConcurrentUpdate,
	attendance.ErrAttendanceNotFound,
	attendance.ErrInvalidTimeOrder,
	attendance.ErrCheckOutWithoutCheckIn,
	employee.ErrEmployeeNotFound,
	context.Canceled,
}

func (b *base) fail(ctx context.Context, operation, employeeID string, day time.Time, err error) error {
	for _, e := range expected {
		if errors.Is(err, e) {
			return err
		}
	}

	attrs := []any{"operation", operation, "error", err}
	if employeeID != "" {
		attrs = append(attrs, "employee_id", employeeID)
	}
	if !day.IsZero() {
		attrs = append(attrs, "day", b.clock.FormatDay(day))
	}
	b.logger.ErrorContext(ctx, "attendance operation failed", attrs...)

	return fmt.Errorf("%s: %w", operation, err)
}

func (b *base) notify(ctx context.Context, eventType notification.EventType, att attendance.Attendance, channels ...string) {
	if b.notifier == nil {
		return
	}

	ev := notification.Event{
		Type:        eventType,
		RecordID:    att.ID,
		EmployeeRef: att.EmployeeID,
		Date:        b.clock.FormatDay(att.DayKey),
		Status:      string(att.Status),
		OccurredAt:  b.now().UTC(),
	}
	if att.EmployeeName != nil {
		ev.EmployeeName = *att.EmployeeName
	}
	if att.CheckIn != nil {
		t := att.CheckIn.Time
		ev.Timestamps.CheckIn = &t
		loc := string(att.CheckIn.LocationKind)
		ev.Location = &loc
	}
	if att.CheckOut != nil {
		t := att.CheckOut.Time
		ev.Timestamps.CheckOut = &t
		loc := string(att.CheckOut.LocationKind)
		ev.Location = &loc
	}

	b.notifier.Notify(ctx, ev, channels...)
}

func (b *base) respond(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.NewAttendanceResponse(att, b.clock)
}

// withNames fills EmployeeName from the directory where the store did not.
func (b *base) withNames(ctx context.Context, records []attendance.Attendance) {
	names := make(map[string]*string)
	for i := range records {
		if records[i].EmployeeName != nil {
			continue
		}
		id := records[i].EmployeeID
		name, seen := names[id]
		if !seen {
			if emp, err := b.directory.GetByID(ctx, id); err == nil {
				n := emp.FullName
				name = &n
			}
			names[id] = name
		}
		records[i].EmployeeName = name
	}
}

func (b *base) withNamesOne(ctx context.Context, att *attendance.Attendance) {
	records := []attendance.Attendance{*att}
	b.withNames(ctx, records)
	*att = records[0]
}

func named(att attendance.Attendance, emp employee.Employee) attendance.Attendance {
	name := emp.FullName
	att.EmployeeName = &name
	return att
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
