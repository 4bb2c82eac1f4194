package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
)

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	clock         clock.Clock
	now           func() time.Time
	logger        *slog.Logger
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, clk clock.Clock, logger *slog.Logger) *AttendanceJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		clock:         clk,
		now:           time.Now,
		logger:        logger,
	}
}

// RegisterJobs schedules the absent sweep with a spec read in the organization's zone
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, markAbsentSpec string) error {
	return scheduler.AddJob("mark_absent_employees", markAbsentSpec, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees materializes absent records for yesterday's organizational day
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	yesterday := j.clock.DayKey(j.now()).AddDate(0, 0, -1)
	day := j.clock.FormatDay(yesterday)

	j.logger.InfoContext(ctx, "Cron: Starting mark absent employees job", "day", day)

	created, err := j.attendanceSvc.MarkAbsentEmployees(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to mark absent employees for %s: %w", day, err)
	}

	j.logger.InfoContext(ctx, "Cron: Mark absent employees completed", "day", day, "created", created)
	return nil
}
