package attendance

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	base
}

func NewAttendanceService(
	repo attendance.AttendanceRepository,
	directory employee.Directory,
	notifier notification.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{base: newBase(repo, directory, notifier, clk, logger)}
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	day := s.clock.DayKey(now)

	existing, err := s.repo.GetByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "check_in", emp.ID, day, err)
	}
	if existing != nil {
		if existing.IsCheckedOut() {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCompleted
		}
		if existing.IsCheckedIn() {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
	}

	info := req.CheckInfo(now)

	var rec attendance.Attendance
	if existing != nil {
		// absent or leave placeholder created earlier for today
		rec = *existing
	} else {
		rec = attendance.Attendance{EmployeeID: emp.ID, DayKey: day}
	}
	rec.CheckIn = &info
	if req.Notes != nil {
		rec.AppendNote(*req.Notes)
	}

	rec, err = attendance.RecomputeDerived(rec, s.clock)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "check_in", emp.ID, day, err)
	}
	rec.Status = attendance.StatusPresent
	if rec.IsLate {
		rec.Status = attendance.StatusLate
	}

	var saved attendance.Attendance
	if existing == nil {
		saved, err = s.repo.Create(ctx, rec)
	} else {
		saved, err = s.repo.Update(ctx, rec)
	}
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "check_in", emp.ID, day, err)
	}

	saved = named(saved, emp)
	s.logger.InfoContext(ctx, "employee checked in",
		"employee_id", emp.ID, "day", s.clock.FormatDay(day), "status", saved.Status, "late_by", saved.LateBy)
	s.notify(ctx, notification.TypeAttendanceMarked, saved, notification.ChannelSupervisors)

	return s.respond(saved), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	day := s.clock.DayKey(now)

	rec, err := s.repo.GetByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "check_out", emp.ID, day, err)
	}
	if rec == nil || !rec.IsCheckedIn() {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if rec.IsCheckedOut() {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	info := req.CheckInfo(now)
	updated := *rec
	updated.CheckOut = &info
	if i := updated.OpenBreak(); i >= 0 {
		updated.Breaks = append([]attendance.Break(nil), updated.Breaks...)
		end := now
		updated.Breaks[i].End = &end
		updated.Breaks[i].DurationMinutes = attendance.BreakDuration(updated.Breaks[i].Start, end)
	}
	if req.Notes != nil {
		updated.AppendNote(*req.Notes)
	}

	updated, err = attendance.RecomputeDerived(updated, s.clock)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "check_out", emp.ID, day, err)
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "check_out", emp.ID, day, err)
	}

	saved = named(saved, emp)
	s.logger.InfoContext(ctx, "employee checked out",
		"employee_id", emp.ID, "day", s.clock.FormatDay(day), "work_hours", saved.WorkHours)
	s.notify(ctx, notification.TypeAttendanceUpdated, saved, notification.ChannelSupervisors)

	return s.respond(saved), nil
}

// openRecord returns today's record when the caller is checked in and not yet out.
func (s *AttendanceServiceImpl) openRecord(ctx context.Context, operation string) (attendance.Attendance, employee.Employee, error) {
	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.Attendance{}, employee.Employee{}, err
	}

	day := s.today()
	rec, err := s.repo.GetByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return attendance.Attendance{}, emp, s.fail(ctx, operation, emp.ID, day, err)
	}
	if rec == nil || !rec.IsCheckedIn() {
		return attendance.Attendance{}, emp, attendance.ErrNotCheckedIn
	}
	if rec.IsCheckedOut() {
		return attendance.Attendance{}, emp, attendance.ErrAlreadyCheckedOut
	}
	return *rec, emp, nil
}

// StartBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, emp, err := s.openRecord(ctx, "start_break")
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if rec.OpenBreak() >= 0 {
		return attendance.AttendanceResponse{}, attendance.ErrBreakAlreadyOpen
	}

	kind := attendance.BreakShort
	if req.Kind != "" {
		kind = attendance.BreakKind(req.Kind)
	}
	rec.Breaks = append(append([]attendance.Break(nil), rec.Breaks...), attendance.Break{
		Start: s.now().UTC(),
		Kind:  kind,
	})

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "start_break", emp.ID, rec.DayKey, err)
	}

	saved = named(saved, emp)
	s.notify(ctx, notification.TypeBreakStarted, saved, notification.ChannelSupervisors)
	return s.respond(saved), nil
}

// EndBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context) (attendance.AttendanceResponse, error) {
	rec, emp, err := s.openRecord(ctx, "end_break")
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	i := rec.OpenBreak()
	if i < 0 {
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenBreak
	}

	end := s.now().UTC()
	rec.Breaks = append([]attendance.Break(nil), rec.Breaks...)
	rec.Breaks[i].End = &end
	rec.Breaks[i].DurationMinutes = attendance.BreakDuration(rec.Breaks[i].Start, end)

	rec, err = attendance.RecomputeDerived(rec, s.clock)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "end_break", emp.ID, rec.DayKey, err)
	}

	saved, err := s.repo.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "end_break", emp.ID, rec.DayKey, err)
	}

	saved = named(saved, emp)
	s.notify(ctx, notification.TypeBreakEnded, saved, notification.ChannelSupervisors)
	return s.respond(saved), nil
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context) (attendance.StatusResponse, error) {
	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	day := s.today()
	resp := attendance.StatusResponse{Date: s.clock.FormatDay(day)}

	rec, err := s.repo.GetByEmployeeAndDay(ctx, emp.ID, day)
	if err != nil {
		return attendance.StatusResponse{}, s.fail(ctx, "status", emp.ID, day, err)
	}
	if rec == nil {
		return resp, nil
	}

	resp.IsCheckedIn = rec.IsCheckedIn()
	resp.IsCheckedOut = rec.IsCheckedOut()
	resp.OnBreak = rec.OpenBreak() >= 0
	r := s.respond(named(*rec, emp))
	resp.Attendance = &r

	return resp, nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, req attendance.SummaryRequest) (attendance.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	from, to := s.clock.MonthRange(req.Year, time.Month(req.Month))
	records, err := s.repo.ListByEmployeeAndRange(ctx, emp.ID, from, to)
	if err != nil {
		return attendance.SummaryResponse{}, s.fail(ctx, "summary", emp.ID, from, err)
	}

	return summarize(req.Month, req.Year, records), nil
}

func summarize(month, year int, records []attendance.Attendance) attendance.SummaryResponse {
	resp := attendance.SummaryResponse{
		Month:        month,
		Year:         year,
		TotalRecords: len(records),
		StatusCounts: make(map[string]int),
	}
	for _, st := range attendance.AllStatuses() {
		resp.StatusCounts[string(st)] = 0
	}

	completed := 0
	for _, r := range records {
		resp.StatusCounts[string(r.Status)]++
		resp.TotalWorkHours += r.WorkHours
		resp.TotalProductiveHours += r.ProductiveHours
		resp.TotalLateMinutes += r.LateBy
		if r.IsCheckedOut() {
			completed++
		}
	}

	resp.TotalWorkHours = round2(resp.TotalWorkHours)
	resp.TotalProductiveHours = round2(resp.TotalProductiveHours)
	if completed > 0 {
		resp.AverageWorkHours = round2(resp.TotalWorkHours / float64(completed))
	}
	return resp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dayBounds converts optional YYYY-MM-DD bounds into [from, to) day keys.
func (s *AttendanceServiceImpl) dayBounds(start, end *string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != nil {
		d, err := s.clock.ParseDay(*start)
		if err != nil {
			return nil, nil, validator.ValidationErrors{{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"}}
		}
		from = &d
	}
	if end != nil {
		d, err := s.clock.ParseDay(*end)
		if err != nil {
			return nil, nil, validator.ValidationErrors{{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"}}
		}
		_, next := s.clock.DayRange(d)
		to = &next
	}
	return from, to, nil
}

func (s *AttendanceServiceImpl) list(ctx context.Context, q attendance.ListQuery, page, limit int) (attendance.ListAttendanceResponse, error) {
	q.Limit = limit
	q.Offset = (page - 1) * limit

	records, total, err := s.repo.List(ctx, q)
	if err != nil {
		employeeID := ""
		if q.EmployeeID != nil {
			employeeID = *q.EmployeeID
		}
		return attendance.ListAttendanceResponse{}, s.fail(ctx, "list", employeeID, time.Time{}, err)
	}
	s.withNames(ctx, records)

	resp := attendance.ListAttendanceResponse{
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  totalPages(total, limit),
	}
	for _, r := range records {
		resp.Attendances = append(resp.Attendances, s.respond(r))
	}
	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	emp, _, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	from, to, err := s.dayBounds(filter.StartDate, filter.EndDate)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	return s.list(ctx, attendance.ListQuery{
		EmployeeID: &emp.ID,
		From:       from,
		To:         to,
		SortBy:     "date",
		SortOrder:  "desc",
	}, filter.Page, filter.Limit)
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	from, to, err := s.dayBounds(filter.StartDate, filter.EndDate)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	q := attendance.ListQuery{
		EmployeeID: filter.EmployeeID,
		From:       from,
		To:         to,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}
	if filter.Status != nil {
		st := attendance.Status(*filter.Status)
		q.Status = &st
	}

	return s.list(ctx, q, filter.Page, filter.Limit)
}

// GetDaily implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDaily(ctx context.Context, req attendance.DailyRequest) (attendance.DailyResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyResponse{}, err
	}

	day := s.today()
	if req.Date != "" {
		d, err := s.clock.ParseDay(req.Date)
		if err != nil {
			return attendance.DailyResponse{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
		}
		day = d
	}

	employees, err := s.directory.ListActive(ctx)
	if err != nil {
		return attendance.DailyResponse{}, s.fail(ctx, "daily", "", day, err)
	}
	records, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return attendance.DailyResponse{}, s.fail(ctx, "daily", "", day, err)
	}

	byEmployee := make(map[string]attendance.Attendance, len(records))
	for _, r := range records {
		byEmployee[r.EmployeeID] = r
	}

	resp := attendance.DailyResponse{
		Date:         s.clock.FormatDay(day),
		Employees:    make([]attendance.DailyEntry, 0, len(employees)),
		StatusCounts: make(map[string]int),
	}
	for _, st := range attendance.AllStatuses() {
		resp.StatusCounts[string(st)] = 0
	}

	add := func(entry attendance.DailyEntry) {
		resp.Employees = append(resp.Employees, entry)
		resp.StatusCounts[entry.Status]++
	}

	for _, emp := range employees {
		entry := attendance.DailyEntry{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Position:     emp.Position,
			Status:       string(attendance.StatusAbsent),
		}
		if r, ok := byEmployee[emp.ID]; ok {
			s.fillDaily(&entry, r)
			delete(byEmployee, emp.ID)
		}
		add(entry)
	}

	// records of employees no longer active still show up for that day
	leftovers := make([]attendance.Attendance, 0, len(byEmployee))
	for _, r := range records {
		if _, ok := byEmployee[r.EmployeeID]; ok {
			leftovers = append(leftovers, r)
		}
	}
	s.withNames(ctx, leftovers)
	for _, r := range leftovers {
		entry := attendance.DailyEntry{EmployeeID: r.EmployeeID}
		if r.EmployeeName != nil {
			entry.EmployeeName = *r.EmployeeName
		}
		s.fillDaily(&entry, r)
		add(entry)
	}

	return resp, nil
}

func (s *AttendanceServiceImpl) fillDaily(entry *attendance.DailyEntry, r attendance.Attendance) {
	loc := s.clock.Location()
	id := r.ID
	entry.AttendanceID = &id
	entry.Status = string(r.Status)
	entry.IsLate = r.IsLate
	entry.LateBy = r.LateBy
	entry.WorkHours = r.WorkHours
	if r.CheckIn != nil {
		t := r.CheckIn.Time.In(loc).Format(time.RFC3339)
		entry.CheckInTime = &t
	}
	if r.CheckOut != nil {
		t := r.CheckOut.Time.In(loc).Format(time.RFC3339)
		entry.CheckOutTime = &t
	}
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, s.fail(ctx, "get", "", time.Time{}, err)
	}

	s.withNamesOne(ctx, &rec)
	return s.respond(rec), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete", "", time.Time{}, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, "delete", rec.EmployeeID, rec.DayKey, err)
	}

	s.logger.InfoContext(ctx, "attendance record deleted",
		"attendance_id", id, "employee_id", rec.EmployeeID, "day", s.clock.FormatDay(rec.DayKey))
	return nil
}

// MarkAbsentEmployees implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsentEmployees(ctx context.Context, dayKey time.Time) (int, error) {
	if dayKey.After(s.today()) {
		return 0, errors.New("cannot mark absences for a future day")
	}

	employees, err := s.directory.ListActive(ctx)
	if err != nil {
		return 0, s.fail(ctx, "mark_absent", "", dayKey, err)
	}

	records := make([]attendance.Attendance, 0, len(employees))
	for _, emp := range employees {
		records = append(records, attendance.Attendance{
			EmployeeID: emp.ID,
			DayKey:     dayKey,
			Status:     attendance.StatusAbsent,
		})
	}

	created, err := s.repo.CreateAbsences(ctx, records)
	if err != nil {
		return created, s.fail(ctx, "mark_absent", "", dayKey, err)
	}
	return created, nil
}
