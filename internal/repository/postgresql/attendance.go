package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const attendanceColumns = `
	a.id, a.employee_id, a.day_key,
	a.check_in_time, a.check_in_location_kind, a.check_in_method, a.check_in_source_ip, a.check_in_device_info,
	a.check_out_time, a.check_out_location_kind, a.check_out_method, a.check_out_source_ip, a.check_out_device_info,
	a.status, a.work_hours, a.productive_hours, a.is_late, a.late_by,
	a.breaks, a.correction_request, a.leave_request, a.notes,
	a.version, a.created_at, a.updated_at,
	e.full_name`

const attendanceFrom = `
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.employee_id`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// checkColumns is the nullable column form of attendance.CheckInfo.
type checkColumns struct {
	Time         *time.Time
	LocationKind *string
	Method       *string
	SourceIP     *string
	DeviceInfo   *string
}

func (c checkColumns) toCheckInfo() *attendance.CheckInfo {
	if c.Time == nil {
		return nil
	}
	info := &attendance.CheckInfo{
		Time:       c.Time.UTC(),
		SourceIP:   c.SourceIP,
		DeviceInfo: c.DeviceInfo,
	}
	if c.LocationKind != nil {
		info.LocationKind = attendance.LocationKind(*c.LocationKind)
	}
	if c.Method != nil {
		info.Method = attendance.Method(*c.Method)
	}
	return info
}

func fromCheckInfo(info *attendance.CheckInfo) checkColumns {
	if info == nil {
		return checkColumns{}
	}
	t := info.Time.UTC()
	kind := string(info.LocationKind)
	method := string(info.Method)
	return checkColumns{
		Time:         &t,
		LocationKind: &kind,
		Method:       &method,
		SourceIP:     info.SourceIP,
		DeviceInfo:   info.DeviceInfo,
	}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att                    attendance.Attendance
		in, out                checkColumns
		status                 string
		breaks, corr, leaveReq []byte
	)

	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.DayKey,
		&in.Time, &in.LocationKind, &in.Method, &in.SourceIP, &in.DeviceInfo,
		&out.Time, &out.LocationKind, &out.Method, &out.SourceIP, &out.DeviceInfo,
		&status, &att.WorkHours, &att.ProductiveHours, &att.IsLate, &att.LateBy,
		&breaks, &corr, &leaveReq, &att.Notes,
		&att.Version, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.DayKey = att.DayKey.UTC()
	att.Status = attendance.Status(status)
	att.CheckIn = in.toCheckInfo()
	att.CheckOut = out.toCheckInfo()

	if len(breaks) > 0 {
		if err := json.Unmarshal(breaks, &att.Breaks); err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to decode breaks: %w", err)
		}
	}
	if len(corr) > 0 {
		att.CorrectionRequest = &attendance.CorrectionRequest{}
		if err := json.Unmarshal(corr, att.CorrectionRequest); err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to decode correction_request: %w", err)
		}
	}
	if len(leaveReq) > 0 {
		att.LeaveRequest = &attendance.LeaveRequest{}
		if err := json.Unmarshal(leaveReq, att.LeaveRequest); err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to decode leave_request: %w", err)
		}
	}

	return att, nil
}

// jsonbArgs encodes the embedded objects. A nil request becomes SQL NULL, not JSON null.
func jsonbArgs(a attendance.Attendance) (breaks []byte, corr, leaveReq interface{}, err error) {
	list := a.Breaks
	if list == nil {
		list = []attendance.Break{}
	}
	if breaks, err = json.Marshal(list); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode breaks: %w", err)
	}
	if a.CorrectionRequest != nil {
		b, err := json.Marshal(a.CorrectionRequest)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode correction_request: %w", err)
		}
		corr = b
	}
	if a.LeaveRequest != nil {
		b, err := json.Marshal(a.LeaveRequest)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode leave_request: %w", err)
		}
		leaveReq = b
	}
	return breaks, corr, leaveReq, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const insertAttendance = `
	INSERT INTO attendances (
		id, employee_id, day_key,
		check_in_time, check_in_location_kind, check_in_method, check_in_source_ip, check_in_device_info,
		check_out_time, check_out_location_kind, check_out_method, check_out_source_ip, check_out_device_info,
		status, work_hours, productive_hours, is_late, late_by,
		breaks, correction_request, leave_request, notes, version
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, 1
	)`

func insertArgs(a attendance.Attendance) ([]interface{}, error) {
	breaks, corr, leaveReq, err := jsonbArgs(a)
	if err != nil {
		return nil, err
	}
	in, out := fromCheckInfo(a.CheckIn), fromCheckInfo(a.CheckOut)
	return []interface{}{
		a.ID, a.EmployeeID, a.DayKey.UTC(),
		in.Time, in.LocationKind, in.Method, in.SourceIP, in.DeviceInfo,
		out.Time, out.LocationKind, out.Method, out.SourceIP, out.DeviceInfo,
		string(a.Status), a.WorkHours, a.ProductiveHours, a.IsLate, a.LateBy,
		breaks, corr, leaveReq, a.Notes,
	}, nil
}

func withID(a attendance.Attendance) (attendance.Attendance, error) {
	if a.ID != "" {
		return a, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	a.ID = id.String()
	return a, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	newAttendance, err := withID(newAttendance)
	if err != nil {
		return attendance.Attendance{}, err
	}
	args, err := insertArgs(newAttendance)
	if err != nil {
		return attendance.Attendance{}, err
	}

	err = q.QueryRow(ctx, insertAttendance+` RETURNING version, created_at, updated_at`, args...).
		Scan(&newAttendance.Version, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateRecord
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	newAttendance.DayKey = newAttendance.DayKey.UTC()
	newAttendance.EmployeeName = nil
	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" { // not a uuid
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, dayKey time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id = $1
		  AND a.day_key = $2
		LIMIT 1`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, dayKey.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and day: %w", err)
	}

	return &att, nil
}

func (r *attendanceRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id = $1
		  AND a.day_key >= $2
		  AND a.day_key < $3
		ORDER BY a.day_key ASC`

	out, err := r.queryList(ctx, query, employeeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by range: %w", err)
	}
	return out, nil
}

// ListByDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByDay(ctx context.Context, dayKey time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.day_key = $1
		ORDER BY a.employee_id ASC`

	out, err := r.queryList(ctx, query, dayKey.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by day: %w", err)
	}
	return out, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.ListQuery) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		baseWhere += fmt.Sprintf(" AND a.day_key >= $%d", argIdx)
		args = append(args, filter.From.UTC())
		argIdx++
	}
	if filter.To != nil {
		baseWhere += fmt.Sprintf(" AND a.day_key < $%d", argIdx)
		args = append(args, filter.To.UTC())
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}

	// Count total
	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances a " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.day_key"
	switch filter.SortBy {
	case "status":
		orderByField = "a.status"
	case "check_in_time":
		orderByField = "a.check_in_time"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s
		%s
		ORDER BY %s %s, a.day_key %s, a.employee_id ASC
		LIMIT $%d OFFSET $%d`,
		attendanceColumns, attendanceFrom, baseWhere, orderByField, sortOrder, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, filter.Offset)

	out, err := r.queryList(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	return out, total, nil
}

// HasPendingLeave implements attendance.AttendanceRepository.
func (r *attendanceRepository) HasPendingLeave(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE employee_id = $1
			  AND day_key >= $2
			  AND day_key < $3
			  AND leave_request ->> 'status' = 'pending'
		)`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, from.UTC(), to.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending leave: %w", err)
	}
	return exists, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	breaks, corr, leaveReq, err := jsonbArgs(att)
	if err != nil {
		return attendance.Attendance{}, err
	}
	in, out := fromCheckInfo(att.CheckIn), fromCheckInfo(att.CheckOut)

	query := `
		UPDATE attendances SET
			check_in_time = $3, check_in_location_kind = $4, check_in_method = $5,
			check_in_source_ip = $6, check_in_device_info = $7,
			check_out_time = $8, check_out_location_kind = $9, check_out_method = $10,
			check_out_source_ip = $11, check_out_device_info = $12,
			status = $13, work_hours = $14, productive_hours = $15, is_late = $16, late_by = $17,
			breaks = $18, correction_request = $19, leave_request = $20, notes = $21,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING employee_id, day_key, version, created_at, updated_at`

	err = q.QueryRow(ctx, query,
		att.ID, att.Version,
		in.Time, in.LocationKind, in.Method, in.SourceIP, in.DeviceInfo,
		out.Time, out.LocationKind, out.Method, out.SourceIP, out.DeviceInfo,
		string(att.Status), att.WorkHours, att.ProductiveHours, att.IsLate, att.LateBy,
		breaks, corr, leaveReq, att.Notes,
	).Scan(&att.EmployeeID, &att.DayKey, &att.Version, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrConcurrentUpdate
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	att.DayKey = att.DayKey.UTC()
	return att, nil
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// CreateAbsences implements attendance.AttendanceRepository.
func (r *attendanceRepository) CreateAbsences(ctx context.Context, records []attendance.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, rec := range records {
		rec, err := withID(rec)
		if err != nil {
			return 0, err
		}
		args, err := insertArgs(rec)
		if err != nil {
			return 0, err
		}
		batch.Queue(insertAttendance+` ON CONFLICT (employee_id, day_key) DO NOTHING`, args...)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to create absences: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
