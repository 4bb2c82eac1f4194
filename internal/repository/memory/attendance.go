package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type dayKey struct {
	employeeID string
	day        int64
}

func keyOf(employeeID string, day time.Time) dayKey {
	return dayKey{employeeID: employeeID, day: day.UTC().Unix()}
}

type AttendanceStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	byID  map[string]attendance.Attendance
	byDay map[dayKey]string
	now   func() time.Time
}

// NewAttendanceStore returns an in-process store with the same uniqueness and
// versioning rules as the postgres one. The returned value also implements attendance.Transactor.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{
		byID:  make(map[string]attendance.Attendance),
		byDay: make(map[dayKey]string),
		now:   time.Now,
	}
}

// Create implements attendance.AttendanceRepository.
func (r *AttendanceStore) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Attendance{}, err
	}

	defer r.lockWrite(ctx)()

	created, err := r.insertLocked(ctx, a)
	if err != nil {
		return attendance.Attendance{}, err
	}
	return clone(created), nil
}

func (r *AttendanceStore) insertLocked(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	k := keyOf(a.EmployeeID, a.DayKey)
	if _, exists := r.byDay[k]; exists {
		return attendance.Attendance{}, attendance.ErrDuplicateRecord
	}

	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, err
		}
		a.ID = id.String()
	}
	now := r.now().UTC()
	a.DayKey = a.DayKey.UTC()
	a.Version = 1
	a.CreatedAt = now
	a.UpdatedAt = now
	a.EmployeeName = nil

	stored := clone(a)
	r.byID[a.ID] = stored
	r.byDay[k] = a.ID
	r.journal(ctx, undoEntry{id: a.ID})

	return stored, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *AttendanceStore) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return clone(a), nil
}

// GetByEmployeeAndDay implements attendance.AttendanceRepository.
func (r *AttendanceStore) GetByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) (*attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byDay[keyOf(employeeID, day)]
	if !ok {
		return nil, nil
	}
	a := clone(r.byID[id])
	return &a, nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (r *AttendanceStore) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && inRange(a.DayKey, &from, &to)
	}, "date", "asc"), nil
}

// ListByDay implements attendance.AttendanceRepository.
func (r *AttendanceStore) ListByDay(ctx context.Context, day time.Time) ([]attendance.Attendance, error) {
	return r.filter(func(a attendance.Attendance) bool {
		return a.DayKey.Equal(day)
	}, "date", "asc"), nil
}

// List implements attendance.AttendanceRepository.
func (r *AttendanceStore) List(ctx context.Context, q attendance.ListQuery) ([]attendance.Attendance, int64, error) {
	all := r.filter(func(a attendance.Attendance) bool {
		if q.EmployeeID != nil && a.EmployeeID != *q.EmployeeID {
			return false
		}
		if q.Status != nil && a.Status != *q.Status {
			return false
		}
		return inRange(a.DayKey, q.From, q.To)
	}, q.SortBy, q.SortOrder)

	total := int64(len(all))
	if q.Offset >= len(all) {
		return []attendance.Attendance{}, total, nil
	}
	end := len(all)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return all[q.Offset:end], total, nil
}

// HasPendingLeave implements attendance.AttendanceRepository.
func (r *AttendanceStore) HasPendingLeave(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	found := r.filter(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && inRange(a.DayKey, &from, &to) && a.HasPendingLeave()
	}, "", "")
	return len(found) > 0, nil
}

// Update implements attendance.AttendanceRepository.
func (r *AttendanceStore) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Attendance{}, err
	}

	defer r.lockWrite(ctx)()

	current, ok := r.byID[a.ID]
	if !ok || current.Version != a.Version {
		return attendance.Attendance{}, attendance.ErrConcurrentUpdate
	}

	// Identity columns never change on update.
	a.EmployeeID = current.EmployeeID
	a.DayKey = current.DayKey
	a.CreatedAt = current.CreatedAt
	a.Version = current.Version + 1
	a.UpdatedAt = r.now().UTC()
	a.EmployeeName = nil

	r.journal(ctx, undoEntry{id: a.ID, prev: &current})
	r.byID[a.ID] = clone(a)

	return clone(a), nil
}

// Delete implements attendance.AttendanceRepository.
func (r *AttendanceStore) Delete(ctx context.Context, id string) error {
	defer r.lockWrite(ctx)()

	current, ok := r.byID[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.journal(ctx, undoEntry{id: id, prev: &current})
	delete(r.byDay, keyOf(current.EmployeeID, current.DayKey))
	delete(r.byID, id)
	return nil
}

// CreateAbsences implements attendance.AttendanceRepository.
func (r *AttendanceStore) CreateAbsences(ctx context.Context, records []attendance.Attendance) (int, error) {
	defer r.lockWrite(ctx)()

	inserted := 0
	for _, a := range records {
		if _, err := r.insertLocked(ctx, a); err != nil {
			if errors.Is(err, attendance.ErrDuplicateRecord) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (r *AttendanceStore) filter(keep func(attendance.Attendance) bool, sortBy, sortOrder string) []attendance.Attendance {
	r.mu.RLock()
	out := make([]attendance.Attendance, 0)
	for _, a := range r.byID {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	r.mu.RUnlock()

	less := func(a, b attendance.Attendance) int {
		switch sortBy {
		case "status":
			if a.Status != b.Status {
				return compareStrings(string(a.Status), string(b.Status))
			}
		case "check_in_time":
			at, bt := checkInTime(a), checkInTime(b)
			if !at.Equal(bt) {
				return at.Compare(bt)
			}
		}
		if !a.DayKey.Equal(b.DayKey) {
			return a.DayKey.Compare(b.DayKey)
		}
		if a.EmployeeID != b.EmployeeID {
			return compareStrings(a.EmployeeID, b.EmployeeID)
		}
		return compareStrings(a.ID, b.ID)
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if sortOrder == "desc" {
			return c > 0
		}
		return c < 0
	})
	return out
}

func checkInTime(a attendance.Attendance) time.Time {
	if a.CheckIn == nil {
		return time.Time{}
	}
	return a.CheckIn.Time
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func inRange(day time.Time, from, to *time.Time) bool {
	if from != nil && day.Before(*from) {
		return false
	}
	if to != nil && !day.Before(*to) {
		return false
	}
	return true
}

func clone(a attendance.Attendance) attendance.Attendance {
	if a.CheckIn != nil {
		c := *a.CheckIn
		a.CheckIn = &c
	}
	if a.CheckOut != nil {
		c := *a.CheckOut
		a.CheckOut = &c
	}
	if a.Breaks != nil {
		a.Breaks = append([]attendance.Break(nil), a.Breaks...)
	}
	if a.CorrectionRequest != nil {
		c := *a.CorrectionRequest
		a.CorrectionRequest = &c
	}
	if a.LeaveRequest != nil {
		c := *a.LeaveRequest
		a.LeaveRequest = &c
	}
	if a.Notes != nil {
		n := *a.Notes
		a.Notes = &n
	}
	return a
}
