package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)

func TestAttendanceStore_CreateEnforcesUniqueDay(t *testing.T) {
	// Setup
	store := NewAttendanceStore()
	ctx := context.Background()

	// Act
	first, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusPresent})
	require.NoError(t, err)
	_, dupErr := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusAbsent})
	_, otherErr := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-2", DayKey: day1})

	// Assert
	assert.ErrorIs(t, dupErr, attendance.ErrDuplicateRecord)
	assert.NoError(t, otherErr)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 1, first.Version)

	got, err := store.GetByEmployeeAndDay(ctx, "emp-1", day1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.StatusPresent, got.Status)
}

func TestAttendanceStore_ConcurrentCreateSingleWinner(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, attendance.ErrDuplicateRecord) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 19, conflicts)
}

func TestAttendanceStore_UpdateIsVersioned(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()
	created, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusAbsent})
	require.NoError(t, err)

	stale := created
	created.Status = attendance.StatusPresent
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	stale.Status = attendance.StatusLeave
	_, err = store.Update(ctx, stale)
	assert.ErrorIs(t, err, attendance.ErrConcurrentUpdate)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, got.Status)
}

func TestAttendanceStore_ReturnsCopies(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()
	created, err := store.Create(ctx, attendance.Attendance{
		EmployeeID: "emp-1",
		DayKey:     day1,
		CheckIn:    &attendance.CheckInfo{Time: day1.Add(9 * time.Hour)},
	})
	require.NoError(t, err)

	created.CheckIn.Time = day1

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, day1.Add(9*time.Hour), got.CheckIn.Time)
}

func TestAttendanceStore_RangeAndPendingLeave(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		a := attendance.Attendance{EmployeeID: "emp-1", DayKey: day1.AddDate(0, 0, i), Status: attendance.StatusPresent}
		if i == 3 {
			a.Status = attendance.StatusLeave
			a.LeaveRequest = &attendance.LeaveRequest{Status: attendance.RequestPending}
		}
		_, err := store.Create(ctx, a)
		require.NoError(t, err)
	}

	got, err := store.ListByEmployeeAndRange(ctx, "emp-1", day1.AddDate(0, 0, 1), day1.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].DayKey.Before(got[1].DayKey))

	pending, err := store.HasPendingLeave(ctx, "emp-1", day1, day1.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.False(t, pending)

	pending, err = store.HasPendingLeave(ctx, "emp-1", day1.AddDate(0, 0, 3), day1.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.True(t, pending)

	status := attendance.StatusPresent
	page, total, err := store.List(ctx, attendance.ListQuery{Status: &status, Limit: 2, Offset: 2, SortBy: "date", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 2)
	assert.Equal(t, day1.AddDate(0, 0, 1), page[0].DayKey)
	assert.Equal(t, day1, page[1].DayKey)
}

func TestAttendanceStore_CreateAbsencesSkipsExisting(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()
	_, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusPresent})
	require.NoError(t, err)

	n, err := store.CreateAbsences(ctx, []attendance.Attendance{
		{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusAbsent},
		{EmployeeID: "emp-2", DayKey: day1, Status: attendance.StatusAbsent},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	records, err := store.ListByDay(ctx, day1)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAttendanceStore_TransactionRollback(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()
	existing, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusPresent})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithinTransaction(ctx, func(ctx context.Context) error {
		existing.Status = attendance.StatusLeave
		if _, err := store.Update(ctx, existing); err != nil {
			return err
		}
		if _, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1.AddDate(0, 0, 1)}); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := store.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, 1, got.Version)
	next, err := store.GetByEmployeeAndDay(ctx, "emp-1", day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestAttendanceStore_WriterWaitsForTransaction(t *testing.T) {
	// Setup
	store := NewAttendanceStore()
	ctx := context.Background()
	existing, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1, Status: attendance.StatusPresent})
	require.NoError(t, err)

	boom := errors.New("boom")
	var wg sync.WaitGroup
	var concurrentErr error

	// Act: a writer outside the transaction builds on the transaction's uncommitted update
	err = store.WithinTransaction(ctx, func(txCtx context.Context) error {
		onLeave := existing
		onLeave.Status = attendance.StatusLeave
		if _, err := store.Update(txCtx, onLeave); err != nil {
			return err
		}

		seen, err := store.GetByID(ctx, existing.ID)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			note := "checked out"
			seen.Notes = &note
			_, concurrentErr = store.Update(ctx, seen)
		}()
		return boom
	})
	wg.Wait()

	// Assert
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, concurrentErr, attendance.ErrConcurrentUpdate)
	got, err := store.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Nil(t, got.Notes)
	assert.Equal(t, 1, got.Version)
}

func TestAttendanceStore_Delete(t *testing.T) {
	store := NewAttendanceStore()
	ctx := context.Background()
	created, err := store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.ErrorIs(t, store.Delete(ctx, created.ID), attendance.ErrAttendanceNotFound)
	_, err = store.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	_, err = store.Create(ctx, attendance.Attendance{EmployeeID: "emp-1", DayKey: day1})
	assert.NoError(t, err)
}

func TestDirectory(t *testing.T) {
	uid := "user-2"
	dir := NewDirectory(
		employee.Employee{ID: "emp-2", UserID: &uid, FullName: "Bea", EmploymentStatus: employee.EmploymentStatusActive},
		employee.Employee{ID: "emp-1", FullName: "Ann", EmploymentStatus: employee.EmploymentStatusActive},
		employee.Employee{ID: "emp-3", FullName: "Cy", EmploymentStatus: employee.EmploymentStatusInactive},
	)
	ctx := context.Background()

	e, err := dir.GetByUserID(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "emp-2", e.ID)

	_, err = dir.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := dir.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Ann", active[0].FullName)
}
