package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)

func TestAttendanceRepository_CreateAndGet(t *testing.T) {
	// Setup
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	empID := setup.CreateEmployee(t, "E001", "Ann Lee", nil)
	ip := "10.0.0.1"
	checkIn := day1.Add(4 * time.Hour)

	// Act
	created, err := repo.Create(ctx, attendance.Attendance{
		EmployeeID: empID,
		DayKey:     day1,
		CheckIn:    &attendance.CheckInfo{Time: checkIn, LocationKind: attendance.LocationOffice, Method: attendance.MethodWeb, SourceIP: &ip},
		Status:     attendance.StatusPresent,
		Breaks:     []attendance.Break{{Start: checkIn.Add(time.Hour), Kind: attendance.BreakShort}},
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)

	got, err := repo.GetByEmployeeAndDay(ctx, empID, day1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.CheckIn)
	assert.True(t, checkIn.Equal(got.CheckIn.Time))
	assert.Equal(t, "10.0.0.1", *got.CheckIn.SourceIP)
	assert.Nil(t, got.CheckOut)
	require.Len(t, got.Breaks, 1)
	assert.Nil(t, got.CorrectionRequest)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Ann Lee", *got.EmployeeName)

	missing, err := repo.GetByEmployeeAndDay(ctx, empID, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttendanceRepository_UniqueEmployeeDay(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	empID := setup.CreateEmployee(t, "E001", "Ann Lee", nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, attendance.Attendance{EmployeeID: empID, DayKey: day1, Status: attendance.StatusPresent})
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
	assert.Equal(t, 7, conflicts)
}

func TestAttendanceRepository_VersionedUpdate(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	empID := setup.CreateEmployee(t, "E001", "Ann Lee", nil)

	created, err := repo.Create(ctx, attendance.Attendance{EmployeeID: empID, DayKey: day1, Status: attendance.StatusAbsent})
	require.NoError(t, err)

	stale := created
	created.Status = attendance.StatusLeave
	created.LeaveRequest = &attendance.LeaveRequest{LeaveType: attendance.LeaveSick, Reason: "flu", Status: attendance.RequestPending, RequestedAt: day1}
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, attendance.ErrConcurrentUpdate)

	pending, err := repo.HasPendingLeave(ctx, empID, day1, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestAttendanceRepository_ListAndAbsences(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ann := setup.CreateEmployee(t, "E001", "Ann Lee", nil)
	bob := setup.CreateEmployee(t, "E002", "Bob Ray", nil)

	_, err := repo.Create(ctx, attendance.Attendance{EmployeeID: ann, DayKey: day1, Status: attendance.StatusPresent})
	require.NoError(t, err)

	n, err := repo.CreateAbsences(ctx, []attendance.Attendance{
		{EmployeeID: ann, DayKey: day1, Status: attendance.StatusAbsent},
		{EmployeeID: bob, DayKey: day1, Status: attendance.StatusAbsent},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := attendance.StatusAbsent
	list, total, err := repo.List(ctx, attendance.ListQuery{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, bob, list[0].EmployeeID)

	byDay, err := repo.ListByDay(ctx, day1)
	require.NoError(t, err)
	assert.Len(t, byDay, 2)

	require.NoError(t, repo.Delete(ctx, list[0].ID))
	_, err = repo.GetByID(ctx, list[0].ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestTransactor_RollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	empID := setup.CreateEmployee(t, "E001", "Ann Lee", nil)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, attendance.Attendance{EmployeeID: empID, DayKey: day1, Status: attendance.StatusLeave}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetByEmployeeAndDay(ctx, empID, day1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployeeDirectory(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	dir := postgresql.NewEmployeeDirectory(setup.DB)
	uid := "user-1"
	id := setup.CreateEmployee(t, "E001", "Ann Lee", &uid)

	e, err := dir.GetByUserID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.True(t, e.IsActive())

	_, err = dir.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := dir.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
