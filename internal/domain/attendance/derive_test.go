package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plus5 = clock.New(5*time.Hour, clock.DefaultCutoff)

func localAt(t *testing.T, day string, h, m, s int) time.Time {
	t.Helper()
	key, err := plus5.ParseDay(day)
	require.NoError(t, err)
	return plus5.At(key, h, m, s)
}

func TestRecomputeDerived_WorkHours(t *testing.T) {
	// Setup
	in := localAt(t, "2024-03-04", 9, 0, 0)
	a := Attendance{
		CheckIn:  &CheckInfo{Time: in},
		CheckOut: &CheckInfo{Time: in.Add(8*time.Hour + 30*time.Minute)},
	}

	// Act
	got, err := RecomputeDerived(a, plus5)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 8.5, got.WorkHours)
	assert.Equal(t, 8.5, got.ProductiveHours)
	assert.False(t, got.IsLate)
}

func TestRecomputeDerived_NoCheckOut(t *testing.T) {
	a := Attendance{CheckIn: &CheckInfo{Time: localAt(t, "2024-03-04", 9, 10, 0)}, WorkHours: 3}

	got, err := RecomputeDerived(a, plus5)

	require.NoError(t, err)
	assert.Zero(t, got.WorkHours)
	assert.Zero(t, got.ProductiveHours)
	assert.True(t, got.IsLate)
	assert.Equal(t, 10, got.LateBy)
}

func TestRecomputeDerived_BreaksReduceProductiveHours(t *testing.T) {
	in := localAt(t, "2024-03-04", 8, 0, 0)
	lunchStart := in.Add(4 * time.Hour)
	lunchEnd := lunchStart.Add(45 * time.Minute)
	a := Attendance{
		CheckIn:  &CheckInfo{Time: in},
		CheckOut: &CheckInfo{Time: in.Add(9 * time.Hour)},
		Breaks: []Break{
			{Start: lunchStart, End: &lunchEnd, DurationMinutes: 45, Kind: BreakLunch},
			{Start: lunchEnd.Add(time.Hour), DurationMinutes: 0, Kind: BreakShort},
		},
	}

	got, err := RecomputeDerived(a, plus5)

	require.NoError(t, err)
	assert.Equal(t, 9.0, got.WorkHours)
	assert.Equal(t, 8.25, got.ProductiveHours)
}

func TestRecomputeDerived_RejectsReversedTimes(t *testing.T) {
	in := localAt(t, "2024-03-04", 9, 0, 0)

	_, err := RecomputeDerived(Attendance{
		CheckIn:  &CheckInfo{Time: in},
		CheckOut: &CheckInfo{Time: in.Add(-time.Minute)},
	}, plus5)
	assert.ErrorIs(t, err, ErrInvalidTimeOrder)

	_, err = RecomputeDerived(Attendance{
		CheckIn:  &CheckInfo{Time: in},
		CheckOut: &CheckInfo{Time: in},
	}, plus5)
	assert.ErrorIs(t, err, ErrInvalidTimeOrder)

	_, err = RecomputeDerived(Attendance{CheckOut: &CheckInfo{Time: in}}, plus5)
	assert.ErrorIs(t, err, ErrCheckOutWithoutCheckIn)
}

func TestDeriveStatus(t *testing.T) {
	in := &CheckInfo{Time: time.Now()}
	cases := []struct {
		name string
		a    Attendance
		want Status
	}{
		{"no check-in", Attendance{Status: StatusPresent}, StatusAbsent},
		{"on time", Attendance{CheckIn: in}, StatusPresent},
		{"late", Attendance{CheckIn: in, IsLate: true}, StatusLate},
		{"leave kept", Attendance{CheckIn: in, Status: StatusLeave}, StatusLeave},
		{"half-day kept", Attendance{Status: StatusHalfDay}, StatusHalfDay},
		{"wfh kept", Attendance{CheckIn: in, IsLate: true, Status: StatusWorkFromHome}, StatusWorkFromHome},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.a))
		})
	}
}

func TestBreakDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, BreakDuration(start, start.Add(30*time.Minute+20*time.Second)))
	assert.Equal(t, 31, BreakDuration(start, start.Add(30*time.Minute+30*time.Second)))
	assert.Equal(t, 0, BreakDuration(start, start.Add(-time.Minute)))
}

func TestAttendance_Helpers(t *testing.T) {
	end := time.Now()
	a := Attendance{Breaks: []Break{{End: &end, DurationMinutes: 15}, {DurationMinutes: 99}}}
	assert.Equal(t, 1, a.OpenBreak())
	assert.Equal(t, 15, a.TotalBreakMinutes())

	a.AppendNote("")
	assert.Nil(t, a.Notes)
	a.AppendNote("first")
	a.AppendNote("second")
	require.NotNil(t, a.Notes)
	assert.Equal(t, "first\nsecond", *a.Notes)

	a.CorrectionRequest = &CorrectionRequest{Status: RequestApproved}
	assert.False(t, a.HasPendingCorrection())
	a.LeaveRequest = &LeaveRequest{Status: RequestPending}
	assert.True(t, a.HasPendingLeave())
}
