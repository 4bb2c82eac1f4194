package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey_UsesOrganizationalOffset(t *testing.T) {
	clk := New(5*time.Hour, DefaultCutoff)

	// 2024-01-01 20:30 UTC is already 2024-01-02 01:30 at +05:00.
	instant := time.Date(2024, 1, 1, 20, 30, 0, 0, time.UTC)
	key := clk.DayKey(instant)

	assert.Equal(t, time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC), key)
	assert.Equal(t, "2024-01-02", clk.FormatDay(key))
}

func TestDayKey_IndependentOfInstantZone(t *testing.T) {
	clk := New(-3*time.Hour, DefaultCutoff)
	utc := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	tokyo := utc.In(time.FixedZone("JST", 9*3600))

	assert.Equal(t, clk.DayKey(utc), clk.DayKey(tokyo))
	assert.Equal(t, "2024-03-09", clk.FormatDay(clk.DayKey(tokyo)))
}

func TestDayRange_HalfOpen(t *testing.T) {
	clk := New(5*time.Hour, DefaultCutoff)
	key, err := clk.ParseDay("2024-01-02")
	require.NoError(t, err)

	start, end := clk.DayRange(key)
	assert.Equal(t, key, start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	lastInstant := end.Add(-time.Nanosecond)
	assert.Equal(t, key, clk.DayKey(lastInstant))
	assert.NotEqual(t, key, clk.DayKey(end))
}

func TestIsLate_CutoffAtPlusFive(t *testing.T) {
	clk := New(5*time.Hour, DefaultCutoff)
	day, err := clk.ParseDay("2024-01-01")
	require.NoError(t, err)

	cases := []struct {
		name    string
		instant time.Time
		late    bool
		lateBy  int
	}{
		{"08:59 local", clk.At(day, 8, 59, 0), false, 0},
		{"09:00:00 local", clk.At(day, 9, 0, 0), false, 0},
		{"09:00:01 local", clk.At(day, 9, 0, 1), true, 1},
		{"09:15 local", clk.At(day, 9, 15, 0), true, 15},
		{"09:15:30 local", clk.At(day, 9, 15, 30), true, 16},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			late, by := clk.IsLate(c.instant)
			assert.Equal(t, c.late, late)
			assert.Equal(t, c.lateBy, by)
		})
	}
}

func TestIsLate_08_59LocalIsUTCMorning(t *testing.T) {
	// 08:59 at +05:00 is 03:59 UTC; a server-local bucketing would call it early anyway,
	// but 04:01 UTC (09:01 local) must be late even though it is early morning in UTC.
	clk := New(5*time.Hour, DefaultCutoff)
	late, by := clk.IsLate(time.Date(2024, 1, 1, 4, 1, 0, 0, time.UTC))
	assert.True(t, late)
	assert.Equal(t, 1, by)
}

func TestDays_Inclusive(t *testing.T) {
	clk := New(5*time.Hour, DefaultCutoff)
	start, _ := clk.ParseDay("2024-01-01")
	end, _ := clk.ParseDay("2024-01-03")

	days := clk.Days(start, end)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-01", clk.FormatDay(days[0]))
	assert.Equal(t, "2024-01-03", clk.FormatDay(days[2]))

	assert.Empty(t, clk.Days(end, start))
}

func TestMonthRange(t *testing.T) {
	clk := New(-5*time.Hour, DefaultCutoff)
	start, end := clk.MonthRange(2024, time.February)

	assert.Equal(t, "2024-02-01", clk.FormatDay(start))
	assert.Equal(t, "2024-03-01", clk.FormatDay(end))
	assert.Len(t, clk.Days(start, end.Add(-time.Nanosecond)), 29)
}

func TestParseOffset(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"Z", 0, true},
		{"UTC", 0, true},
		{"+05:00", 5 * time.Hour, true},
		{"-03:30", -(3*time.Hour + 30*time.Minute), true},
		{"+0530", 5*time.Hour + 30*time.Minute, true},
		{"+7", 7 * time.Hour, true},
		{"05:00", 0, false},
		{"+15:00", 0, false},
		{"+05:75", 0, false},
		{"+ab", 0, false},
	}
	for _, c := range cases {
		got, err := ParseOffset(c.in)
		if !c.ok {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	d, err := ParseTimeOfDay("09:00")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour, d)

	d, err = ParseTimeOfDay("17:10:30")
	require.NoError(t, err)
	assert.Equal(t, 17*time.Hour+10*time.Minute+30*time.Second, d)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}
