package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	DefaultCutoff   = 9 * time.Hour
	day             = 24 * time.Hour
	maxOffsetAbsMin = 14 * 60
)

// Clock converts instants into organizational attendance days.
// Every day key it produces is the UTC instant of local midnight at the
// organizational offset, so keys compare and persist the same way no matter
// which timezone the process runs in.
type Clock struct {
	loc    *time.Location
	cutoff time.Duration
}

// New builds a Clock for a fixed UTC offset and a daily lateness cutoff
// expressed as the duration since local midnight.
func New(offset, cutoff time.Duration) Clock {
	return Clock{
		loc:    time.FixedZone(offsetName(offset), int(offset.Seconds())),
		cutoff: cutoff,
	}
}

// Location returns the fixed organizational zone.
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayKey returns the start of the organizational day containing instant.
func (c Clock) DayKey(instant time.Time) time.Time {
	local := instant.In(c.Location())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
	return midnight.UTC()
}

// DayRange returns the half-open interval [start, end) covered by dayKey.
func (c Clock) DayRange(dayKey time.Time) (time.Time, time.Time) {
	start := c.DayKey(dayKey)
	return start, start.Add(day)
}

// IsLate reports whether instant falls strictly after the cutoff on its local
// day, and by how many minutes. Partial minutes round up, so one second past
// the cutoff is one minute late.
func (c Clock) IsLate(instant time.Time) (bool, int) {
	sinceMidnight := instant.Sub(c.DayKey(instant))
	if sinceMidnight <= c.cutoff {
		return false, 0
	}
	return true, int(math.Ceil((sinceMidnight - c.cutoff).Minutes()))
}

// ParseDay parses a YYYY-MM-DD calendar date into its day key.
func (c Clock) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), c.Location())
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDay renders a day key as the organizational calendar date.
func (c Clock) FormatDay(dayKey time.Time) string {
	return dayKey.In(c.Location()).Format(DateLayout)
}

// MonthRange returns the day key of the first day of the month and the day
// key of the first day of the following month.
func (c Clock) MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, c.Location())
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

// Days lists every day key from start to end inclusive.
func (c Clock) Days(start, end time.Time) []time.Time {
	start, end = c.DayKey(start), c.DayKey(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start)/day)+1)
	for d := start; !d.After(end); d = d.Add(day) {
		days = append(days, d)
	}
	return days
}

// At returns the instant at the given local wall-clock time on dayKey.
func (c Clock) At(dayKey time.Time, hour, minute, second int) time.Time {
	local := dayKey.In(c.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, second, 0, c.Location()).UTC()
}

// ParseOffset accepts "Z", "UTC", "+05:00", "-0330" or "+7".
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "Z", "UTC":
		return 0, nil
	}

	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	default:
		return 0, fmt.Errorf("invalid offset %q: must start with + or -", s)
	}

	var hh, mm string
	switch {
	case strings.Contains(s, ":"):
		parts := strings.SplitN(s, ":", 2)
		hh, mm = parts[0], parts[1]
	case len(s) == 4:
		hh, mm = s[:2], s[2:]
	default:
		hh, mm = s, "0"
	}

	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid offset hours %q: %w", hh, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid offset minutes %q: %w", mm, err)
	}
	if m < 0 || m >= 60 || h < 0 || h*60+m > maxOffsetAbsMin {
		return 0, fmt.Errorf("offset out of range: %s", s)
	}

	return time.Duration(sign) * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into a duration since midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

func offsetName(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return fmt.Sprintf("UTC%s%02d:%02d", sign, h, m)
}
