package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
)

// RecomputeDerived recalculates work hours, productive hours and lateness from the
// check-in/out times and breaks. Every mutation path calls it right before the store.
// It does not touch Status; see DeriveStatus.
func RecomputeDerived(a Attendance, clk clock.Clock) (Attendance, error) {
	a.WorkHours = 0
	a.ProductiveHours = 0
	a.IsLate = false
	a.LateBy = 0

	if a.CheckIn == nil {
		if a.CheckOut != nil {
			return a, ErrCheckOutWithoutCheckIn
		}
		return a, nil
	}

	a.IsLate, a.LateBy = clk.IsLate(a.CheckIn.Time)

	if a.CheckOut == nil {
		return a, nil
	}
	if !a.CheckOut.Time.After(a.CheckIn.Time) {
		return a, ErrInvalidTimeOrder
	}

	a.WorkHours = round2(a.CheckOut.Time.Sub(a.CheckIn.Time).Hours())
	productive := a.WorkHours - float64(a.TotalBreakMinutes())/60
	if productive < 0 {
		productive = 0
	}
	a.ProductiveHours = round2(productive)

	return a, nil
}

// DeriveStatus is the one place a record's status is derived from its facts.
//
//	leave, half-day, work-from-home  explicit, kept as set
//	no check-in                      absent
//	check-in after cutoff            late
//	otherwise                        present
func DeriveStatus(a Attendance) Status {
	switch a.Status {
	case StatusLeave, StatusHalfDay, StatusWorkFromHome:
		return a.Status
	}
	if a.CheckIn == nil {
		return StatusAbsent
	}
	if a.IsLate {
		return StatusLate
	}
	return StatusPresent
}

// BreakDuration rounds to the nearest whole minute.
func BreakDuration(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(math.Round(end.Sub(start).Minutes()))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
