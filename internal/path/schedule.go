package path

import "math"

// Effort estimates per gap type, in hours.
const (
	MissingHours        = 15.0
	ProficiencyLowHours = 8.0
)

// schedule is the packing state between modules: the current week and the
// hours already placed in it.
type schedule struct {
	week   int
	filled float64
}

func newSchedule() schedule {
	return schedule{week: 1}
}

// place returns the start week for a module of the given hours and the state
// after placing it. The week advances only when it already holds work and the
// module would overflow it; a module larger than the budget still starts in
// an empty week and overflows.
func (s schedule) place(hours, budget float64) (int, schedule) {
	if s.filled > 0 && s.filled+hours > budget {
		s = schedule{week: s.week + 1}
	}
	return s.week, schedule{week: s.week, filled: s.filled + hours}
}

// spanWeeks is the number of weeks hours takes at budget hours per week.
func spanWeeks(hours, budget float64) int {
	n := int(math.Ceil(hours / budget))
	if n < 1 {
		n = 1
	}
	return n
}
