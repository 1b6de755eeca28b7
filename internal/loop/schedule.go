package loop

import "time"

// schedule yields anchored deadlines start + n*period. Multiplying instead of
// adding keeps rounding from accumulating over long runs.
type schedule struct {
	start  time.Time
	period time.Duration
	n      int64
}

func newSchedule(start time.Time, period time.Duration) *schedule {
	return &schedule{start: start, period: period}
}

// next advances to the following deadline and returns it.
func (s *schedule) next() time.Time {
	s.n++
	return s.start.Add(time.Duration(s.n) * s.period)
}
