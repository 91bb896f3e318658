package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule runs a job on fixed interval boundaries,
// so an hourly job fires at the top of each hour.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule. Non-positive intervals fall back to one hour.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval <= 0 {
		interval = time.Hour
	}
	return &IntervalSchedule{Interval: interval}
}

// Next returns the first interval boundary strictly after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Truncate(s.Interval).Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval)
}
