package chrono

import (
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in the local timezone.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now()
}

// FixedTime always returns the same instant, advancing by Step after
// every call if Step is non-zero.
type FixedTime struct {
	current time.Time
	step    time.Duration
}

func NewFixedTime(t time.Time, step time.Duration) *FixedTime {
	return &FixedTime{current: t, step: step}
}

func (f *FixedTime) Now() time.Time {
	now := f.current
	f.current = f.current.Add(f.step)
	return now
}
