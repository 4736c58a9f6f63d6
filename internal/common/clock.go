package common

import "time"

// Clock lets time-dependent logic (cooldowns, exit locks, elapsed-away
// durations) run against a controlled time source in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
