package common

import (
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	Running   bool
}

func NewStopwatch(timeout time.Duration) Stopwatch {
	return Stopwatch{Timeout: timeout}
}

func (s *Stopwatch) Start() {
	s.Running = true
	s.startTime = time.Now()
}

func (s *Stopwatch) Stop() {
	s.Running = false
}

// Check if the timeout has been reached. The returned duration is the
// time elapsed beyond the timeout; negative means the timeout is still pending
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	elapsed := time.Since(s.startTime.Add(s.Timeout))
	return !s.Running || elapsed >= 0, elapsed
}
