package chat

import "time"

// Scheduler runs callbacks after a delay. The controller uses it for the
// reveal-delay and notice timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback scheduled by a Scheduler.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// TimeScheduler schedules callbacks with time.AfterFunc.
type TimeScheduler struct{}

// AfterFunc calls f in its own goroutine after d.
func (TimeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
