package status

import (
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer.
	Stop() bool
}

// Clock supplies wall-clock time and one-shot timers.
// A zero Now means the clock is not available.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns time.Now without its monotonic reading, so deadlines follow
// wall-clock steps.
func (SystemClock) Now() time.Time {
	return time.Now().Round(0)
}

// AfterFunc schedules f on its own goroutine after d.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// AlignedDeadline returns the smallest instant at or after now that is an
// exact multiple of period since the Unix epoch.
func AlignedDeadline(now time.Time, period time.Duration) time.Time {
	if period <= 0 {
		return now
	}
	rem := now.UnixNano() % int64(period)
	if rem < 0 {
		rem += int64(period)
	}
	if rem == 0 {
		return now
	}
	return now.Add(period - time.Duration(rem))
}

// nextAlignedAfter returns the first aligned instant strictly after now.
func nextAlignedAfter(now time.Time, period time.Duration) time.Time {
	d := AlignedDeadline(now, period)
	if !d.After(now) {
		d = d.Add(period)
	}
	return d
}
