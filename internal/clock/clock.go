// Package clock abstracts wall time and delayed callbacks so deferred work can
// be driven by virtual time in tests.
package clock

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the timer
	// before it fired.
	Stop() bool
}

// Clock supplies the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the production clock backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns the real clock.
func New() Clock { return Real{} }
