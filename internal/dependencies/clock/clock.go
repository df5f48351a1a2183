// Package clock abstracts the wall clock so account timestamps are
// reproducible in tests.
package clock

import "time"

// Clock is the time source injected into services.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// New returns the production Clock.
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current wall-clock time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}
