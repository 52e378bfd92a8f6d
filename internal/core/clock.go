package core

import "time"

// Clock abstracts wall-clock reads so session timing (profile refresh,
// phase ramps) can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time                   { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// FakeClock is a manually advanced test clock. Not safe for concurrent use;
// tests advance it from a single goroutine.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a FakeClock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{current: start}
}

func (f *FakeClock) Now() time.Time                   { return f.current }
func (f *FakeClock) Since(t time.Time) time.Duration { return f.current.Sub(t) }

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) { f.current = f.current.Add(d) }
