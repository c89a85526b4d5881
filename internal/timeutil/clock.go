// Package timeutil provides a testable abstraction over the local clock
// and the monotonic nanosecond timestamp domain used by the vision core.
package timeutil

import (
	"sync"
	"time"
)

// Clock provides an abstraction over time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t, using the monotonic reading
// carried by t when present.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock is a manually controlled clock for testing.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set sets the mock clock to a specific time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the mock clock forward by the given duration.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Since returns the duration since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Monotonic maps a Clock onto int64 nanoseconds since a fixed epoch taken
// at construction. Values never go backwards for RealClock.
type Monotonic struct {
	clock Clock
	epoch time.Time
}

// NewMonotonic anchors a monotonic nanosecond domain at clock.Now().
func NewMonotonic(clock Clock) *Monotonic {
	if clock == nil {
		clock = RealClock{}
	}
	return &Monotonic{clock: clock, epoch: clock.Now()}
}

// Nanos returns nanoseconds elapsed since the epoch.
func (m *Monotonic) Nanos() int64 {
	return m.clock.Since(m.epoch).Nanoseconds()
}

// Epoch returns the wall-clock anchor of the domain.
func (m *Monotonic) Epoch() time.Time {
	return m.epoch
}
