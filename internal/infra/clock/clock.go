// Package clock provides domain.Clock implementations.
package clock

import (
	"sync"
	"time"
)

// System reads the wall clock, never returning a reading earlier than the
// previous one.
type System struct {
	mu   sync.Mutex
	last time.Time
}

// NewSystem creates a wall clock.
func NewSystem() *System { return &System{} }

// Now returns the current UTC time, clamped to be non-decreasing.
func (c *System) Now() time.Time {
	now := time.Now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}

// Manual is a settable clock for tests and replaying a fixed timeline.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock starting at t.
func NewManual(t time.Time) *Manual { return &Manual{now: t.UTC()} }

// Now returns the current manual time.
func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative d is ignored.
func (c *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t if t is not earlier than the current time.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t.UTC()
	}
}
