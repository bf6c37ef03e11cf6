// Package testutil holds deterministic stand-ins for the clocks and
// generators the production code injects.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is a thread-safe wall clock pinned to a chosen instant.
//
// Unlike time.Now, FixedClock only moves when a test calls Advance,
// which makes time-based due-checks reproducible.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock pinned to t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to a new instant.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
