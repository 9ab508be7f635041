package testutil

import (
	"sync"
	"time"
)

// ManualClock is a deterministic time source for tests. Its Now method
// matches the func() time.Time clock options taken by services and jobs.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock pinned at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// NewManualClockMillis returns a clock pinned at the given epoch millis.
func NewManualClockMillis(ms int64) *ManualClock {
	return NewManualClock(time.UnixMilli(ms).UTC())
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// SetMillis moves the clock to the given epoch millis.
func (c *ManualClock) SetMillis(ms int64) {
	c.Set(time.UnixMilli(ms).UTC())
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
