package testutil

import (
	"sync"
	"time"
)

// FixedTime is the instant FixedClock reports unless told otherwise.
var FixedTime = time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)

// FixedClock is a report clock that always returns the same instant.
//
// It satisfies report.Clock, so assembled documents carry a stable
// document id and report date in golden snapshots.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock returns a clock pinned to t. A zero t uses FixedTime.
func NewFixedClock(t time.Time) *FixedClock {
	if t.IsZero() {
		t = FixedTime
	}
	return &FixedClock{t: t}
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
