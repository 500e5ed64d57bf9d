package exchange

import (
	"sync"
	"time"
)

// Clock hands out timestamps that never go backwards, even when the wall
// clock does. Timestamps have millisecond resolution to match storage.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a Clock reading from now. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Next returns a timestamp no earlier than any previous one and no earlier
// than floor.
func (c *Clock) Next(floor time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Millisecond)
	if t.Before(c.last) {
		t = c.last
	}
	if t.Before(floor) {
		t = floor.UTC()
	}
	c.last = t
	return t
}
