package core

import (
	"sync"
	"time"
)

// SessionClock records when the current capture session started
type SessionClock struct {
	mu      sync.RWMutex
	now     func() time.Time
	start   time.Time
	started bool
}

// NewSessionClock creates a stopped clock. A nil now uses time.Now.
func NewSessionClock(now func() time.Time) *SessionClock {
	if now == nil {
		now = time.Now
	}
	return &SessionClock{now: now}
}

// Start (re)sets the session start to the current time
func (c *SessionClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
	c.started = true
}

// StartTime returns the session start and whether the clock was started
func (c *SessionClock) StartTime() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.start, c.started
}

// Elapsed returns the time since Start. It never goes negative.
func (c *SessionClock) Elapsed() (time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return 0, NewClockNotStartedError()
	}
	d := c.now().Sub(c.start)
	if d < 0 {
		d = 0
	}
	return d, nil
}
