package lifecycle

import (
	"sync"
	"time"
)

// Countdown is the confirmation timer for one pending download. Unlike a
// bare time.Timer it supports pause and resume-with-remaining, and a paused
// countdown never fires even if the underlying timer races with Pause.
type Countdown struct {
	mu        sync.Mutex
	timer     *time.Timer
	deadline  time.Time
	remaining time.Duration
	paused    bool
	settled   bool
	fire      func()
}

// NewCountdown arms a countdown that calls fire after d unless paused or
// cancelled first
func NewCountdown(d time.Duration, fire func()) *Countdown {
	c := &Countdown{fire: fire}
	c.arm(d)
	return c
}

func (c *Countdown) arm(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deadline = time.Now().Add(d)
	c.paused = false
	c.timer = time.AfterFunc(d, c.onExpire)
}

func (c *Countdown) onExpire() {
	c.mu.Lock()
	if c.paused || c.settled {
		c.mu.Unlock()
		return
	}
	c.settled = true
	fire := c.fire
	c.mu.Unlock()

	fire()
}

// Pause suspends the countdown and returns the time that was left
func (c *Countdown) Pause() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settled || c.paused {
		return c.remaining
	}

	c.paused = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.remaining = time.Until(c.deadline)
	if c.remaining < 0 {
		c.remaining = 0
	}
	return c.remaining
}

// Resume re-arms a paused countdown. A non-positive remaining falls back to
// the time left when the countdown was paused.
func (c *Countdown) Resume(remaining time.Duration) {
	c.mu.Lock()
	if c.settled || !c.paused {
		c.mu.Unlock()
		return
	}
	if remaining <= 0 {
		remaining = c.remaining
	}
	c.mu.Unlock()

	c.arm(remaining)
}

// Cancel permanently disarms the countdown
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settled = true
	if c.timer != nil {
		c.timer.Stop()
	}
}

// Paused reports whether the countdown is currently suspended
func (c *Countdown) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused && !c.settled
}
