package coalesce

import (
	"sync"
	"time"

	"github.com/mdrrmo/fieldsync/pkg/metrics"
)

// DefaultWindow is the coalescing window applied when none is configured.
const DefaultWindow = 900 * time.Millisecond

// Coalescer rate-limits an expensive function with trailing-edge
// coalescing. A trigger outside the window runs immediately; triggers
// inside the window collapse into a single execution scheduled for the
// window's close. For any finite burst exactly one execution occurs, no
// earlier than the first trigger and no later than the last trigger plus
// the window.
type Coalescer struct {
	window time.Duration
	clock  Clock
	fn     func()

	mu      sync.Mutex
	lastRun time.Time
	pending Timer
	stopped bool
}

// New creates a coalescer around fn using the system clock.
func New(window time.Duration, fn func()) *Coalescer {
	return NewWithClock(window, fn, SystemClock())
}

// NewWithClock creates a coalescer with an explicit clock.
func NewWithClock(window time.Duration, fn func(), clock Clock) *Coalescer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Coalescer{
		window: window,
		clock:  clock,
		fn:     fn,
	}
}

// Trigger requests an execution. The function runs on the caller's
// goroutine when the window has elapsed, otherwise on the timer goroutine
// when the window closes.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	now := c.clock.Now()
	if now.Sub(c.lastRun) > c.window {
		c.lastRun = now
		if c.pending != nil {
			c.pending.Stop()
			c.pending = nil
		}
		c.mu.Unlock()
		metrics.CoalescerTriggersTotal.WithLabelValues("immediate").Inc()
		c.fn()
		return
	}

	if c.pending != nil {
		c.pending.Stop()
	}
	delay := c.lastRun.Add(c.window).Sub(now)
	c.pending = c.clock.AfterFunc(delay, c.fire)
	c.mu.Unlock()
	metrics.CoalescerTriggersTotal.WithLabelValues("deferred").Inc()
}

func (c *Coalescer) fire() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.lastRun = c.clock.Now()
	c.mu.Unlock()
	c.fn()
}

// Stop cancels any pending execution and rejects further triggers. It is
// safe to call more than once.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}
