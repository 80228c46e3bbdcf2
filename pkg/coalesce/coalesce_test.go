package coalesce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced clock for deterministic timer tests.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{deadline: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.deadline.After(c.now) {
			t.stopped = true
			due = append(due, t)
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

type countingFn struct {
	mu    sync.Mutex
	count int
}

func (f *countingFn) run() {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
}

func (f *countingFn) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// TestTriggerImmediate tests that a trigger outside the window runs on
// the spot
func TestTriggerImmediate(t *testing.T) {
	clock := newFakeClock()
	fn := &countingFn{}
	c := NewWithClock(900*time.Millisecond, fn.run, clock)

	c.Trigger()
	assert.Equal(t, 1, fn.calls())

	// well past the window, immediate again
	clock.Advance(2 * time.Second)
	c.Trigger()
	assert.Equal(t, 2, fn.calls())
}

// TestTriggerCoalescesBurst tests that a burst inside the window
// collapses into one deferred execution at the window's close
func TestTriggerCoalescesBurst(t *testing.T) {
	clock := newFakeClock()
	fn := &countingFn{}
	c := NewWithClock(900*time.Millisecond, fn.run, clock)

	c.Trigger()
	assert.Equal(t, 1, fn.calls())

	clock.Advance(100 * time.Millisecond)
	c.Trigger()
	clock.Advance(100 * time.Millisecond)
	c.Trigger()
	clock.Advance(100 * time.Millisecond)
	c.Trigger()

	// still inside the window, nothing extra has run
	assert.Equal(t, 1, fn.calls())

	// window closes 900ms after the immediate run
	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, 2, fn.calls())

	// no stray timers left behind
	clock.Advance(5 * time.Second)
	assert.Equal(t, 2, fn.calls())
}

// TestTriggerAfterDeferredRun tests that the window restarts from the
// deferred execution, not the original trigger
func TestTriggerAfterDeferredRun(t *testing.T) {
	clock := newFakeClock()
	fn := &countingFn{}
	c := NewWithClock(900*time.Millisecond, fn.run, clock)

	c.Trigger()
	clock.Advance(500 * time.Millisecond)
	c.Trigger()
	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, 2, fn.calls())

	// inside the new window, defers again
	clock.Advance(100 * time.Millisecond)
	c.Trigger()
	assert.Equal(t, 2, fn.calls())
	clock.Advance(800 * time.Millisecond)
	assert.Equal(t, 3, fn.calls())
}

// TestDefaultWindow tests the fallback when no window is configured
func TestDefaultWindow(t *testing.T) {
	c := New(0, func() {})
	assert.Equal(t, DefaultWindow, c.window)

	c = New(-1*time.Second, func() {})
	assert.Equal(t, DefaultWindow, c.window)

	c = New(2*time.Second, func() {})
	assert.Equal(t, 2*time.Second, c.window)
}

// TestStopCancelsPending tests that Stop drops a scheduled execution and
// rejects further triggers
func TestStopCancelsPending(t *testing.T) {
	clock := newFakeClock()
	fn := &countingFn{}
	c := NewWithClock(900*time.Millisecond, fn.run, clock)

	c.Trigger()
	clock.Advance(100 * time.Millisecond)
	c.Trigger()
	assert.Equal(t, 1, fn.calls())

	c.Stop()
	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, fn.calls())

	c.Trigger()
	assert.Equal(t, 1, fn.calls())

	// Stop twice is safe
	c.Stop()
}
