package schedule

import (
	"sync"
	"time"
)

// Timer runs a callback once after a computed delay, and can be re-armed with
// a fresh delay after every run.
//
// Unlike a [time.Ticker], the interval is recomputed by calling the delay
// function each time the timer is armed. Timer does not re-arm itself: the
// owner calls [Timer.Rearm] when its work is done.
//
// A callback that was already scheduled when [Timer.Stop] or [Timer.Rearm]
// was called is discarded when it fires. All methods are safe for concurrent
// use.
type Timer struct {
	delay func() time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewTimer creates a stopped [Timer].
//
// delay is called while arming to compute the wait. fn runs on its own
// goroutine when the timer fires. Neither may call back into the Timer while
// it is being armed; fn may call any method.
func NewTimer(delay func() time.Duration, fn func()) *Timer {
	return &Timer{
		delay: delay,
		fn:    fn,
	}
}

// Start arms the timer with a freshly computed delay.
//
// Start is idempotent: it returns false and leaves the current schedule
// untouched if the timer is already running.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		return false
	}
	t.armLocked()
	return true
}

// Stop cancels the schedule. Stop is idempotent and returns false if the
// timer was not running. A callback that is already executing is not
// interrupted.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	return true
}

// Rearm cancels any pending fire and schedules a new one with a freshly
// computed delay. Rearm is a no-op when the timer is stopped.
func (t *Timer) Rearm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return
	}
	t.timer.Stop()
	t.armLocked()
}

// Running reports whether the timer is armed.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// armLocked schedules the callback. Caller must hold t.mu.
func (t *Timer) armLocked() {
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.delay(), func() { t.fire(gen) })
}

// fire runs the callback unless the schedule it belongs to was replaced.
func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	current := t.timer != nil && t.gen == gen
	t.mu.Unlock()

	if !current {
		return
	}
	t.fn()
}
