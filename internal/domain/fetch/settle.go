package fetch

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SettleTimer runs the most recently scheduled callback once the delay has
// passed without another Schedule. Superseded callbacks never run.
type SettleTimer struct {
	mu    sync.Mutex
	clock clockwork.Clock
	delay time.Duration
	timer clockwork.Timer
	gen   uint64
}

// NewSettleTimer creates a timer over clock. A nil clock uses the real one.
func NewSettleTimer(clock clockwork.Clock, delay time.Duration) *SettleTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SettleTimer{clock: clock, delay: delay}
}

// Schedule restarts the timer with fn, discarding any earlier callback.
// It reports whether an earlier callback was discarded.
func (t *SettleTimer) Schedule(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	superseded := t.stopLocked()
	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(t.delay, func() {
		t.mu.Lock()
		if gen != t.gen || t.timer == nil {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
	return superseded
}

// Cancel drops the scheduled callback, if any. It reports whether one was dropped.
func (t *SettleTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	return t.stopLocked()
}

// Pending reports whether a callback is waiting to run.
func (t *SettleTimer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *SettleTimer) stopLocked() bool {
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}
