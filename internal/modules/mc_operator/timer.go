package mc_operator

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Timer is a restartable, cancellable time.AfterFunc.
type Timer struct {
	mu    deadlock.Mutex
	timer *time.Timer
}

func NewTimer() *Timer {
	return &Timer{}
}

// Schedule runs scheduleFunc after timeout, replacing any pending run.
func (t *Timer) Schedule(timeout time.Duration, scheduleFunc func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(timeout, func() {
		t.mu.Lock()
		if t.timer == timer {
			t.timer = nil
		}
		t.mu.Unlock()
		scheduleFunc()
	})
	t.timer = timer
}

// Scheduled reports whether a run is pending.
func (t *Timer) Scheduled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timer != nil
}

// Stop cancels the pending run, if any.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
