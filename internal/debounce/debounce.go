// Package debounce implements the Debouncer & Session Logic component
// (§4.4): a single pending trailing-edge timer per project plus the
// session-idle detector that can bypass the interval gate. The teacher's
// own Debouncer type (referenced from cmd/bd's daemon event loop) was not
// present in the retrieval pack, so this is authored fresh in the same
// mutex-plus-cancellable-timer shape the teacher's daemon code assumes.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of Change Events into a single trailing-edge
// fire, `window` after the last event. It is single-threaded cooperative:
// Notify never blocks on the callback, matching §4.4's concurrency
// contract ("its own work never blocks on the Executor").
type Debouncer struct {
	window time.Duration
	fire   func()

	mu    sync.Mutex
	timer *time.Timer
}

// New returns a Debouncer that calls fire window after the most recent
// Notify call, unless Cancel is called first.
func New(window time.Duration, fire func()) *Debouncer {
	return &Debouncer{window: window, fire: fire}
}

// Notify resets the pending quiet-timer. Safe for concurrent use.
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Cancel stops any pending timer without firing it, used on shutdown
// (§4.4 "Cancellation").
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
