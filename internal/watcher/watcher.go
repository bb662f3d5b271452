// Package watcher implements the Watcher Engine (C3): a recursive,
// backend-selecting filesystem watch that emits opaque Change Events with
// no debouncing of its own (that's internal/debounce's job). Grounded on
// fsnotify.NewWatcher()/Add()/watcher.Events usage in the teacher's
// cmd/bd/daemon_watcher.go and inful-docbuilder's
// internal/daemon/config_watcher.go, both of which run the fsnotify event
// loop on its own goroutine behind a context-cancellable Start/Stop.
package watcher

import (
	"context"
	"errors"
)

// Backend identifies which notification mechanism is active, exposed as a
// read-only attribute per §4.3 ("Expose the chosen backend as a
// read-only attribute").
type Backend string

const (
	BackendNative  Backend = "native"
	BackendPolling Backend = "polling"
)

// Event is an opaque Change Event marker; §4.3: "Events are opaque
// markers. No ordering guarantee between backends."
type Event struct{}

// ErrSubscriptionLost is the recoverable error §4.3 calls for when the
// native subscription aborts (watch limit exceeded, subtree deleted).
var ErrSubscriptionLost = errors.New("subscription_lost")

// Watcher recursively watches one project root and emits Change Events
// until Close or ctx is cancelled.
type Watcher struct {
	Backend Backend

	events chan Event
	errs   chan error
	close  func() error
}

// Events returns the channel of Change Events. The Watcher itself emits
// one immediate synthetic event once its subscription is established
// (§4.3 "Startup race" — the consumer can run a catch-up backup).
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the channel of backend errors: fsnotify errors from the
// native backend, filesystem walk errors from the polling backend. Neither
// backend sends ErrSubscriptionLost, and a lost subscription is not
// restarted by the Watcher.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher and releases its backend resources.
func (w *Watcher) Close() error {
	if w.close == nil {
		return nil
	}
	return w.close()
}

// Options configures a new Watcher.
type Options struct {
	Root         string
	Excludes     *ExcludeSet
	PollInterval PollIntervalOrDefault
}

// PollIntervalOrDefault lets callers omit PollInterval and get the §4.3
// default of 30s.
type PollIntervalOrDefault = int // seconds; 0 means "use default"

// New selects a backend in the §4.3 preference order — native first,
// falling back to polling when native subscription setup fails — and
// starts watching root.
func New(ctx context.Context, opts Options) (*Watcher, error) {
	w, err := newNativeWatcher(ctx, opts)
	if err == nil {
		return w, nil
	}
	return newPollWatcher(ctx, opts), nil
}
