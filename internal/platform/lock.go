package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Lock is the advisory, process-scoped mutex described in §3 ("Lock"):
// keyed by operation name, released on all exit paths including signals.
// It follows the teacher's flock.New(path) / TryLock() / Unlock() usage in
// cmd/bd/sync.go, generalized into the typed Lock(name) -> Handle
// abstraction §9 calls for (replacing write-PID-then-verify with a handle
// whose release is deferred).
type Lock struct {
	path string
	fl   *flock.Flock
}

// Handle is released exactly once, from any exit path, via Release.
type Handle struct {
	lock *Lock
}

// NewLock returns a Lock for the given operation name ("backup", "restore",
// "cleanup") scoped to stateDir, e.g. <state_root>/projects/<id>/.
func NewLock(stateDir, operation string) *Lock {
	path := filepath.Join(stateDir, fmt.Sprintf(".%s.lock", operation))
	return &Lock{path: path, fl: flock.New(path)}
}

// TryAcquire attempts a non-blocking lock; ok is false on contention
// (Executor's "fail fast on contention", §4.5 step 1).
func (l *Lock) TryAcquire() (*Handle, bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return nil, false, err
	}
	locked, err := l.fl.TryLock()
	if err != nil {
		return nil, false, err
	}
	if !locked {
		return nil, false, nil
	}
	return &Handle{lock: l}, true, nil
}

// AcquireBlocking waits up to timeout for the lock (used by the Watchdog
// and retention sweep, which can afford to wait rather than fail fast).
func (l *Lock) AcquireBlocking(timeout time.Duration) (*Handle, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.fl.TryLock()
		if err != nil {
			return nil, err
		}
		if locked {
			return &Handle{lock: l}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for lock %s", l.path)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Release unlocks the handle. Safe to call more than once; only the first
// call has effect, satisfying the "single cleanup-done flag" guard in §5.
func (h *Handle) Release() error {
	if h == nil || h.lock == nil {
		return nil
	}
	err := h.lock.fl.Unlock()
	h.lock = nil
	return err
}

// Stale reports whether the lock's owner PID (if recoverable from the
// lock file, which flock does not expose directly) appears to be gone.
// Checkpoint does not need PID introspection here: flock locks are
// released automatically by the OS when the owning process exits or dies,
// so "stale lock reclaim" (§3) falls out of flock semantics directly
// rather than needing a manual liveness check.
func (l *Lock) Stale() bool { return false }
