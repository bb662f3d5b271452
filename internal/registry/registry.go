// Package registry tracks every project Checkpoint knows about: its root
// path, state directory, and the PIDs of its watcher and periodic agent.
// Adapted from the teacher's internal/daemon/registry.go — same
// read-modify-write-under-flock shape, same JSON array file, same
// stale-entry cleanup on List — generalized from "one daemon per
// workspace" to "one watcher + one agent per registered project", with
// isProcessAlive reimplemented via gopsutil instead of the teacher's own
// PID-parsing helper, and the teacher's internal/lockfile wrapper
// (unavailable in the retrieval pack) replaced by direct gofrs/flock
// through internal/platform.Lock.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/platform"
)

// Entry is one registered project.
type Entry struct {
	ProjectID   string    `json:"project_id"`
	Root        string    `json:"root"`
	RegisteredAt time.Time `json:"registered_at"`
	WatcherPID  int       `json:"watcher_pid,omitempty"`
	AgentPID    int       `json:"agent_pid,omitempty"`
}

// Registry manages <state_root>/registry.json (~/.checkpoint/registry.json
// with the default state root).
type Registry struct {
	path string
	lock *platform.Lock
	mu   sync.Mutex
}

// New opens the registry under stateRoot (<state_root>/registry.json,
// <state_root>/registry.lock).
func New(stateRoot string) (*Registry, error) {
	if err := os.MkdirAll(stateRoot, 0o750); err != nil {
		return nil, fmt.Errorf("creating state root: %w", err)
	}
	return &Registry{
		path: filepath.Join(stateRoot, "registry.json"),
		lock: platform.NewLock(stateRoot, "registry"),
	}, nil
}

func (r *Registry) withLock(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.lock.AcquireBlocking(5 * time.Second)
	if err != nil {
		return fmt.Errorf("acquiring registry lock: %w", err)
	}
	defer h.Release()

	return fn()
}

func (r *Registry) readLocked() ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	if len(data) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupted registry just means projects get rediscovered/
		// re-registered; treat it as empty rather than failing hard.
		return []Entry{}, nil
	}
	return entries, nil
}

func (r *Registry) writeLocked(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry: %w", err)
	}
	return platform.AtomicWriteFile(r.path, data, 0o644)
}

// Register adds or replaces the entry for projectID.
func (r *Registry) Register(entry Entry) error {
	return r.withLock(func() error {
		entries, err := r.readLocked()
		if err != nil {
			return err
		}
		filtered := entries[:0]
		for _, e := range entries {
			if e.ProjectID != entry.ProjectID {
				filtered = append(filtered, e)
			}
		}
		filtered = append(filtered, entry)
		return r.writeLocked(filtered)
	})
}

// Unregister removes projectID's entry.
func (r *Registry) Unregister(projectID string) error {
	return r.withLock(func() error {
		entries, err := r.readLocked()
		if err != nil {
			return err
		}
		filtered := entries[:0]
		for _, e := range entries {
			if e.ProjectID != projectID {
				filtered = append(filtered, e)
			}
		}
		return r.writeLocked(filtered)
	})
}

// List returns every registered project. Entries are never removed here:
// a watcher or agent PID that no longer belongs to a live process is reset
// to 0 and the cleaned list is written back (the teacher's "clean up stale
// entries on List" behavior, applied per PID instead of per entry).
func (r *Registry) List() ([]Entry, error) {
	var live []Entry
	err := r.withLock(func() error {
		entries, err := r.readLocked()
		if err != nil {
			return err
		}
		stale := false
		for _, e := range entries {
			watcherAlive := e.WatcherPID != 0 && platform.Alive(e.WatcherPID, "watch start --foreground")
			agentAlive := e.AgentPID != 0 && platform.Alive(e.AgentPID, "checkpoint-daemon-schedule")
			if e.WatcherPID == 0 && e.AgentPID == 0 {
				live = append(live, e)
				continue
			}
			if !watcherAlive {
				e.WatcherPID = 0
			}
			if !agentAlive {
				e.AgentPID = 0
			}
			if !watcherAlive || !agentAlive {
				stale = true
			}
			live = append(live, e)
		}
		if stale {
			if err := r.writeLocked(live); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to clean up stale registry entries: %v\n", err)
			}
		}
		return nil
	})
	return live, err
}

// Get returns the entry for projectID, or ok=false if not registered.
func (r *Registry) Get(projectID string) (Entry, bool, error) {
	entries, err := r.List()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.ProjectID == projectID {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}
