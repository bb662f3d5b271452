// Package state manages the per-project state files listed in the data
// model: last-backup-time, current-session-time, daemon.heartbeat, PID
// files, and the global paused sentinel. Every write goes through
// platform.AtomicWriteFile, the teacher's temp-file-then-rename idiom from
// internal/daemon/registry.go.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/platform"
)

// Dir is the per-project state directory: <state_root>/projects/<id>/.
type Dir struct {
	Root string
}

func New(stateRoot, projectID string) Dir {
	return Dir{Root: filepath.Join(stateRoot, "projects", projectID)}
}

func (d Dir) path(name string) string { return filepath.Join(d.Root, name) }

// LastBackupTime reads last-backup-time, or the zero time if absent.
func (d Dir) LastBackupTime() time.Time {
	return readUnixSeconds(d.path("last-backup-time"))
}

// SetLastBackupTime writes last-backup-time. Callers must never rewind it
// on failure (§3 invariant: "last-backup-time is monotonic").
func (d Dir) SetLastBackupTime(t time.Time) error {
	return writeUnixSeconds(d.path("last-backup-time"), t)
}

// CurrentSessionTime reads current-session-time, or the zero time if absent.
func (d Dir) CurrentSessionTime() time.Time {
	return readUnixSeconds(d.path("current-session-time"))
}

// RefreshSession updates current-session-time to now, and reports whether
// the previous value was older than idleThreshold — i.e. a new session
// per §4.4.
func (d Dir) RefreshSession(now time.Time, idleThreshold time.Duration) (isNewSession bool, err error) {
	prev := d.CurrentSessionTime()
	isNewSession = !prev.IsZero() && now.Sub(prev) > idleThreshold
	if prev.IsZero() {
		isNewSession = false
	}
	return isNewSession, writeUnixSeconds(d.path("current-session-time"), now)
}

// TouchHeartbeat updates daemon.heartbeat's mtime to now, the signal the
// Watchdog polls to detect a stuck Periodic Agent.
func (d Dir) TouchHeartbeat() error {
	path := d.path("daemon.heartbeat")
	if err := os.MkdirAll(d.Root, 0o750); err != nil {
		return err
	}
	if err := platform.AtomicWriteFile(path, []byte{}, 0o644); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}

// HeartbeatAge returns how long ago daemon.heartbeat was last touched.
func (d Dir) HeartbeatAge() (time.Duration, error) {
	mt, err := platform.ModTime(d.path("daemon.heartbeat"))
	if err != nil {
		return 0, err
	}
	return time.Since(mt), nil
}

// WritePID writes "<pid>\n<marker>\n" to the named PID file
// (backup-watcher.pid or backup-daemon.pid), per the data model.
func (d Dir) WritePID(name string, pid int, marker string) error {
	content := fmt.Sprintf("%d\n%s\n", pid, marker)
	return platform.AtomicWriteFile(d.path(name), []byte(content), 0o644)
}

// ReadPID returns the pid and marker recorded in name, or (0, "") if
// absent/unreadable.
func (d Dir) ReadPID(name string) (pid int, marker string) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		return 0, ""
	}
	lines := strings.SplitN(string(data), "\n", 2)
	p, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, ""
	}
	if len(lines) > 1 {
		marker = strings.TrimSpace(lines[1])
	}
	return p, marker
}

// Paused reports whether the global .checkpoint-paused sentinel exists,
// directly under stateRoot (not per-project — §3: "suppressing new
// backups system-wide").
func Paused(stateRoot string) bool {
	return platform.Exists(filepath.Join(stateRoot, ".checkpoint-paused"))
}

// SetPaused creates or removes the global paused sentinel.
func SetPaused(stateRoot string, paused bool) error {
	path := filepath.Join(stateRoot, ".checkpoint-paused")
	if !paused {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return platform.AtomicWriteFile(path, []byte{}, 0o644)
}

func readUnixSeconds(path string) time.Time {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

func writeUnixSeconds(path string, t time.Time) error {
	return platform.AtomicWriteFile(path, []byte(strconv.FormatInt(t.Unix(), 10)+"\n"), 0o644)
}
