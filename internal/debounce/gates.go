package debounce

import (
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/fluxcodestudio/checkpoint/internal/state"
)

// Cause identifies why a backup was triggered, carried through to the
// Backup Record.
type Cause string

const (
	CauseDebounce    Cause = "debounce"
	CauseNewSession  Cause = "new-session"
	CauseManual      Cause = "manual"
	CauseManualForce Cause = "manual-force"
	CauseScheduled   Cause = "scheduled"
)

// GateConfig holds the knobs the four gates in §4.4 need.
type GateConfig struct {
	StateRoot          string
	BackupInterval     time.Duration
	DriveVerifyEnabled bool
	DriveMarkerPath    string
}

// CheckGates evaluates gates 1-3 in order (pause sentinel, drive marker,
// interval) for the given cause. Gate 4 (lock acquisition) is the caller's
// responsibility via internal/platform.Lock, since only the caller knows
// which operation name to lock. force bypasses the interval gate only, as
// §4.4 specifies for both manual-force and new-session causes.
func CheckGates(cfg GateConfig, pd state.Dir, cause Cause) error {
	if state.Paused(cfg.StateRoot) {
		return checkerr.ErrPaused
	}
	if cfg.DriveVerifyEnabled && !platform.Exists(cfg.DriveMarkerPath) {
		return checkerr.ErrDriveUnreachable
	}
	if cause == CauseManualForce || cause == CauseNewSession {
		return nil
	}
	last := pd.LastBackupTime()
	if last.IsZero() {
		return nil
	}
	if time.Since(last) < cfg.BackupInterval {
		return checkerr.New(checkerr.CategoryConf, "ECONF_INTERVAL", "wait for the configured backup interval to elapse, or force a backup", nil)
	}
	return nil
}
