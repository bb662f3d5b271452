package debounce

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/state"
	"github.com/stretchr/testify/require"
)

func TestCheckGatesPausedBlocks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, state.SetPaused(root, true))

	pd := state.New(root, "proj1")
	err := CheckGates(GateConfig{StateRoot: root, BackupInterval: time.Hour}, pd, CauseDebounce)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ECONF_PAUSED")

	var ce *checkerr.Error
	require.ErrorAs(t, err, &ce)
	require.True(t, ce.IsGate())
}

func TestCheckGatesIntervalBlocksThenForceBypasses(t *testing.T) {
	root := t.TempDir()
	pd := state.New(root, "proj1")
	require.NoError(t, pd.SetLastBackupTime(time.Now()))

	cfg := GateConfig{StateRoot: root, BackupInterval: time.Hour}
	err := CheckGates(cfg, pd, CauseDebounce)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ECONF_INTERVAL")

	require.NoError(t, CheckGates(cfg, pd, CauseManualForce))
	require.NoError(t, CheckGates(cfg, pd, CauseNewSession))

	err = CheckGates(cfg, pd, CauseManual)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ECONF_INTERVAL")
}

func TestCheckGatesDriveMissingBlocks(t *testing.T) {
	root := t.TempDir()
	pd := state.New(root, "proj1")
	cfg := GateConfig{
		StateRoot:          root,
		BackupInterval:     time.Hour,
		DriveVerifyEnabled: true,
		DriveMarkerPath:    filepath.Join(root, "missing-marker"),
	}
	err := CheckGates(cfg, pd, CauseDebounce)
	require.Contains(t, err.Error(), "EDISK002")
}
