package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializeLoadsProjectConfig(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".checkpoint"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".checkpoint", "config.yaml"), []byte("backup_interval: 30m\n"), 0o644))

	require.NoError(t, Initialize(project, nil))
	require.Equal(t, "30m0s", GetDuration("backup_interval").String())
}

func TestInitializeEnvOverridesProjectFile(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".checkpoint"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".checkpoint", "config.yaml"), []byte("backup_interval: 30m\n"), 0o644))

	t.Setenv("CHECKPOINT_BACKUP_INTERVAL", "5m")
	require.NoError(t, Initialize(project, nil))
	require.Equal(t, "5m0s", GetDuration("backup_interval").String())
}

func TestDefaultsApplyWhenNothingConfigured(t *testing.T) {
	require.NoError(t, Initialize(t.TempDir(), nil))
	require.Equal(t, 60, GetInt("debounce_seconds"))
	require.Equal(t, "preserve", GetString("symlink_policy"))
}
