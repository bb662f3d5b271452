package hooks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRunner(t *testing.T) {
	r := NewRunner("/tmp/hooks")
	require.Equal(t, "/tmp/hooks", r.hooksDir)
	require.Equal(t, 10*time.Second, r.timeout)
}

func TestNewRunnerFromProject(t *testing.T) {
	r := NewRunnerFromProject("/workspace")
	require.Equal(t, filepath.Join("/workspace", ".checkpoint", "hooks"), r.hooksDir)
}

func TestHookExistsRequiresExecutableBit(t *testing.T) {
	dir := t.TempDir()
	hookPath := filepath.Join(dir, HookPreBackup)
	require.NoError(t, os.WriteFile(hookPath, []byte("#!/bin/sh\nexit 0\n"), 0o644))

	r := NewRunner(dir)
	require.False(t, r.HookExists(EventPreBackup))

	require.NoError(t, os.Chmod(hookPath, 0o755))
	require.True(t, r.HookExists(EventPreBackup))
}

func TestRunSyncExecutesHook(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	hookPath := filepath.Join(dir, HookPreBackup)
	script := "#!/bin/sh\ntouch \"" + marker + "\"\n"
	require.NoError(t, os.WriteFile(hookPath, []byte(script), 0o755))

	r := NewRunner(dir)
	require.NoError(t, r.RunSync(EventPreBackup, Context{ProjectID: "proj1", Cause: "debounce"}))

	_, err := os.Stat(marker)
	require.NoError(t, err)
}

func TestRunSyncNoopWhenHookMissing(t *testing.T) {
	r := NewRunner(t.TempDir())
	require.NoError(t, r.RunSync(EventPostBackup, Context{ProjectID: "proj1"}))
}
