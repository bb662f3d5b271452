package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fluxcodestudio/checkpoint/internal/debounce"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/fluxcodestudio/checkpoint/internal/record"
)

func newTestProject(t *testing.T) Project {
	t.Helper()
	projectRoot := t.TempDir()
	stateRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectRoot, "a.txt"), []byte("hello"), 0o640))

	return Project{
		ID:        "proj1",
		Root:      projectRoot,
		StateRoot: stateRoot,
	}
}

func TestRunProducesSuccessfulRecordAndArtifact(t *testing.T) {
	proj := newTestProject(t)

	rec, err := Run(context.Background(), proj, debounce.CauseNewSession, nil)
	require.NoError(t, err)
	require.Equal(t, record.OutcomeSuccess, rec.Outcome)
	require.NotEmpty(t, rec.BackupPaths)
	require.Positive(t, rec.BytesWritten)

	all, err := record.All(filepath.Join(proj.StateRoot, "projects", proj.ID))
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, rec.ID, all[0].ID)
}

func TestRunSkipFilesProducesNoFileArtifact(t *testing.T) {
	proj := newTestProject(t)
	proj.SkipFiles = true

	rec, err := Run(context.Background(), proj, debounce.CauseNewSession, nil)
	require.NoError(t, err)
	require.Equal(t, record.OutcomeSuccess, rec.Outcome)
	require.Empty(t, rec.BackupPaths)
	require.Zero(t, rec.BytesWritten)
}

func TestRunSkipDatabasesRunsFilePhaseOnly(t *testing.T) {
	proj := newTestProject(t)
	proj.SkipDatabases = true

	rec, err := Run(context.Background(), proj, debounce.CauseNewSession, nil)
	require.NoError(t, err)
	require.Equal(t, record.OutcomeSuccess, rec.Outcome)
	require.Empty(t, rec.Databases)
	require.NotEmpty(t, rec.BackupPaths)
}

func TestRunHonorsPauseSentinel(t *testing.T) {
	proj := newTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(proj.StateRoot, ".checkpoint-paused"), nil, 0o644))

	rec, err := Run(context.Background(), proj, debounce.CauseNewSession, nil)
	require.Error(t, err)
	require.Equal(t, record.OutcomeSkipped, rec.Outcome)
	require.Empty(t, rec.BackupPaths)
}

func TestRunSkipsSecondRunWithNoChanges(t *testing.T) {
	proj := newTestProject(t)
	// last-backup-time has whole-second resolution, so backdate the file to
	// keep it clearly older than the first run's recorded time.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(proj.Root, "a.txt"), old, old))

	first, err := Run(context.Background(), proj, debounce.CauseManual, nil)
	require.NoError(t, err)
	require.Equal(t, record.OutcomeSuccess, first.Outcome)

	second, err := Run(context.Background(), proj, debounce.CauseManual, nil)
	require.Error(t, err)
	require.Equal(t, record.OutcomeSkipped, second.Outcome)
	require.Empty(t, second.BackupPaths)
	require.Contains(t, err.Error(), "ECONF_NOCHANGE")
}

func TestRunManualForceIgnoresNoChanges(t *testing.T) {
	proj := newTestProject(t)

	first, err := Run(context.Background(), proj, debounce.CauseManual, nil)
	require.NoError(t, err)
	require.Equal(t, record.OutcomeSuccess, first.Outcome)

	second, err := Run(context.Background(), proj, debounce.CauseManualForce, nil)
	require.NoError(t, err)
	require.Equal(t, record.OutcomeSuccess, second.Outcome)
	require.NotEmpty(t, second.BackupPaths)
}

func TestRunFailsFastOnLockContention(t *testing.T) {
	proj := newTestProject(t)

	stateDir := filepath.Join(proj.StateRoot, "projects", proj.ID)
	lock := platform.NewLock(stateDir, "backup")
	handle, acquired, err := lock.TryAcquire()
	require.NoError(t, err)
	require.True(t, acquired)
	defer handle.Release()

	rec, err := Run(context.Background(), proj, debounce.CauseNewSession, nil)
	require.Error(t, err)
	require.Equal(t, record.OutcomeSkipped, rec.Outcome)
}
