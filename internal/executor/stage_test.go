package executor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStageFilesMirrorsChangedPaths(t *testing.T) {
	projectRoot := t.TempDir()
	backupRoot := t.TempDir()

	src := filepath.Join(projectRoot, "sub", "a.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o750))
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o640))

	result, err := stageFiles(projectRoot, backupRoot, []string{src}, SymlinkPreserve, time.Now())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(result.FilesDir, "sub", "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.EqualValues(t, 5, result.BytesWritten)
}

func TestStageFilesArchivesPriorVersion(t *testing.T) {
	projectRoot := t.TempDir()
	backupRoot := t.TempDir()
	src := filepath.Join(projectRoot, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("v1"), 0o640))

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	_, err := stageFiles(projectRoot, backupRoot, []string{src}, SymlinkPreserve, now)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("version two"), 0o640))
	later := now.Add(time.Hour)
	result, err := stageFiles(projectRoot, backupRoot, []string{src}, SymlinkPreserve, later)
	require.NoError(t, err)

	archived, err := os.ReadFile(filepath.Join(result.ArchivedDir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(archived))

	current, err := os.ReadFile(filepath.Join(result.FilesDir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "version two", string(current))
}

func TestStageFilesSkipsSymlinkUnderSkipPolicy(t *testing.T) {
	projectRoot := t.TempDir()
	backupRoot := t.TempDir()

	target := filepath.Join(projectRoot, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0o640))
	link := filepath.Join(projectRoot, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	result, err := stageFiles(projectRoot, backupRoot, []string{link}, SymlinkSkip, time.Now())
	require.NoError(t, err)

	_, statErr := os.Lstat(filepath.Join(result.FilesDir, "link.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestStageFilesPreservesSymlink(t *testing.T) {
	projectRoot := t.TempDir()
	backupRoot := t.TempDir()

	target := filepath.Join(projectRoot, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("data"), 0o640))
	link := filepath.Join(projectRoot, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	result, err := stageFiles(projectRoot, backupRoot, []string{link}, SymlinkPreserve, time.Now())
	require.NoError(t, err)

	info, err := os.Lstat(filepath.Join(result.FilesDir, "link.txt"))
	require.NoError(t, err)
	require.True(t, info.Mode()&os.ModeSymlink != 0)
}
