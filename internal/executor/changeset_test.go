package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHasVCSDetectsGitDir(t *testing.T) {
	root := t.TempDir()
	require.False(t, hasVCS(root))

	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o750))
	require.True(t, hasVCS(root))
}

func TestWalkChangedSinceFindsNewerFiles(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "old.txt")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o640))

	cutoff := time.Now()
	time.Sleep(10 * time.Millisecond)

	newFile := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(newFile, []byte("new"), 0o640))

	changed, err := walkChangedSince(root, cutoff, nil)
	require.NoError(t, err)
	require.Contains(t, changed, newFile)
	require.NotContains(t, changed, old)
}

func TestChangedPathsFallsBackWithoutGit(t *testing.T) {
	root := t.TempDir()
	cutoff := time.Now().Add(-time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o640))

	paths, err := changedPaths(context.Background(), root, cutoff, nil)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}
