package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyArtifactRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tar")
	require.NoError(t, os.WriteFile(path, nil, 0o640))

	err := VerifyArtifact(path)
	require.Error(t, err)
}

func TestVerifyArtifactRejectsCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o640))

	err := VerifyArtifact(path)
	require.Error(t, err)
}

func TestVerifyArtifactAcceptsValidTar(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "f.txt"), []byte("data"), 0o640))

	result, err := compressSnapshot(src, filepath.Join(t.TempDir(), "ok"), 6)
	require.NoError(t, err)
	require.NoError(t, VerifyArtifact(result.Path))
}

func TestVerifyArtifactsDropsFailures(t *testing.T) {
	good := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(good, "f.txt"), []byte("data"), 0o640))
	goodResult, err := compressSnapshot(good, filepath.Join(t.TempDir(), "good"), 6)
	require.NoError(t, err)

	badPath := filepath.Join(t.TempDir(), "bad.tar")
	require.NoError(t, os.WriteFile(badPath, nil, 0o640))

	failed := VerifyArtifacts([]string{goodResult.Path, badPath})
	require.Equal(t, []string{badPath}, failed)
	require.NoFileExists(t, badPath)
	require.FileExists(t, goodResult.Path)
}
