package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressSnapshotGzipsLargeTree(t *testing.T) {
	src := t.TempDir()
	big := strings.Repeat("x", minCompressSize*2)
	require.NoError(t, os.WriteFile(filepath.Join(src, "big.txt"), []byte(big), 0o640))

	dstBase := filepath.Join(t.TempDir(), "snapshot")
	result, err := compressSnapshot(src, dstBase, 6)
	require.NoError(t, err)
	require.True(t, result.Compressed)
	require.Equal(t, dstBase+".tar.gz", result.Path)
	require.NoError(t, VerifyArtifact(result.Path))
}

func TestCompressSnapshotSkipsCompressionForSmallTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "small.txt"), []byte("tiny"), 0o640))

	dstBase := filepath.Join(t.TempDir(), "snapshot")
	result, err := compressSnapshot(src, dstBase, 6)
	require.NoError(t, err)
	require.False(t, result.Compressed)
	require.Equal(t, dstBase+".tar", result.Path)
	require.NoError(t, VerifyArtifact(result.Path))
}
