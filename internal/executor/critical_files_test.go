package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCriticalFilesHonorsConfigFlags(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte(""), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(root, "id_rsa"), []byte(""), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".vscode"), 0o750))

	enabled := map[string]bool{
		"critical_files.env":          true,
		"critical_files.credentials":  true,
		"critical_files.ide_settings": false,
	}

	found := CriticalFiles(root, enabled)
	require.Contains(t, found, filepath.Join(root, ".env"))
	require.Contains(t, found, filepath.Join(root, "id_rsa"))
	require.NotContains(t, found, filepath.Join(root, ".vscode"))
}

func TestCriticalFilesSkipsMissingRoot(t *testing.T) {
	found := CriticalFiles(filepath.Join(t.TempDir(), "nope"), map[string]bool{"critical_files.env": true})
	require.Nil(t, found)
}
