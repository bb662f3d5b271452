package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateStrictFlagsUnknownKeys(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".checkpoint"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".checkpoint", "config.yaml"), []byte("made_up_key: true\n"), 0o644))

	require.NoError(t, Initialize(project, nil))

	require.Empty(t, Validate(false))
	issues := Validate(true)
	require.Len(t, issues, 1)
	require.Equal(t, "made_up_key", issues[0].Key)
}

func TestValidateCatchesBadEnumValue(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".checkpoint"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".checkpoint", "config.yaml"), []byte("symlink_policy: explode\n"), 0o644))

	require.NoError(t, Initialize(project, nil))

	issues := Validate(false)
	require.Len(t, issues, 1)
	require.Equal(t, "symlink_policy", issues[0].Key)
}
