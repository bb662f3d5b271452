package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetWritesAtomicallyAndAudits(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	stateDir := filepath.Join(dir, "state")

	require.NoError(t, Set(configPath, stateDir, "retention.minimum_keep", 5))

	doc, err := loadYAMLDoc(configPath)
	require.NoError(t, err)
	require.Equal(t, 5, getDotted(doc, "retention.minimum_keep"))

	auditPath := filepath.Join(stateDir, AuditFileName)
	require.FileExists(t, auditPath)
}

func TestSetRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	err := Set(filepath.Join(dir, "config.yaml"), dir, "nonexistent.key", "x")
	require.Error(t, err)
}

func TestSetRejectsInvalidEnumValue(t *testing.T) {
	dir := t.TempDir()
	err := Set(filepath.Join(dir, "config.yaml"), dir, "symlink_policy", "explode")
	require.Error(t, err)
}

func TestMigrateFlatToHierarchical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("backup_interval = \"45m\"\n"), 0o644))

	require.NoError(t, Migrate(path))

	doc, err := loadYAMLDoc(path)
	require.NoError(t, err)
	require.Equal(t, "45m", getDotted(doc, "backup_interval"))
}
