package registry

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	reg, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, reg.Register(Entry{ProjectID: "proj1", Root: "/home/me/proj1"}))

	entry, ok, err := reg.Get("proj1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/home/me/proj1", entry.Root)
}

func TestRegisterReplacesExisting(t *testing.T) {
	reg, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, reg.Register(Entry{ProjectID: "proj1", Root: "/old"}))
	require.NoError(t, reg.Register(Entry{ProjectID: "proj1", Root: "/new"}))

	entries, err := reg.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "/new", entries[0].Root)
}

func TestUnregisterRemoves(t *testing.T) {
	reg, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, reg.Register(Entry{ProjectID: "proj1", Root: "/a"}))
	require.NoError(t, reg.Unregister("proj1"))

	_, ok, err := reg.Get("proj1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListPrunesDeadPIDs(t *testing.T) {
	reg, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, reg.Register(Entry{ProjectID: "proj1", Root: "/a", WatcherPID: 999999999}))

	entries, err := reg.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 0, entries[0].WatcherPID)
}

func TestListToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	reg, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, reg.Register(Entry{ProjectID: "proj1"}))

	require.NoError(t, os.WriteFile(reg.path, []byte("{not json"), 0o644))

	entries, err := reg.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}
