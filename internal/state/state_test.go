package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLastBackupTimeRoundTrip(t *testing.T) {
	dir := New(t.TempDir(), "proj1")
	require.True(t, dir.LastBackupTime().IsZero())

	now := time.Now().Truncate(time.Second)
	require.NoError(t, dir.SetLastBackupTime(now))
	require.Equal(t, now.Unix(), dir.LastBackupTime().Unix())
}

func TestRefreshSessionDetectsNewSession(t *testing.T) {
	dir := New(t.TempDir(), "proj1")

	first := time.Now()
	isNew, err := dir.RefreshSession(first, 10*time.Minute)
	require.NoError(t, err)
	require.False(t, isNew, "first-ever session write is not a new session")

	later := first.Add(20 * time.Minute)
	isNew, err = dir.RefreshSession(later, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, isNew)
}

func TestPIDFileRoundTrip(t *testing.T) {
	dir := New(t.TempDir(), "proj1")
	require.NoError(t, dir.WritePID("backup-watcher.pid", 4242, "checkpoint-watch proj1"))

	pid, marker := dir.ReadPID("backup-watcher.pid")
	require.Equal(t, 4242, pid)
	require.Equal(t, "checkpoint-watch proj1", marker)
}

func TestGlobalPausedSentinel(t *testing.T) {
	root := t.TempDir()
	require.False(t, Paused(root))

	require.NoError(t, SetPaused(root, true))
	require.True(t, Paused(root))

	require.NoError(t, SetPaused(root, false))
	require.False(t, Paused(root))
}
