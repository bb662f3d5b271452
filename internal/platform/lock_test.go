package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockTryAcquireContention(t *testing.T) {
	dir := t.TempDir()
	l1 := NewLock(dir, "backup")
	h1, ok, err := l1.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, h1)

	l2 := NewLock(dir, "backup")
	h2, ok, err := l2.TryAcquire()
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, h2)

	require.NoError(t, h1.Release())

	h3, ok, err := l2.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, h3.Release())
}

func TestLockAcquireBlockingTimesOut(t *testing.T) {
	dir := t.TempDir()
	l1 := NewLock(dir, "restore")
	h1, ok, err := l1.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	defer h1.Release()

	l2 := NewLock(dir, "restore")
	_, err = l2.AcquireBlocking(50 * time.Millisecond)
	require.Error(t, err)
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	l := NewLock(dir, "cleanup")
	h, ok, err := l.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, h.Release())
	require.NoError(t, h.Release())
}
