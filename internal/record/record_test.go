package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndAll(t *testing.T) {
	dir := t.TempDir()

	r1 := New("proj1", CauseInterval)
	r1.Outcome = OutcomeSuccess
	require.NoError(t, Append(dir, r1))

	r2 := New("proj1", CauseManual)
	r2.Outcome = OutcomePartial
	require.NoError(t, Append(dir, r2))

	all, err := All(dir)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, OutcomeSuccess, all[0].Outcome)
	require.Equal(t, OutcomePartial, all[1].Outcome)
}

func TestLastReturnsMostRecent(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := Last(dir)
	require.NoError(t, err)
	require.False(t, ok)

	r := New("proj1", CauseWatcher)
	r.Outcome = OutcomeFailed
	require.NoError(t, Append(dir, r))

	last, ok, err := Last(dir)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, OutcomeFailed, last.Outcome)
}

func TestAllToleratesCorruptLine(t *testing.T) {
	dir := t.TempDir()
	r := New("proj1", CauseSession)
	r.Outcome = OutcomeSuccess
	require.NoError(t, Append(dir, r))

	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_WRONLY|os.O_APPEND, 0o640)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	all, err := All(dir)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
