package dbpipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinishDockerLifetimeClearsFlagWithoutStoppingWhenConfiguredOff(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, setDockerStartedFlag(cacheDir))
	require.True(t, dockerStartedFlagSet(cacheDir))

	finishDockerLifetime(true, Options{StopDBAfterBackup: false, CacheDir: cacheDir})

	require.False(t, dockerStartedFlagSet(cacheDir), "flag must be cleared even when stop_db_after_backup is false")
}

func TestFinishDockerLifetimeNoopWhenThisRunDidNotStartDocker(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, setDockerStartedFlag(cacheDir))

	finishDockerLifetime(false, Options{StopDBAfterBackup: false, CacheDir: cacheDir})

	require.True(t, dockerStartedFlagSet(cacheDir), "a run that didn't start docker must not touch the flag")
}
