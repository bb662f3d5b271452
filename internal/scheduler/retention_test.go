package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mkArtifact(path string, daysOld int, sizeMB int64) Artifact {
	return Artifact{
		Path:    path,
		ModTime: time.Now().Add(-time.Duration(daysOld) * 24 * time.Hour),
		Size:    sizeMB * 1024 * 1024,
	}
}

func durPtr(d time.Duration) *time.Duration { return &d }

func TestPlanTimeBasedDeletesOld(t *testing.T) {
	artifacts := []Artifact{
		mkArtifact("a", 1, 10),
		mkArtifact("b", 40, 10),
	}
	plan := Plan(artifacts, BucketPolicy{TimeBased: durPtr(30 * 24 * time.Hour), Floor: 0}, time.Now())
	require.Len(t, plan, 1)
	require.Equal(t, "b", plan[0].Path)
}

func TestPlanCountBasedKeepsNewest(t *testing.T) {
	artifacts := []Artifact{
		mkArtifact("a", 1, 10),
		mkArtifact("b", 2, 10),
		mkArtifact("c", 3, 10),
	}
	plan := Plan(artifacts, BucketPolicy{CountBased: 2, Floor: 0}, time.Now())
	require.Len(t, plan, 1)
	require.Equal(t, "c", plan[0].Path)
}

func TestPlanRespectsFloorEvenWhenRulesWantMore(t *testing.T) {
	// S7: files.time_based=0 (delete everything older than 0 days),
	// keep_minimum=3, 5 artifacts aged 1..5 days. Exactly 3 survive; zero
	// deletions beyond the floor.
	artifacts := []Artifact{
		mkArtifact("d1", 1, 1),
		mkArtifact("d2", 2, 1),
		mkArtifact("d3", 3, 1),
		mkArtifact("d4", 4, 1),
		mkArtifact("d5", 5, 1),
	}
	plan := Plan(artifacts, BucketPolicy{TimeBased: durPtr(0), Floor: 3}, time.Now())
	require.Len(t, plan, 2)
	require.ElementsMatch(t, []string{"d4", "d5"}, []string{plan[0].Path, plan[1].Path})
}

func TestPlanZeroCutoffDeletesEverythingNotFloorProtected(t *testing.T) {
	artifacts := []Artifact{
		mkArtifact("a", 1, 10),
		mkArtifact("b", 2, 10),
	}
	plan := Plan(artifacts, BucketPolicy{TimeBased: durPtr(0), Floor: 0}, time.Now())
	require.Len(t, plan, 2)
}

func TestPlanNilTimeBasedIsDisabled(t *testing.T) {
	artifacts := []Artifact{mkArtifact("a", 999, 10)}
	plan := Plan(artifacts, BucketPolicy{Floor: 0}, time.Now())
	require.Nil(t, plan)
}

func TestPlanNeverDeleteDisablesPruning(t *testing.T) {
	artifacts := []Artifact{mkArtifact("a", 999, 10)}
	plan := Plan(artifacts, BucketPolicy{TimeBased: durPtr(time.Hour), NeverDelete: true}, time.Now())
	require.Nil(t, plan)
}

func TestPlanSizeBasedDeletesOldestUntilUnderCap(t *testing.T) {
	artifacts := []Artifact{
		mkArtifact("a", 1, 50),
		mkArtifact("b", 2, 50),
		mkArtifact("c", 3, 50),
	}
	plan := Plan(artifacts, BucketPolicy{SizeBasedMB: 80, Floor: 0}, time.Now())
	require.Len(t, plan, 2)
	require.Equal(t, "b", plan[0].Path)
	require.Equal(t, "c", plan[1].Path)
}

func TestPlanUnionOfDeletions(t *testing.T) {
	artifacts := []Artifact{
		mkArtifact("a", 1, 10),
		mkArtifact("b", 40, 10),
		mkArtifact("c", 2, 10),
		mkArtifact("d", 3, 10),
	}
	plan := Plan(artifacts, BucketPolicy{TimeBased: durPtr(30 * 24 * time.Hour), CountBased: 2, Floor: 0}, time.Now())
	paths := make([]string, 0, len(plan))
	for _, a := range plan {
		paths = append(paths, a.Path)
	}
	require.ElementsMatch(t, []string{"b", "d"}, paths)
}
