package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestListArtifactsSkipsDirectoriesAndMissingDir(t *testing.T) {
	if got := listArtifacts(filepath.Join(t.TempDir(), "does-not-exist")); got != nil {
		t.Errorf("listArtifacts(missing) = %v, want nil", got)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snapshot-1.tar.gz"), []byte("data"), 0o640); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "databases"), 0o750); err != nil {
		t.Fatal(err)
	}

	artifacts := listArtifacts(dir)
	if len(artifacts) != 1 {
		t.Fatalf("listArtifacts() returned %d entries, want 1", len(artifacts))
	}
	if artifacts[0].Path != filepath.Join(dir, "snapshot-1.tar.gz") {
		t.Errorf("unexpected artifact path %q", artifacts[0].Path)
	}
}

func TestDurationOverrideUsesOverrideWhenFlagChanged(t *testing.T) {
	got := durationOverride(true, time.Hour, time.Minute)
	if got == nil || *got != time.Hour {
		t.Errorf("durationOverride(changed, 1h, 1m) = %v, want 1h", got)
	}
}

func TestDurationOverrideHonorsExplicitZero(t *testing.T) {
	got := durationOverride(true, 0, time.Minute)
	if got == nil || *got != 0 {
		t.Errorf("durationOverride(changed, 0, 1m) = %v, want a real zero cutoff", got)
	}
}

func TestDurationOverrideFallsBackWhenFlagNotChanged(t *testing.T) {
	got := durationOverride(false, time.Hour, time.Minute)
	if got == nil || *got != time.Minute {
		t.Errorf("durationOverride(unchanged, 1h, 1m) = %v, want fallback 1m", got)
	}
}
