package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
)

func TestProjectIDIsStableForSamePath(t *testing.T) {
	a := projectID("/tmp/myproject")
	b := projectID("/tmp/myproject")
	if a != b {
		t.Errorf("projectID not stable: %q vs %q", a, b)
	}
}

func TestProjectIDDiffersForDifferentPaths(t *testing.T) {
	a := projectID("/tmp/myproject")
	b := projectID("/tmp/otherproject")
	if a == b {
		t.Errorf("expected different ids, got %q for both", a)
	}
}

func TestProjectIDIncludesReadableSlug(t *testing.T) {
	id := projectID("/home/dev/widgets")
	want := "widgets-"
	if len(id) < len(want) || id[:len(want)] != want {
		t.Errorf("projectID(%q) = %q, want prefix %q", "/home/dev/widgets", id, want)
	}
}

func TestProjectIDHandlesRootPath(t *testing.T) {
	id := projectID(string(filepath.Separator))
	want := "project-"
	if id[:len(want)] != want {
		t.Errorf("projectID(root) = %q, want prefix %q", id, want)
	}
}

func TestExitCodeForMapsCheckerrCategories(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"capability error", checkerr.ErrCapabilityMissing, exitPlatform},
		{"locked error", checkerr.ErrLocked, exitLocked},
		{"paused error", checkerr.ErrPaused, exitConfig},
		{"plain error", errors.New("boom"), exitBackupError},
		{"wrapped checkerr", fmt.Errorf("context: %w", checkerr.ErrLocked), exitLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorsAsGateDistinguishesGateFromNonGate(t *testing.T) {
	var ce *checkerr.Error
	if !errorsAsGate(checkerr.ErrPaused, &ce) {
		t.Error("expected ErrPaused to be a gate condition")
	}
	if ce == nil || ce.Code != checkerr.ErrPaused.Code {
		t.Errorf("errorsAsGate did not populate target correctly, got %v", ce)
	}

	ce = nil
	if errorsAsGate(errors.New("boom"), &ce) {
		t.Error("plain error should not be reported as a gate")
	}
}
