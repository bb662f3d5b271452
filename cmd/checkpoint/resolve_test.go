package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveProjectRootUsesProjectFlagWhenSet(t *testing.T) {
	prev := projectFlag
	t.Cleanup(func() { projectFlag = prev })

	dir := t.TempDir()
	projectFlag = dir

	root, err := resolveProjectRoot()
	if err != nil {
		t.Fatalf("resolveProjectRoot() error: %v", err)
	}
	abs, _ := filepath.Abs(dir)
	if root != abs {
		t.Errorf("resolveProjectRoot() = %q, want %q", root, abs)
	}
}

func TestResolveProjectRootDefaultsToCwd(t *testing.T) {
	prev := projectFlag
	t.Cleanup(func() { projectFlag = prev })
	projectFlag = ""

	root, err := resolveProjectRoot()
	if err != nil {
		t.Fatalf("resolveProjectRoot() error: %v", err)
	}
	if root == "" {
		t.Error("resolveProjectRoot() returned empty string")
	}
}

func TestResolveStateRootCreatesDirectory(t *testing.T) {
	prev := stateRootFlag
	t.Cleanup(func() { stateRootFlag = prev })

	dir := filepath.Join(t.TempDir(), "nested", "state")
	stateRootFlag = dir

	got, err := resolveStateRoot()
	if err != nil {
		t.Fatalf("resolveStateRoot() error: %v", err)
	}
	if got != dir {
		t.Errorf("resolveStateRoot() = %q, want %q", got, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("resolveStateRoot() did not create %q", dir)
	}
}
