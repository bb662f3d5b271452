package main

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"
)

func writeTestTar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	defer tw.Close()
	for name, content := range entries {
		hdr := &tar.Header{Name: name, Mode: 0o640, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExtractArchiveRestoresFiles(t *testing.T) {
	src := filepath.Join(t.TempDir(), "snapshot.tar")
	writeTestTar(t, src, map[string]string{
		"a.txt":     "hello",
		"sub/b.txt": "world",
	})

	dest := t.TempDir()
	if err := extractArchive(src, dest); err != nil {
		t.Fatalf("extractArchive() error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	if err != nil || string(got) != "hello" {
		t.Errorf("a.txt = %q, %v, want %q", got, err, "hello")
	}
	got, err = os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	if err != nil || string(got) != "world" {
		t.Errorf("sub/b.txt = %q, %v, want %q", got, err, "world")
	}
}

func TestExtractArchiveRejectsPathTraversal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "evil.tar")
	writeTestTar(t, src, map[string]string{
		"../../etc/passwd": "pwned",
	})

	dest := t.TempDir()
	err := extractArchive(src, dest)
	if err == nil {
		t.Fatal("expected extractArchive to reject a path-traversal entry")
	}
}
