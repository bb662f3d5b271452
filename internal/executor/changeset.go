package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/watcher"
)

// hasVCS reports whether root is (or is inside) a git working tree.
func hasVCS(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil
}

// changedPaths enumerates files that changed since the project's last
// backup. It prefers the project's VCS when present (tracked +
// untracked-not-ignored minus excludes), per spec §4.5 step 4; otherwise
// it falls back to a plain mtime walk against the default exclude set.
func changedPaths(ctx context.Context, root string, since time.Time, excludes *watcher.ExcludeSet) ([]string, error) {
	if hasVCS(root) {
		paths, err := gitChangedPaths(ctx, root)
		if err == nil {
			return filterExcluded(paths, excludes), nil
		}
		// fall through to the mtime walk if git itself is unusable
	}
	return walkChangedSince(root, since, excludes)
}

// gitChangedPaths runs `git status --porcelain` to list tracked
// modifications and untracked-not-ignored files in one pass.
func gitChangedPaths(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", root, "status", "--porcelain")
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 4 {
			continue
		}
		// porcelain format: "XY path" (or "XY orig -> path" for renames)
		rel := strings.TrimSpace(line[3:])
		if idx := strings.Index(rel, " -> "); idx >= 0 {
			rel = rel[idx+4:]
		}
		paths = append(paths, filepath.Join(root, rel))
	}
	return paths, nil
}

func walkChangedSince(root string, since time.Time, excludes *watcher.ExcludeSet) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if excludes != nil && excludes.Match(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(since) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func filterExcluded(paths []string, excludes *watcher.ExcludeSet) []string {
	if excludes == nil {
		return paths
	}
	out := paths[:0]
	for _, p := range paths {
		if !excludes.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
