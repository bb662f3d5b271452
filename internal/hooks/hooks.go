// Package hooks runs optional pre-backup and post-backup scripts from
// <project>/.checkpoint/hooks/. Adapted from the teacher's internal/hooks
// package: same on-disk convention (an executable file named for the
// event, checked for existence and the executable bit before running),
// same fire-and-forget Run vs synchronous RunSync split. The teacher's own
// timeout-and-kill-process-group logic (hooks_unix.go/hooks_windows.go)
// was factored out into the shared internal/execcmd primitive instead of
// being duplicated here.
package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/execcmd"
)

const (
	EventPreBackup  = "pre_backup"
	EventPostBackup = "post_backup"
)

const (
	HookPreBackup  = "pre_backup"
	HookPostBackup = "post_backup"
)

// Context is passed to the hook script as a JSON document on stdin.
type Context struct {
	ProjectID string `json:"project_id"`
	Root      string `json:"root"`
	Cause     string `json:"cause"`
	Outcome   string `json:"outcome,omitempty"`
}

// Runner executes hook scripts under hooksDir with a fixed timeout.
type Runner struct {
	hooksDir string
	timeout  time.Duration
}

func NewRunner(hooksDir string) *Runner {
	return &Runner{hooksDir: hooksDir, timeout: 10 * time.Second}
}

// NewRunnerFromProject returns a Runner for <projectRoot>/.checkpoint/hooks.
func NewRunnerFromProject(projectRoot string) *Runner {
	return NewRunner(filepath.Join(projectRoot, ".checkpoint", "hooks"))
}

// Run fires a hook asynchronously; callers that need to know it finished
// before proceeding use RunSync instead.
func (r *Runner) Run(event string, hctx Context) {
	if !r.HookExists(event) {
		return
	}
	go func() { _ = r.RunSync(event, hctx) }()
}

// RunSync executes the named hook and waits for it, honoring the runner's
// timeout. Returns nil if the hook doesn't exist or isn't executable.
func (r *Runner) RunSync(event string, hctx Context) error {
	if !r.HookExists(event) {
		return nil
	}
	hookPath := filepath.Join(r.hooksDir, event)

	payload, err := json.Marshal(hctx)
	if err != nil {
		return err
	}

	result := execcmd.Run(context.Background(), r.timeout, payload, nil, hookPath, hctx.ProjectID, event)
	return result.Err
}

// HookExists reports whether event has an executable hook script.
func (r *Runner) HookExists(event string) bool {
	hookPath := filepath.Join(r.hooksDir, event)
	info, err := os.Stat(hookPath)
	if err != nil || info.IsDir() {
		return false
	}
	return isExecutable(info)
}
