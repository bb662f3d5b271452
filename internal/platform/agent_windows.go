//go:build windows

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
)

// windowsAgentManager maps install_agent/start_agent/etc onto the Windows
// Task Scheduler via schtasks.exe, the equivalent facility to systemd/launchd
// for the unix AgentManager in agent_unix.go.
type windowsAgentManager struct{}

// NewAgentManager returns the host-appropriate AgentManager.
func NewAgentManager(stateDir string) AgentManager {
	return &windowsAgentManager{}
}

func taskName(project string) string {
	return "Checkpoint_" + sanitizeUnitName(project)
}

func sanitizeUnitName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

func (m *windowsAgentManager) Install(ctx context.Context, project, scriptPath string, env map[string]string, sched Schedule) error {
	if _, err := exec.LookPath("schtasks"); err != nil {
		return checkerr.ErrCapabilityMissing.WithErr(err)
	}
	interval := sched.IntervalSeconds
	if interval <= 0 {
		interval = 3600
	}
	minutes := interval / 60
	if minutes < 1 {
		minutes = 1
	}
	args := []string{
		"/Create", "/TN", taskName(project), "/TR", scriptPath,
		"/SC", "MINUTE", "/MO", strconv.Itoa(minutes), "/F",
	}
	cmd := exec.CommandContext(ctx, "schtasks", args...)
	for k, v := range env {
		cmd.Env = append(cmd.Environ(), fmt.Sprintf("%s=%s", k, v))
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks /Create: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *windowsAgentManager) Remove(ctx context.Context, project string) error {
	out, err := exec.CommandContext(ctx, "schtasks", "/Delete", "/TN", taskName(project), "/F").CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks /Delete: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *windowsAgentManager) Start(ctx context.Context, project string) error {
	out, err := exec.CommandContext(ctx, "schtasks", "/Run", "/TN", taskName(project)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks /Run: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *windowsAgentManager) Stop(ctx context.Context, project string) error {
	out, err := exec.CommandContext(ctx, "schtasks", "/End", "/TN", taskName(project)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks /End: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *windowsAgentManager) Status(ctx context.Context, project string) (AgentStatus, error) {
	out, err := exec.CommandContext(ctx, "schtasks", "/Query", "/TN", taskName(project)).CombinedOutput()
	if err != nil {
		return AgentStopped, nil
	}
	if strings.Contains(string(out), "Running") {
		return AgentRunning, nil
	}
	return AgentStopped, nil
}
