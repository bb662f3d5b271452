//go:build unix

package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
)

// unixAgentManager maps install_agent/start_agent/etc onto systemd --user on
// linux and launchd (launchctl) on darwin. Grounded in the teacher pack's
// aristath-portfolioManager internal/deployment/service.go, which drives
// systemd units with exec.Command("systemctl", ...) and treats a failing
// invocation as a recoverable, retryable condition rather than a panic.
type unixAgentManager struct {
	unitDir string
}

// NewAgentManager returns the host-appropriate AgentManager.
func NewAgentManager(stateDir string) AgentManager {
	return &unixAgentManager{unitDir: filepath.Join(stateDir, "agents")}
}

func unitName(project string) string {
	return fmt.Sprintf("checkpoint-%s.service", sanitizeUnitName(project))
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

func (m *unixAgentManager) Install(ctx context.Context, project, scriptPath string, env map[string]string, sched Schedule) error {
	if runtime.GOOS == "darwin" {
		return m.installLaunchd(ctx, project, scriptPath, env, sched)
	}
	return m.installSystemd(ctx, project, scriptPath, env, sched)
}

func (m *unixAgentManager) installSystemd(ctx context.Context, project, scriptPath string, env map[string]string, sched Schedule) error {
	if _, err := exec.LookPath("systemctl"); err != nil {
		return checkerr.ErrCapabilityMissing.WithErr(err)
	}

	var envLines strings.Builder
	for k, v := range env {
		fmt.Fprintf(&envLines, "Environment=%s=%s\n", k, v)
	}

	restart := "no"
	if sched.KeepAlive {
		restart = "always"
	}

	unit := fmt.Sprintf(`[Unit]
Description=Checkpoint agent for %s

[Service]
ExecStart=%s
Restart=%s
%s
[Install]
WantedBy=default.target
`, project, scriptPath, restart, envLines.String())

	unitPath, err := userSystemdUnitPath(unitName(project))
	if err != nil {
		return err
	}
	if err := AtomicWriteFile(unitPath, []byte(unit), 0o644); err != nil {
		return err
	}

	if sched.IntervalSeconds > 0 {
		timer := fmt.Sprintf(`[Unit]
Description=Checkpoint agent timer for %s

[Timer]
OnUnitActiveSec=%ds
OnBootSec=%ds

[Install]
WantedBy=timers.target
`, project, sched.IntervalSeconds, sched.IntervalSeconds)
		timerPath, err := userSystemdUnitPath(strings.TrimSuffix(unitName(project), ".service") + ".timer")
		if err != nil {
			return err
		}
		if err := AtomicWriteFile(timerPath, []byte(timer), 0o644); err != nil {
			return err
		}
	}

	return runSystemctl(ctx, "--user", "daemon-reload")
}

func (m *unixAgentManager) installLaunchd(_ context.Context, project, scriptPath string, env map[string]string, sched Schedule) error {
	if _, err := exec.LookPath("launchctl"); err != nil {
		return checkerr.ErrCapabilityMissing.WithErr(err)
	}
	label := "com.checkpoint." + sanitizeUnitName(project)

	var envXML strings.Builder
	for k, v := range env {
		fmt.Fprintf(&envXML, "    <key>%s</key>\n    <string>%s</string>\n", k, v)
	}

	interval := sched.IntervalSeconds
	keepAlive := "false"
	if sched.KeepAlive {
		keepAlive = "true"
	}

	plist := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Label</key><string>%s</string>
  <key>ProgramArguments</key><array><string>%s</string></array>
  <key>StartInterval</key><integer>%d</integer>
  <key>KeepAlive</key><%s/>
  <key>EnvironmentVariables</key>
  <dict>
%s  </dict>
</dict>
</plist>
`, label, scriptPath, interval, keepAlive, envXML.String())

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	plistPath := filepath.Join(home, "Library", "LaunchAgents", label+".plist")
	return AtomicWriteFile(plistPath, []byte(plist), 0o644)
}

func (m *unixAgentManager) Remove(ctx context.Context, project string) error {
	if runtime.GOOS == "darwin" {
		label := "com.checkpoint." + sanitizeUnitName(project)
		_ = exec.CommandContext(ctx, "launchctl", "unload", label).Run()
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		return os.Remove(filepath.Join(home, "Library", "LaunchAgents", label+".plist"))
	}
	_ = m.Stop(ctx, project)
	unitPath, err := userSystemdUnitPath(unitName(project))
	if err != nil {
		return err
	}
	return os.Remove(unitPath)
}

func (m *unixAgentManager) Start(ctx context.Context, project string) error {
	if runtime.GOOS == "darwin" {
		label := "com.checkpoint." + sanitizeUnitName(project)
		return exec.CommandContext(ctx, "launchctl", "load", label).Run()
	}
	return runSystemctl(ctx, "--user", "start", unitName(project))
}

func (m *unixAgentManager) Stop(ctx context.Context, project string) error {
	if runtime.GOOS == "darwin" {
		label := "com.checkpoint." + sanitizeUnitName(project)
		return exec.CommandContext(ctx, "launchctl", "unload", label).Run()
	}
	return runSystemctl(ctx, "--user", "stop", unitName(project))
}

func (m *unixAgentManager) Status(ctx context.Context, project string) (AgentStatus, error) {
	if runtime.GOOS == "darwin" {
		out, err := exec.CommandContext(ctx, "launchctl", "list").CombinedOutput()
		if err != nil {
			return AgentUnknown, err
		}
		if strings.Contains(string(out), "com.checkpoint."+sanitizeUnitName(project)) {
			return AgentRunning, nil
		}
		return AgentStopped, nil
	}
	out, err := exec.CommandContext(ctx, "systemctl", "--user", "is-active", unitName(project)).CombinedOutput()
	switch strings.TrimSpace(string(out)) {
	case "active":
		return AgentRunning, nil
	case "inactive", "failed":
		return AgentStopped, nil
	default:
		if err != nil {
			return AgentUnknown, nil
		}
		return AgentUnknown, nil
	}
}

func runSystemctl(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "systemctl", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func userSystemdUnitPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "systemd", "user")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
