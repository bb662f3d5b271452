package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ProjectStatus is the per-project row rendered by `checkpoint status`.
type ProjectStatus struct {
	ProjectID      string
	Root           string
	WatcherAlive   bool
	AgentAlive     bool
	LastBackup     time.Time
	DiskUsedPct    float64
	DiskWarnPct    float64
	DiskCriticalPct float64
	Paused         bool
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func watchIcon(alive bool) string {
	if alive {
		return RenderPass(IconPass + " running")
	}
	return RenderMuted("○ stopped")
}

func diskIcon(s ProjectStatus) string {
	label := fmt.Sprintf("%.0f%%", s.DiskUsedPct)
	switch {
	case s.DiskCriticalPct > 0 && s.DiskUsedPct >= s.DiskCriticalPct:
		return RenderFail(IconFail + " " + label)
	case s.DiskWarnPct > 0 && s.DiskUsedPct >= s.DiskWarnPct:
		return RenderWarn(IconWarn + " " + label)
	default:
		return RenderPass(label)
	}
}

// RenderStatusTable renders the multi-project status dashboard shown by
// `checkpoint status --all`.
func RenderStatusTable(statuses []ProjectStatus, width int) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		last := relativeTime(s.LastBackup)
		if s.Paused {
			last = RenderMuted("paused")
		}
		rows = append(rows, []string{
			s.ProjectID,
			watchIcon(s.WatcherAlive),
			watchIcon(s.AgentAlive),
			last,
			diskIcon(s),
		})
	}

	t := table.New().
		Headers("Project", "Watcher", "Agent", "Last Backup", "Disk").
		Rows(rows...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	return t.String()
}

// RenderSingleStatus renders the detailed single-project view shown by
// `checkpoint status` run from inside a registered project.
func RenderSingleStatus(s ProjectStatus) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Render(s.ProjectID)
	lines := []string{
		header,
		fmt.Sprintf("  Root:        %s", RenderMuted(s.Root)),
		fmt.Sprintf("  Watcher:     %s", watchIcon(s.WatcherAlive)),
		fmt.Sprintf("  Agent:       %s", watchIcon(s.AgentAlive)),
		fmt.Sprintf("  Last backup: %s", relativeTime(s.LastBackup)),
		fmt.Sprintf("  Disk usage:  %s", diskIcon(s)),
	}
	if s.Paused {
		lines = append(lines, "  "+RenderWarn(IconWarn+" backups paused"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
