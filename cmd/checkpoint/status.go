package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/config"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/fluxcodestudio/checkpoint/internal/record"
	"github.com/fluxcodestudio/checkpoint/internal/registry"
	"github.com/fluxcodestudio/checkpoint/internal/state"
	"github.com/fluxcodestudio/checkpoint/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "ops",
	Short:   "Emit the health dashboard",
	Long: `Render one row per registered project (watcher/agent liveness, last
backup time, disk usage) when run with --all, or a detailed single-project
view when run from inside a registered project's directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}
		reg, err := registry.New(stateRoot)
		if err != nil {
			fail(err)
			return nil
		}

		if all {
			if err := config.Initialize("", nil); err != nil {
				fail(err)
				return nil
			}
			entries, err := reg.List()
			if err != nil {
				fail(err)
				return nil
			}
			statuses := make([]ui.ProjectStatus, 0, len(entries))
			unhealthy := false
			for _, e := range entries {
				s := projectStatus(stateRoot, e.ProjectID, e.Root, e.WatcherPID)
				if s.DiskCriticalPct > 0 && s.DiskUsedPct >= s.DiskCriticalPct {
					unhealthy = true
				}
				statuses = append(statuses, s)
			}
			if jsonOutput {
				outputJSON(statuses)
			} else {
				fmt.Println(ui.RenderStatusTable(statuses, 100))
			}
			if unhealthy {
				os.Exit(exitUnhealthy)
			}
			return nil
		}

		root, err := resolveProjectRoot()
		if err != nil {
			fail(err)
			return nil
		}
		if _, err := loadConfig(root, stateRoot); err != nil {
			fail(err)
			return nil
		}
		id := projectID(root)
		entry, _, _ := reg.Get(id)
		s := projectStatus(stateRoot, id, root, entry.WatcherPID)
		if jsonOutput {
			outputJSON(s)
		} else {
			fmt.Println(ui.RenderSingleStatus(s))
			if verboseFlag {
				fmt.Printf("  State dir:   %s\n", state.New(stateRoot, id).Root)
				fmt.Printf("  Watcher PID: %d\n", entry.WatcherPID)
			}
		}
		if s.DiskCriticalPct > 0 && s.DiskUsedPct >= s.DiskCriticalPct {
			os.Exit(exitUnhealthy)
		}
		return nil
	},
}

func projectStatus(stateRoot, id, root string, watcherPID int) ui.ProjectStatus {
	pd := state.New(stateRoot, id)
	last, _, _ := record.Last(pd.Root)

	backupRoot := config.GetString("backup_root")
	if backupRoot == "" {
		backupRoot = root
	}
	disk, _ := platform.Disk(backupRoot)

	agentStatus, _ := platform.NewAgentManager(stateRoot).Status(rootCtx, id)

	return ui.ProjectStatus{
		ProjectID:       id,
		Root:            root,
		WatcherAlive:    watcherPID != 0 && platform.Alive(watcherPID, watcherMarker),
		AgentAlive:      agentStatus == platform.AgentRunning,
		LastBackup:      last.End,
		DiskUsedPct:     disk.UsedPct,
		DiskWarnPct:     float64(config.GetInt("disk_warn_pct")),
		DiskCriticalPct: float64(config.GetInt("disk_critical_pct")),
		Paused:          state.Paused(stateRoot),
	}
}

func init() {
	statusCmd.Flags().Bool("all", false, "show every registered project")
	rootCmd.AddCommand(statusCmd)
}
