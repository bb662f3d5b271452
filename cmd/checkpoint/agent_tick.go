package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/config"
	"github.com/fluxcodestudio/checkpoint/internal/debounce"
	"github.com/fluxcodestudio/checkpoint/internal/executor"
	"github.com/fluxcodestudio/checkpoint/internal/state"
	"github.com/fluxcodestudio/checkpoint/internal/watcher"
)

// agentTickCmd is the body of one Periodic Agent tick: the process the
// installed systemd timer / launchd StartInterval actually execs.
// Hidden from --help since it is never run by a person directly.
var agentTickCmd = &cobra.Command{
	Use:    "agent-tick",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := os.Getenv("CHECKPOINT_PROJECT")
		if root == "" {
			var err error
			root, err = resolveProjectRoot()
			if err != nil {
				return err
			}
		}
		stateRoot := os.Getenv("CHECKPOINT_STATE_ROOT")
		if stateRoot == "" {
			var err error
			stateRoot, err = resolveStateRoot()
			if err != nil {
				return err
			}
		}

		log, err := loadConfig(root, stateRoot)
		if err != nil {
			return err
		}
		id := projectID(root)
		pd := state.New(stateRoot, id)
		_ = pd.TouchHeartbeat()

		gateCfg := debounce.GateConfig{
			StateRoot:          stateRoot,
			BackupInterval:     config.GetDuration("backup_interval"),
			DriveVerifyEnabled: config.GetBool("drive_verification_enabled"),
			DriveMarkerPath:    config.GetString("drive_marker_path"),
		}
		if err := debounce.CheckGates(gateCfg, pd, debounce.CauseScheduled); err != nil {
			var ce *checkerr.Error
			if !errorsAsGate(err, &ce) && log != nil {
				log.Error(err, "periodic agent tick blocked")
			}
			_ = pd.TouchHeartbeat()
			return nil
		}

		excludes, err := watcher.NewExcludeSet(nil)
		if err != nil {
			return err
		}
		proj := executor.Project{ID: id, Root: root, StateRoot: stateRoot, Excludes: excludes}
		_, runErr := executor.Run(rootCtx, proj, debounce.CauseScheduled, log)
		_ = pd.TouchHeartbeat()
		if runErr != nil {
			var ce *checkerr.Error
			if !errorsAsGate(runErr, &ce) {
				return runErr
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentTickCmd)
}
