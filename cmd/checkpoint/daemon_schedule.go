package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/platform"
)

var daemonScheduleCmd = &cobra.Command{
	Use:     "daemon-schedule",
	GroupID: "ops",
	Short:   "Install or remove the Periodic Agent for the current project",
	Long: `Map install_agent/remove_agent onto the host's service manager
(systemd --user on linux, launchd on darwin): a unit/plist that re-execs
this binary on the given interval.

Examples:
  checkpoint daemon-schedule --install --interval 1800
  checkpoint daemon-schedule --remove`,
	RunE: func(cmd *cobra.Command, args []string) error {
		install, _ := cmd.Flags().GetBool("install")
		remove, _ := cmd.Flags().GetBool("remove")
		interval, _ := cmd.Flags().GetInt("interval")
		keepAlive, _ := cmd.Flags().GetBool("keep-alive")

		if install == remove {
			fail(fmt.Errorf("specify exactly one of --install or --remove"))
			return nil
		}

		root, err := resolveProjectRoot()
		if err != nil {
			fail(err)
			return nil
		}
		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}
		id := projectID(root)
		mgr := platform.NewAgentManager(stateRoot)

		if remove {
			if err := mgr.Remove(rootCtx, id); err != nil {
				fail(err)
				return nil
			}
			fmt.Println("periodic agent removed")
			return nil
		}

		binPath, err := os.Executable()
		if err != nil {
			binPath = os.Args[0]
		}
		env := map[string]string{
			"CHECKPOINT_PROJECT":    root,
			"CHECKPOINT_STATE_ROOT": stateRoot,
		}
		sched := platform.Schedule{IntervalSeconds: interval, KeepAlive: keepAlive}
		if err := mgr.Install(rootCtx, id, binPath+" agent-tick", env, sched); err != nil {
			fail(err)
			return nil
		}
		if err := mgr.Start(rootCtx, id); err != nil {
			fail(err)
			return nil
		}
		fmt.Printf("periodic agent installed, every %ds\n", interval)
		return nil
	},
}

func init() {
	daemonScheduleCmd.Flags().Bool("install", false, "install the periodic agent")
	daemonScheduleCmd.Flags().Bool("remove", false, "remove the periodic agent")
	daemonScheduleCmd.Flags().Int("interval", 1800, "tick interval in seconds")
	daemonScheduleCmd.Flags().Bool("keep-alive", false, "restart the agent if it ever exits")
	rootCmd.AddCommand(daemonScheduleCmd)
}
