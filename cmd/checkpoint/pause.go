package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/state"
)

var pauseCmd = &cobra.Command{
	Use:     "pause",
	GroupID: "backup",
	Short:   "Suspend new backups system-wide",
	Long: `Create the global .checkpoint-paused sentinel. The Watcher and
Periodic Agent keep running and the heartbeat keeps updating, but no new
Executor run starts until resumed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}
		if err := state.SetPaused(stateRoot, true); err != nil {
			fail(err)
			return nil
		}
		fmt.Println("backups paused")
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:     "resume",
	GroupID: "backup",
	Short:   "Remove the paused sentinel",
	RunE: func(cmd *cobra.Command, args []string) error {
		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}
		if err := state.SetPaused(stateRoot, false); err != nil {
			fail(err)
			return nil
		}
		fmt.Println("backups resumed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd)
}
