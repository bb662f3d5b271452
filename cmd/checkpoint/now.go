package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/debounce"
	"github.com/fluxcodestudio/checkpoint/internal/executor"
	"github.com/fluxcodestudio/checkpoint/internal/watcher"
)

var nowCmd = &cobra.Command{
	Use:     "now",
	GroupID: "backup",
	Short:   "Force one backup of the current project",
	Long: `Run the Backup Executor once for the current project, outside the
Watcher/debounce path. Still honors the pause sentinel, drive-verification
gate, lock, and — unless --force is given — the backup-interval gate and
the no-changes-since-last-backup skip.

Examples:
  checkpoint now              # manual backup, still subject to the interval gate
  checkpoint now --force      # bypasses the interval gate and the no-changes skip
  checkpoint now --dry-run    # report what would run without writing artifacts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		localOnly, _ := cmd.Flags().GetBool("local-only")
		dbOnly, _ := cmd.Flags().GetBool("db-only")

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
		log, err := loadConfig(root, stateRoot)
		if err != nil {
			fail(err)
			return nil
		}

		if dryRun {
			fmt.Println("dry run: would back up", root)
			return nil
		}

		excludes, err := watcher.NewExcludeSet(nil)
		if err != nil {
			fail(err)
			return nil
		}

		cause := debounce.CauseManual
		if force {
			cause = debounce.CauseManualForce
		}

		proj := executor.Project{
			ID:            projectID(root),
			Root:          root,
			StateRoot:     stateRoot,
			Excludes:      excludes,
			SkipDatabases: localOnly,
			SkipFiles:     dbOnly,
		}

		rec, runErr := executor.Run(rootCtx, proj, cause, log)
		if runErr != nil {
			var ce *checkerr.Error
			if errorsAsGate(runErr, &ce) {
				fmt.Fprintf(os.Stderr, "skipped: %s (%s)\n", ce.Code, ce.Fix)
				os.Exit(exitCodeFor(runErr))
			}
			fail(runErr)
			return nil
		}

		if jsonOutput {
			outputJSON(rec)
		} else {
			fmt.Printf("backup %s: outcome=%s bytes=%d artifacts=%d\n", rec.ID, rec.Outcome, rec.BytesWritten, len(rec.BackupPaths))
		}
		return nil
	},
}

func init() {
	nowCmd.Flags().Bool("force", false, "bypass the backup-interval gate")
	nowCmd.Flags().Bool("local-only", false, "skip database dumps, snapshot files only")
	nowCmd.Flags().Bool("db-only", false, "skip file staging, dump databases only")
	nowCmd.Flags().Bool("dry-run", false, "report what would run without writing artifacts")
	rootCmd.AddCommand(nowCmd)
}
