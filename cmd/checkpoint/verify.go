package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/executor"
	"github.com/fluxcodestudio/checkpoint/internal/record"
	"github.com/fluxcodestudio/checkpoint/internal/state"
)

var verifyCmd = &cobra.Command{
	Use:     "verify",
	GroupID: "backup",
	Short:   "Re-verify the last backup's artifacts",
	Long: `Reread the most recent Backup Record for the current project and
re-run integrity verification (gzip header/CRC and archive listing, or
the header line of an age-encrypted artifact) on every artifact it
produced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		stateDir := state.New(stateRoot, id).Root

		rec, ok, err := record.Last(stateDir)
		if err != nil {
			fail(err)
			return nil
		}
		if !ok || len(rec.BackupPaths) == 0 {
			fail(fmt.Errorf("no backup artifacts recorded for this project yet"))
			return nil
		}

		failed := executor.VerifyArtifacts(rec.BackupPaths)

		type result struct {
			RecordID string   `json:"record_id"`
			Checked  []string `json:"checked"`
			Failed   []string `json:"failed,omitempty"`
		}
		res := result{RecordID: rec.ID, Checked: rec.BackupPaths, Failed: failed}

		if jsonOutput {
			outputJSON(res)
		} else if len(failed) == 0 {
			fmt.Printf("verify: all %d artifact(s) OK\n", len(rec.BackupPaths))
		} else {
			fmt.Printf("verify: %d of %d artifact(s) failed:\n", len(failed), len(rec.BackupPaths))
			for _, f := range failed {
				fmt.Println("  -", f)
			}
		}
		if len(failed) > 0 {
			fail(fmt.Errorf("%d artifact(s) failed verification", len(failed)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
