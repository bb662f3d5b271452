package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/config"
	"github.com/fluxcodestudio/checkpoint/internal/scheduler"
)

var cleanupCmd = &cobra.Command{
	Use:     "cleanup",
	GroupID: "ops",
	Short:   "Run the retention sweep now",
	Long: `Apply the configured time/count/size retention rules to the
databases and files backup buckets. Retention runs only when this command
is invoked; neither the Periodic Agent nor a backup run applies it.

Examples:
  checkpoint cleanup --preview
  checkpoint cleanup --execute --age 720h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		execute, _ := cmd.Flags().GetBool("execute")
		preview, _ := cmd.Flags().GetBool("preview")
		ageOverride, _ := cmd.Flags().GetDuration("age")
		ageChanged := cmd.Flags().Changed("age")
		sizeOverride, _ := cmd.Flags().GetInt("size")

		if execute == preview {
			fail(fmt.Errorf("specify exactly one of --execute or --preview"))
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
		if _, err := loadConfig(root, stateRoot); err != nil {
			fail(err)
			return nil
		}

		backupRoot := config.GetString("backup_root")
		if backupRoot == "" {
			backupRoot = filepath.Join(root, "backups")
		}

		floor := config.GetInt("retention.minimum_keep")
		sizeMB := config.GetInt("retention.size_based_mb")
		if sizeOverride > 0 {
			sizeMB = sizeOverride
		}

		buckets := []struct {
			name   string
			dir    string
			policy scheduler.BucketPolicy
		}{
			{
				name: "databases",
				dir:  filepath.Join(backupRoot, "databases"),
				policy: scheduler.BucketPolicy{
					TimeBased:   durationOverride(ageChanged, ageOverride, config.GetDuration("retention.database.time_based")),
					CountBased:  config.GetInt("retention.database.count_based"),
					SizeBasedMB: sizeMB,
					Floor:       floor,
				},
			},
			{
				name: "files",
				dir:  backupRoot,
				policy: scheduler.BucketPolicy{
					TimeBased:   durationOverride(ageChanged, ageOverride, config.GetDuration("retention.files.time_based")),
					CountBased:  config.GetInt("retention.files.count_based"),
					SizeBasedMB: sizeMB,
					Floor:       floor,
				},
			},
		}

		now := time.Now()
		type bucketResult struct {
			Bucket  string   `json:"bucket"`
			Planned []string `json:"planned"`
			Deleted []string `json:"deleted,omitempty"`
		}
		var results []bucketResult

		for _, b := range buckets {
			artifacts := listArtifacts(b.dir)
			plan := scheduler.Plan(artifacts, b.policy, now)
			paths := make([]string, 0, len(plan))
			for _, a := range plan {
				paths = append(paths, a.Path)
			}

			res := bucketResult{Bucket: b.name, Planned: paths}
			if execute {
				res.Deleted = scheduler.Sweep(artifacts, b.policy, now)
			}
			results = append(results, res)
		}

		if jsonOutput {
			outputJSON(results)
			return nil
		}
		for _, r := range results {
			if execute {
				fmt.Printf("%s: deleted %d artifact(s)\n", r.Bucket, len(r.Deleted))
			} else {
				fmt.Printf("%s: would delete %d artifact(s)\n", r.Bucket, len(r.Planned))
				for _, p := range r.Planned {
					fmt.Println("  -", p)
				}
			}
		}
		return nil
	},
}

// listArtifacts lists the regular files directly under dir as retention
// candidates.
func listArtifacts(dir string) []scheduler.Artifact {
	var out []scheduler.Artifact
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, scheduler.Artifact{
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return out
}

// durationOverride builds the per-bucket time-based cutoff: an explicit
// --age (even --age 0) always wins, distinguished from "flag not passed"
// by cmd.Flags().Changed rather than comparing against the zero value, so
// a real zero cutoff is honored instead of silently falling back.
func durationOverride(changed bool, override, fallback time.Duration) *time.Duration {
	if changed {
		return &override
	}
	d := fallback
	return &d
}

func init() {
	cleanupCmd.Flags().Bool("execute", false, "actually delete the planned artifacts")
	cleanupCmd.Flags().Bool("preview", false, "report what would be deleted without deleting")
	cleanupCmd.Flags().Duration("age", 0, "override every bucket's time-based retention window")
	cleanupCmd.Flags().Int("size", 0, "override every bucket's size-based retention cap in MB")
	rootCmd.AddCommand(cleanupCmd)
}
