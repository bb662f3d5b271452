package main

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/record"
	"github.com/fluxcodestudio/checkpoint/internal/state"
)

// restoreCmd is the external-collaborator restore UX: a thin extractor
// over the artifact layout the Executor writes, not a guided recovery
// wizard. No stable exit-code contract is promised for this verb.
var restoreCmd = &cobra.Command{
	Use:     "restore <dest>",
	GroupID: "backup",
	Short:   "Extract a backup artifact into dest",
	Long: `Extract a file snapshot (or, with --artifact, a specific archive) into
dest. With no --artifact, the most recent successful Backup Record's first
file artifact is used.

Example:
  checkpoint restore ./restored --artifact /path/to/snapshot-20260101_120000.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		artifactFlag, _ := cmd.Flags().GetString("artifact")
		dest := args[0]

		artifact := artifactFlag
		if artifact == "" {
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
			stateDir := state.New(stateRoot, projectID(root)).Root
			all, err := record.All(stateDir)
			if err != nil {
				fail(err)
				return nil
			}
			var rec record.Record
			ok := false
			for i := len(all) - 1; i >= 0 && !ok; i-- {
				rec, ok = all[i], all[i].Outcome == record.OutcomeSuccess && len(all[i].BackupPaths) > 0
			}
			if !ok || len(rec.BackupPaths) == 0 {
				fail(fmt.Errorf("no backup artifacts recorded for this project yet"))
				return nil
			}
			for _, p := range rec.BackupPaths {
				if strings.HasSuffix(p, ".tar") || strings.HasSuffix(p, ".tar.gz") {
					artifact = p
					break
				}
			}
			if artifact == "" {
				fail(fmt.Errorf("most recent backup has no file snapshot artifact"))
				return nil
			}
		}

		if err := extractArchive(artifact, dest); err != nil {
			fail(err)
			return nil
		}
		fmt.Printf("restored %s into %s\n", artifact, dest)
		return nil
	},
}

// extractArchive reverses writeTar in internal/executor/compress.go: a
// plain or gzip-wrapped tar stream written out under dest.
func extractArchive(artifact, dest string) error {
	f, err := os.Open(artifact)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(artifact, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gr.Close()
		r = gr
	}

	if err := os.MkdirAll(dest, 0o750); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(dest, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("writing %s: %w", target, err)
			}
			out.Close()
		}
	}
}

func init() {
	restoreCmd.Flags().String("artifact", "", "path to a specific artifact instead of the last record's")
	rootCmd.AddCommand(restoreCmd)
}
