package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/checklog"
	"github.com/fluxcodestudio/checkpoint/internal/config"
)

// Exit codes per spec §6's per-verb table, reused across subcommands so a
// caller scripting against checkpoint sees a stable contract regardless of
// which verb failed.
const (
	exitOK               = 0
	exitAlreadyRunning   = 1
	exitConfig           = 2
	exitPlatform         = 3
	exitLocked           = 5
	exitUnhealthy        = 6
	exitBackupError      = 7
)

var (
	jsonOutput   bool
	verboseFlag  bool
	projectFlag  string
	stateRootFlag string

	rootCtx context.Context
)

var rootCmd = &cobra.Command{
	Use:           "checkpoint",
	Short:         "Per-developer, per-project automated backup",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCtx = cmd.Context()
		if rootCtx == nil {
			rootCtx = context.Background()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "include extra detail in human-readable output")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "project root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&stateRootFlag, "state-root", "", "override the state root directory")

	rootCmd.AddGroup(
		&cobra.Group{ID: "backup", Title: "Backup:"},
		&cobra.Group{ID: "ops", Title: "Operations:"},
	)
}

// resolveProjectRoot returns --project, or the current working directory.
func resolveProjectRoot() (string, error) {
	if projectFlag != "" {
		return filepath.Abs(projectFlag)
	}
	return os.Getwd()
}

// defaultStateRoot is ~/.checkpoint, the teacher's ~/.beads convention
// generalized to this project's name.
func defaultStateRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".checkpoint"), nil
}

// resolveStateRoot returns --state-root, or defaultStateRoot, creating it
// if necessary.
func resolveStateRoot() (string, error) {
	root := stateRootFlag
	if root == "" {
		var err error
		root, err = defaultStateRoot()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return "", fmt.Errorf("creating state root %s: %w", root, err)
	}
	return root, nil
}

// projectID derives a stable, filesystem-safe identifier from a project
// root: a short readable slug plus a hash of the absolute path with
// symlinks resolved, so two symlinked paths to the same directory collide
// instead of silently tracking two "different" projects. Letter case is
// not normalized: paths differing only in case hash differently. Grounded
// on the teacher's ShortSocketPath workspace-hashing scheme in
// internal/rpc/socket_path.go.
func projectID(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := sha256.Sum256([]byte(abs))
	hash := hex.EncodeToString(sum[:])[:10]
	base := filepath.Base(abs)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "project"
	}
	return base + "-" + hash
}

// newLogger builds the logger a long-running or disk-touching command
// writes through, rotated under <stateDir>/logs/backup.log per §6's state
// directory layout.
func newLogger(stateDir string) checklog.Logger {
	logPath := filepath.Join(stateDir, "logs", "backup.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return checklog.New("", 0)
	}
	return checklog.New(logPath, checklog.MaxSizeMB)
}

// loadConfig initializes the config package for projectRoot (pass "" for
// commands with no project in scope) and returns the resolved logger.
func loadConfig(projectRoot, stateDir string) (checklog.Logger, error) {
	log := newLogger(stateDir)
	if err := config.Initialize(projectRoot, log); err != nil {
		return log, fmt.Errorf("loading config: %w", err)
	}
	return log, nil
}

// exitCodeFor maps a checkerr category to the exit code table in spec §6.
func exitCodeFor(err error) int {
	var ce *checkerr.Error
	if !errors.As(err, &ce) {
		return exitBackupError
	}
	switch ce.Category {
	case checkerr.CategoryCapability:
		return exitPlatform
	case checkerr.CategoryConf:
		if ce.Code == checkerr.ErrLocked.Code {
			return exitLocked
		}
		return exitConfig
	default:
		return exitBackupError
	}
}

// errorsAsGate reports whether err is a checkerr.Error representing an
// expected pre-flight condition (§7: "not logged as errors"), populating
// target when it is.
func errorsAsGate(err error, target **checkerr.Error) bool {
	var ce *checkerr.Error
	if !errors.As(err, &ce) {
		return false
	}
	*target = ce
	return ce.IsGate()
}

// fail prints err (respecting --json) and exits with the mapped code.
func fail(err error) {
	if jsonOutput {
		fmt.Fprintf(os.Stderr, `{"error":%q}`+"\n", err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCodeFor(err))
}
