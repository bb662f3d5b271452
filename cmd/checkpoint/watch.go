package main

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/config"
	"github.com/fluxcodestudio/checkpoint/internal/debounce"
	"github.com/fluxcodestudio/checkpoint/internal/executor"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/fluxcodestudio/checkpoint/internal/registry"
	"github.com/fluxcodestudio/checkpoint/internal/state"
	"github.com/fluxcodestudio/checkpoint/internal/watcher"
)

// watcherMarker is the command-line substring Alive checks against, so a
// PID reused by an unrelated process is never mistaken for the watcher
// (§4.1/§4.7 PID-reuse safety).
const watcherMarker = "watch start --foreground"

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "backup",
	Short:   "Manage the project's Watcher",
}

var watchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Watcher for the current project",
	RunE: func(cmd *cobra.Command, args []string) error {
		foreground, _ := cmd.Flags().GetBool("foreground")

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
		pd := state.New(stateRoot, id)

		if pid, _ := pd.ReadPID("backup-watcher.pid"); pid != 0 {
			// re-check against the marker, not bare PID existence
			if isWatcherAlive(pid) {
				fmt.Fprintln(os.Stderr, "watcher already running for this project")
				os.Exit(exitAlreadyRunning)
			}
		}

		if foreground {
			return runWatcherForeground(root, stateRoot, id)
		}

		binPath, err := os.Executable()
		if err != nil {
			binPath = os.Args[0]
		}
		sub := exec.Command(binPath, "watch", "start", "--foreground", "--project", root, "--state-root", stateRoot)
		devNull, _ := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if devNull != nil {
			sub.Stdout, sub.Stderr, sub.Stdin = devNull, devNull, devNull
		}
		if err := sub.Start(); err != nil {
			fail(checkerr.New(checkerr.CategoryCapability, "ECAPABILITY003", "check that the checkpoint binary is executable", err))
			return nil
		}
		if err := pd.WritePID("backup-watcher.pid", sub.Process.Pid, watcherMarker+" "+id); err != nil {
			fail(err)
			return nil
		}
		reg, err := registry.New(stateRoot)
		if err == nil {
			_ = reg.Register(registry.Entry{ProjectID: id, Root: root, RegisteredAt: time.Now().UTC(), WatcherPID: sub.Process.Pid})
		}
		go func() { _ = sub.Wait() }()
		fmt.Printf("watcher started for %s (pid %d)\n", root, sub.Process.Pid)
		return nil
	},
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Watcher for the current project",
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
		pd := state.New(stateRoot, id)

		pid, _ := pd.ReadPID("backup-watcher.pid")
		if pid == 0 || !isWatcherAlive(pid) {
			fmt.Fprintln(os.Stderr, "watcher not running for this project")
			os.Exit(exitAlreadyRunning)
		}
		proc, err := os.FindProcess(pid)
		if err != nil {
			fail(err)
			return nil
		}
		if err := proc.Signal(os.Interrupt); err != nil {
			fail(err)
			return nil
		}
		_ = pd.WritePID("backup-watcher.pid", 0, "")
		fmt.Println("watcher stopped")
		return nil
	},
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the Watcher is running",
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
		pd := state.New(stateRoot, projectID(root))
		pid, _ := pd.ReadPID("backup-watcher.pid")
		alive := pid != 0 && isWatcherAlive(pid)

		if jsonOutput {
			outputJSON(map[string]any{"running": alive, "pid": pid})
			return nil
		}
		if alive {
			fmt.Printf("running (pid %d)\n", pid)
		} else {
			fmt.Println("stopped")
		}
		return nil
	},
}

func init() {
	watchStartCmd.Flags().Bool("foreground", false, "run the watch loop in this process instead of detaching")
	watchCmd.AddCommand(watchStartCmd, watchStopCmd, watchStatusCmd)
	rootCmd.AddCommand(watchCmd)
}

// runWatcherForeground runs the Watcher -> Debouncer -> Executor pipeline
// until interrupted. This is the body of the detached child started by
// `watch start`, also reachable directly via --foreground for debugging.
func runWatcherForeground(root, stateRoot, id string) error {
	pd := state.New(stateRoot, id)
	log, err := loadConfig(root, stateRoot)
	if err != nil {
		return err
	}

	excludes, err := watcher.NewExcludeSet(nil)
	if err != nil {
		return err
	}
	w, err := watcher.New(rootCtx, watcher.Options{Root: root, Excludes: excludes})
	if err != nil {
		return err
	}
	defer w.Close()

	proj := executor.Project{ID: id, Root: root, StateRoot: stateRoot, Excludes: excludes}

	debounceSeconds := config.GetInt("debounce_seconds")
	if debounceSeconds <= 0 {
		debounceSeconds = 60
	}
	idleThreshold := time.Duration(config.GetInt("session_idle_threshold")) * time.Second
	if idleThreshold <= 0 {
		idleThreshold = 10 * time.Minute
	}

	runBackup := func(cause debounce.Cause) {
		if _, err := executor.Run(rootCtx, proj, cause, log); err != nil && log != nil {
			var ce *checkerr.Error
			if !(errorsAsGate(err, &ce)) {
				log.Error(err, "watcher-triggered backup failed for %s", id)
			}
		}
	}
	db := debounce.New(time.Duration(debounceSeconds)*time.Second, func() { runBackup(debounce.CauseDebounce) })

	for {
		select {
		case <-w.Events():
			// Session newness is checked on receipt, not after the debounce
			// window elapses: a long-idle edit dispatches immediately
			// (§4.4), it doesn't wait out the trailing-edge timer.
			isNew, _ := pd.RefreshSession(time.Now(), idleThreshold)
			if isNew {
				db.Cancel()
				go runBackup(debounce.CauseNewSession)
				continue
			}
			db.Notify()
		case werr := <-w.Errors():
			if werr != nil && log != nil {
				log.Error(werr, "watcher error for %s", id)
			}
		case <-rootCtx.Done():
			db.Cancel()
			return nil
		}
	}
}

func isWatcherAlive(pid int) bool {
	return pid != 0 && platform.Alive(pid, watcherMarker)
}
