package dbpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/checklog"
	"github.com/fluxcodestudio/checkpoint/internal/execcmd"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
)

const dockerLifetimeFlagName = "docker-started-by-checkpoint"

// dockerRunning reports whether the Docker daemon answers `docker info`.
func dockerRunning(ctx context.Context) bool {
	res := execcmd.Run(ctx, 5*time.Second, nil, nil, "docker", "info")
	return res.Err == nil
}

func startDocker(ctx context.Context) error {
	res := execcmd.Run(ctx, 30*time.Second, nil, nil, "systemctl", "start", "docker")
	return res.Err
}

func stopDocker(ctx context.Context) error {
	res := execcmd.Run(ctx, 30*time.Second, nil, nil, "systemctl", "stop", "docker")
	return res.Err
}

func dockerWaitReady(ctx context.Context, bound time.Duration) bool {
	deadline := time.Now().Add(bound)
	for time.Now().Before(deadline) {
		if dockerRunning(ctx) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
	return dockerRunning(ctx)
}

func dockerFlagPath(cacheDir string) string {
	return filepath.Join(cacheDir, dockerLifetimeFlagName)
}

// setDockerStartedFlag records that this run started Docker, so a
// concurrent project's dump doesn't attempt a redundant start and so the
// eventual stop is authorized, per spec §4.6 "Docker lifetime flag".
func setDockerStartedFlag(cacheDir string) error {
	return platform.AtomicWriteFile(dockerFlagPath(cacheDir), []byte(checklogTimestamp()), 0o640)
}

func dockerStartedFlagSet(cacheDir string) bool {
	_, err := os.Stat(dockerFlagPath(cacheDir))
	return err == nil
}

func clearDockerStartedFlag(cacheDir string) {
	_ = os.Remove(dockerFlagPath(cacheDir))
}

func checklogTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339) + "\n"
}

// dumpDocker ensures Docker is running (starting it if configured and
// permitted), execs the dump inside the container, and reports whether
// this call is the one that started Docker.
func dumpDocker(ctx context.Context, d Descriptor, opts Options, _ checklog.Logger) (Result, bool) {
	started := false
	if !dockerRunning(ctx) {
		if !opts.AutoStartDocker {
			return Result{Descriptor: d, Outcome: resultSkipped, Reason: "docker not running and auto_start_docker disabled"}, false
		}
		if dockerStartedFlagSet(opts.CacheDir) {
			// Another project's pipeline already started it; just wait.
		} else if err := startDocker(ctx); err != nil {
			return Result{Descriptor: d, Outcome: resultFailed, Err: checkerr.ErrCapabilityMissing.WithErr(err)}, false
		} else {
			started = true
			_ = setDockerStartedFlag(opts.CacheDir)
		}
		if !dockerWaitReady(ctx, 60*time.Second) {
			return Result{Descriptor: d, Outcome: resultFailed, Err: checkerr.ErrDBTimeout}, started
		}
	}

	path, err := dumpInContainer(ctx, d, opts)
	if err != nil {
		return Result{Descriptor: d, Outcome: resultFailed, Err: err}, started
	}
	return Result{Descriptor: d, Outcome: resultSuccess, ArtifactPath: path}, started
}

// maybeStopDocker stops Docker and, if the stop succeeds, clears the
// lifetime flag; callers only invoke this when their own run started
// Docker and stop_db_after_backup is enabled. It does not check whether
// other projects' backups are still using Docker.
func maybeStopDocker(opts Options) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := stopDocker(ctx); err == nil {
		clearDockerStartedFlag(opts.CacheDir)
	}
}

// finishDockerLifetime retires this run's claim on the Docker lifetime flag
// when it was the one that started Docker: stopping it (and clearing the
// flag) when stop_db_after_backup is enabled, or just clearing the flag
// when it isn't, so the flag never outlives the run that set it.
func finishDockerLifetime(startedDocker bool, opts Options) {
	if !startedDocker {
		return
	}
	if opts.StopDBAfterBackup {
		maybeStopDocker(opts)
		return
	}
	clearDockerStartedFlag(opts.CacheDir)
}

func dumpInContainer(ctx context.Context, d Descriptor, opts Options) (string, error) {
	var dumpCmd []string
	switch d.Engine {
	case EnginePostgres:
		dumpCmd = []string{"pg_dump", "-U", orDefault(d.User, "postgres"), "-Fc", d.Database}
	case EngineMySQL:
		dumpCmd = []string{"sh", "-c", fmt.Sprintf("mysqldump -u%s %s", orDefault(d.User, "root"), d.Database)}
	case EngineMongo:
		dumpCmd = []string{"mongodump", "--db", d.Database, "--archive"}
	default:
		return "", checkerr.New(checkerr.CategoryCapability, "ECAPABILITY003", "unsupported database engine", nil)
	}

	args := append([]string{"exec", d.Container}, dumpCmd...)
	timeout := opts.DumpTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	var env []string
	if d.Password != "" {
		env = []string{passwordEnvFor(d.Engine) + "=" + d.Password}
	}

	res := execcmd.Run(ctx, timeout, nil, env, "docker", args...)
	if res.TimedOut {
		return "", checkerr.ErrDBTimeout
	}
	if res.Err != nil {
		return "", fmt.Errorf("docker exec dump: %w: %s", res.Err, res.Stderr)
	}

	out := filepath.Join(opts.OutputDir, d.Container+"-"+d.Database+".dump.gz")
	if err := gzipBytes(res.Stdout, out); err != nil {
		return "", err
	}
	if err := verifyGzip(out); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}

func passwordEnvFor(e Engine) string {
	switch e {
	case EnginePostgres:
		return "PGPASSWORD"
	case EngineMySQL:
		return "MYSQL_PWD"
	default:
		return "DB_PASSWORD"
	}
}
