package dbpipeline

import (
	"context"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/checklog"
)

// Options controls how the pipeline decides what to dump, per spec §4.6's
// "Dump decision" table.
type Options struct {
	OutputDir             string
	BackupRemoteDatabases bool
	BackupDockerDatabases bool
	AutoStartLocalDB      bool
	StopDBAfterBackup     bool
	AutoStartDocker       bool
	ConnectionTimeout     time.Duration
	DumpTimeout           time.Duration
	Credentials           *Store
	CacheDir              string // user-scoped, for the Docker lifetime flag
}

// Result is one descriptor's dump outcome, mirroring record.DBOutcome but
// carrying the artifact path for the Executor's file phase.
type Result struct {
	Descriptor   Descriptor
	Outcome      string // success, skipped, failed
	ArtifactPath string
	Reason       string
	Err          error
}

const (
	resultSuccess = "success"
	resultSkipped = "skipped"
	resultFailed  = "failed"
)

// Run dumps every descriptor according to the decision rules in spec §4.6.
func Run(ctx context.Context, descriptors []Descriptor, opts Options, log checklog.Logger) []Result {
	results := make([]Result, 0, len(descriptors))
	startedDocker := false

	for _, d := range descriptors {
		if opts.Credentials != nil && d.Password == "" {
			if pw, ok := opts.Credentials.Lookup(string(d.Engine), d.Database); ok {
				d.Password = pw
			}
		}

		switch d.Kind {
		case KindSQLite:
			results = append(results, dumpOne(ctx, d, opts, log))
		case KindNetworkDB:
			if d.IsLocal {
				results = append(results, dumpLocalNetwork(ctx, d, opts, log))
			} else if opts.BackupRemoteDatabases {
				results = append(results, dumpRemote(ctx, d, opts, log))
			} else {
				results = append(results, Result{Descriptor: d, Outcome: resultSkipped, Reason: "remote database backup disabled"})
			}
		case KindDockerDB:
			if !opts.BackupDockerDatabases {
				results = append(results, Result{Descriptor: d, Outcome: resultSkipped, Reason: "docker database backup disabled"})
				continue
			}
			r, weStarted := dumpDocker(ctx, d, opts, log)
			startedDocker = startedDocker || weStarted
			results = append(results, r)
		}
	}

	finishDockerLifetime(startedDocker, opts)

	return results
}

func dumpOne(ctx context.Context, d Descriptor, opts Options, log checklog.Logger) Result {
	path, err := dumpSQLite(ctx, d, opts)
	if err != nil {
		return Result{Descriptor: d, Outcome: resultFailed, Err: err}
	}
	return Result{Descriptor: d, Outcome: resultSuccess, ArtifactPath: path}
}

func dumpLocalNetwork(ctx context.Context, d Descriptor, opts Options, log checklog.Logger) Result {
	started := false
	if !engineReachable(ctx, d) {
		if !opts.AutoStartLocalDB {
			return Result{Descriptor: d, Outcome: resultSkipped, Reason: "database absent locally; cloud/remote copy is authoritative"}
		}
		if err := startLocalEngine(ctx, d); err != nil {
			return Result{Descriptor: d, Outcome: resultFailed, Err: checkerr.ErrCapabilityMissing.WithErr(err)}
		}
		started = true
		if !waitForReady(ctx, d, 10*time.Second) {
			return Result{Descriptor: d, Outcome: resultFailed, Err: checkerr.ErrDBTimeout}
		}
	}

	path, err := dumpByEngine(ctx, d, opts)
	if started && opts.StopDBAfterBackup {
		_ = stopLocalEngine(ctx, d)
	}
	if err != nil {
		return Result{Descriptor: d, Outcome: resultFailed, Err: err}
	}
	return Result{Descriptor: d, Outcome: resultSuccess, ArtifactPath: path}
}

func dumpRemote(ctx context.Context, d Descriptor, opts Options, log checklog.Logger) Result {
	timeout := opts.ConnectionTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if d.SSLMode == "" {
		d.SSLMode = "require"
	}
	path, err := dumpByEngine(cctx, d, opts)
	if err != nil {
		return Result{Descriptor: d, Outcome: resultFailed, Err: err}
	}
	return Result{Descriptor: d, Outcome: resultSuccess, ArtifactPath: path}
}

func dumpByEngine(ctx context.Context, d Descriptor, opts Options) (string, error) {
	switch d.Engine {
	case EnginePostgres:
		return dumpPostgres(ctx, d, opts)
	case EngineMySQL:
		return dumpMySQL(ctx, d, opts)
	case EngineMongo:
		return dumpMongo(ctx, d, opts)
	default:
		return "", checkerr.New(checkerr.CategoryCapability, "ECAPABILITY003", "unsupported database engine", nil)
	}
}
