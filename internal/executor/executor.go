// Package executor runs one backup for one project: the sequence in spec
// §4.5 from the gates and lock acquisition through verification, mirroring
// and the Backup Record, with every exit path — including an early return
// on a failed gate — releasing the lock and writing a Backup Record.
// Retention is not run here; only the `cleanup` command applies it.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/checklog"
	"github.com/fluxcodestudio/checkpoint/internal/config"
	"github.com/fluxcodestudio/checkpoint/internal/dbpipeline"
	"github.com/fluxcodestudio/checkpoint/internal/debounce"
	"github.com/fluxcodestudio/checkpoint/internal/platform"
	"github.com/fluxcodestudio/checkpoint/internal/record"
	"github.com/fluxcodestudio/checkpoint/internal/state"
	"github.com/fluxcodestudio/checkpoint/internal/watcher"
)

// Project bundles the identity an Executor run needs; the caller (watcher
// debounce fire, scheduled tick, or `checkpoint now`) resolves this once.
type Project struct {
	ID        string
	Root      string
	StateRoot string
	Excludes  *watcher.ExcludeSet

	// SkipDatabases and SkipFiles implement `checkpoint now`'s
	// --local-only/--db-only flags: each skips the other half of the run
	// while still producing a Backup Record for the half that ran.
	SkipDatabases bool
	SkipFiles     bool
}

// Run executes one backup for proj under cause, returning the completed
// Backup Record. The record is always appended, even on failure, so
// `status`/`verify` can see why a run did not produce an artifact.
func Run(ctx context.Context, proj Project, cause debounce.Cause, log checklog.Logger) (record.Record, error) {
	rec := record.New(proj.ID, toRecordCause(cause))
	pd := state.New(proj.StateRoot, proj.ID)

	gateCfg := debounce.GateConfig{
		StateRoot:          proj.StateRoot,
		BackupInterval:     config.GetDuration("backup_interval"),
		DriveVerifyEnabled: config.GetBool("drive_verification_enabled"),
		DriveMarkerPath:    config.GetString("drive_marker_path"),
	}
	if err := debounce.CheckGates(gateCfg, pd, cause); err != nil {
		return finish(pd, rec, record.OutcomeSkipped, err, false)
	}

	lock := platform.NewLock(pd.Root, "backup")
	handle, acquired, err := lock.TryAcquire()
	if err != nil {
		return finish(pd, rec, record.OutcomeFailed, err, false)
	}
	if !acquired {
		return finish(pd, rec, record.OutcomeSkipped, checkerr.ErrLocked, false)
	}
	defer handle.Release()

	backupRoot := config.GetString("backup_root")
	if backupRoot == "" {
		backupRoot = filepath.Join(pd.Root, "backups")
	}

	disk, err := platform.Disk(backupRoot)
	if err == nil {
		if critPct := config.GetInt("disk_critical_pct"); critPct > 0 && disk.UsedPct >= float64(critPct) {
			return finish(pd, rec, record.OutcomeFailed, checkerr.ErrDiskCritical, false)
		}
	}

	since := pd.LastBackupTime()
	changed, err := changedPaths(ctx, proj.Root, since, proj.Excludes)
	if err != nil && log != nil {
		log.Error(err, "change detection failed, falling back to full scan")
	}

	if len(changed) == 0 && !since.IsZero() && cause != debounce.CauseManualForce {
		return finish(pd, rec, record.OutcomeSkipped, checkerr.ErrNoChanges, false)
	}

	critical := CriticalFiles(proj.Root, criticalFileFlags())
	changed = append(changed, critical...)

	var dbResults []dbpipeline.Result
	if !proj.SkipDatabases {
		dbResults = runDatabasePhase(ctx, proj, backupRoot, log)
		for _, r := range dbResults {
			rec.Databases = append(rec.Databases, record.DBOutcome{
				Engine:  string(r.Descriptor.Engine),
				Target:  r.Descriptor.Database,
				Outcome: record.Outcome(r.Outcome),
				Reason:  r.Reason,
			})
			if r.Outcome == "success" && r.ArtifactPath != "" {
				changed = append(changed, r.ArtifactPath)
			}
		}
	}

	now := time.Now().UTC()
	var artifacts []string
	if !proj.SkipFiles {
		stage, err := stageFiles(proj.Root, backupRoot, changed, SymlinkPolicy(config.GetString("symlink_policy")), now)
		if err != nil {
			return finish(pd, rec, record.OutcomeFailed, err, false)
		}

		artifactBase := filepath.Join(backupRoot, "snapshot-"+now.Format("20060102_150405"))
		compressed, err := compressSnapshot(stage.FilesDir, artifactBase, config.GetInt("compression_level"))
		if err != nil {
			return finish(pd, rec, record.OutcomeFailed, err, false)
		}
		artifacts = []string{compressed.Path}
		rec.BytesWritten = compressed.Bytes
	}

	if len(artifacts) > 0 && config.GetBool("encryption_enabled") {
		keyPath := config.GetString("encryption_key_path")
		if keyPath != "" {
			encPath, err := EncryptArtifact(artifacts[0], keyPath)
			if err != nil {
				if log != nil {
					log.Error(err, "encryption failed, keeping unencrypted artifact")
				}
			} else {
				artifacts = []string{encPath}
			}
		}
	}

	var failed []string
	if len(artifacts) > 0 {
		failed = VerifyArtifacts(artifacts)
		if len(failed) > 0 {
			if len(failed) == len(artifacts) {
				return finish(pd, rec, record.OutcomeFailed, fmt.Errorf("all artifacts failed verification"), false)
			}
			artifacts = subtract(artifacts, failed)
		}
	}

	outcome := record.OutcomeSuccess
	if hasFailure(dbResults) || len(failed) > 0 {
		outcome = record.OutcomePartial
	}

	if config.GetBool("mirror.enabled") || config.GetString("mirror.local_cloud_path") != "" {
		mirrorer, err := NewMirrorer(ctx, MirrorConfig{
			Enabled:    config.GetBool("mirror.enabled"),
			Bucket:     config.GetString("mirror.bucket"),
			Prefix:     config.GetString("mirror.prefix"),
			LocalCloud: config.GetString("mirror.local_cloud_path"),
		})
		if err != nil {
			if log != nil {
				log.Error(err, "mirror setup failed")
			}
			outcome = record.OutcomePartial
		} else {
			for _, res := range mirrorer.Mirror(ctx, artifacts) {
				if res.Err != nil {
					if log != nil {
						log.Error(res.Err, "mirroring artifact %s failed", res.Path)
					}
					outcome = record.OutcomePartial
				}
			}
		}
	}

	rec.BackupPaths = artifacts
	return finish(pd, rec, outcome, nil, true)
}

func runDatabasePhase(ctx context.Context, proj Project, backupRoot string, log checklog.Logger) []dbpipeline.Result {
	descriptors, err := dbpipeline.Discover(proj.Root)
	if err != nil {
		if log != nil {
			log.Error(err, "database discovery failed")
		}
		return nil
	}
	if len(descriptors) == 0 {
		return nil
	}

	var creds *dbpipeline.Store
	credsPath := filepath.Join(proj.StateRoot, "projects", proj.ID, "db-credentials.json")
	if platform.Exists(credsPath) {
		if s, err := dbpipeline.LoadStore(credsPath); err == nil {
			creds = s
		}
	}

	opts := dbpipeline.Options{
		OutputDir:             filepath.Join(backupRoot, "databases"),
		BackupRemoteDatabases: config.GetBool("database.backup_remote_databases"),
		BackupDockerDatabases: config.GetBool("database.backup_docker_databases"),
		AutoStartLocalDB:      config.GetBool("database.auto_start_local_db"),
		StopDBAfterBackup:     config.GetBool("database.stop_db_after_backup"),
		AutoStartDocker:       config.GetBool("database.auto_start_docker"),
		ConnectionTimeout:     config.GetDuration("database.connection_timeout"),
		DumpTimeout:           config.GetDuration("database.dump_timeout"),
		Credentials:           creds,
		CacheDir:              filepath.Join(proj.StateRoot, "projects", proj.ID),
	}
	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		if log != nil {
			log.Error(err, "creating database output dir")
		}
		return nil
	}

	return dbpipeline.Run(ctx, descriptors, opts, log)
}

func criticalFileFlags() map[string]bool {
	return map[string]bool{
		"critical_files.env":                   config.GetBool("critical_files.env"),
		"critical_files.credentials":           config.GetBool("critical_files.credentials"),
		"critical_files.ide_settings":          config.GetBool("critical_files.ide_settings"),
		"critical_files.notes":                 config.GetBool("critical_files.notes"),
		"critical_files.ai_assistant_artifacts": config.GetBool("critical_files.ai_assistant_artifacts"),
	}
}

func finish(pd state.Dir, rec record.Record, outcome record.Outcome, err error, ranFully bool) (record.Record, error) {
	rec.End = time.Now().UTC()
	rec.Outcome = outcome
	if err != nil {
		rec.Error = err.Error()
	}
	if ranFully && outcome == record.OutcomeSuccess {
		_ = pd.SetLastBackupTime(rec.End)
	}
	if recErr := record.Append(pd.Root, rec); recErr != nil {
		return rec, recErr
	}
	return rec, err
}

func toRecordCause(c debounce.Cause) record.Cause {
	switch c {
	case debounce.CauseNewSession:
		return record.CauseSession
	case debounce.CauseScheduled:
		return record.CauseInterval
	case debounce.CauseManual, debounce.CauseManualForce:
		return record.CauseManual
	default:
		return record.CauseWatcher
	}
}

func hasFailure(results []dbpipeline.Result) bool {
	for _, r := range results {
		if r.Outcome == "failed" {
			return true
		}
	}
	return false
}

func subtract(all, drop []string) []string {
	dropSet := make(map[string]bool, len(drop))
	for _, d := range drop {
		dropSet[d] = true
	}
	out := all[:0]
	for _, a := range all {
		if !dropSet[a] {
			out = append(out, a)
		}
	}
	return out
}
