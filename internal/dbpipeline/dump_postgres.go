package dbpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/execcmd"
)

// dumpPostgres shells out to pg_dump and gzips its captured output. The password
// travels as PGPASSWORD, never on argv, per spec §4.6/§9.
func dumpPostgres(ctx context.Context, d Descriptor, opts Options) (string, error) {
	timeout := opts.DumpTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	args := []string{"-h", orDefault(d.Host, "localhost"), "-p", orDefault(d.Port, "5432"), "-U", d.User, "-Fc", d.Database}
	if d.SSLMode != "" {
		args = append([]string{"--no-password"}, args...)
	}

	env := []string{"PGPASSWORD=" + d.Password}
	if d.SSLMode != "" {
		env = append(env, "PGSSLMODE="+d.SSLMode)
	}

	res := execcmd.Run(ctx, timeout, nil, env, "pg_dump", args...)
	if res.TimedOut {
		return "", checkerr.ErrDBTimeout
	}
	if res.Err != nil {
		if isNotFound(res.Err) {
			return "", checkerr.ErrDBToolMissing.WithErr(res.Err)
		}
		return "", fmt.Errorf("pg_dump: %w: %s", res.Err, res.Stderr)
	}

	out := filepath.Join(opts.OutputDir, d.Database+".pgdump.gz")
	if err := gzipBytes(res.Stdout, out); err != nil {
		return "", err
	}
	if err := verifyGzip(out); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
