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

// dumpMySQL shells out to mysqldump. The password travels as
// MYSQL_PWD, never on argv, per spec §4.6/§9.
func dumpMySQL(ctx context.Context, d Descriptor, opts Options) (string, error) {
	timeout := opts.DumpTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	args := []string{"-h", orDefault(d.Host, "localhost"), "-P", orDefault(d.Port, "3306"), "-u", d.User, "--single-transaction", d.Database}
	env := []string{"MYSQL_PWD=" + d.Password}

	res := execcmd.Run(ctx, timeout, nil, env, "mysqldump", args...)
	if res.TimedOut {
		return "", checkerr.ErrDBTimeout
	}
	if res.Err != nil {
		if isNotFound(res.Err) {
			return "", checkerr.ErrDBToolMissing.WithErr(res.Err)
		}
		return "", fmt.Errorf("mysqldump: %w: %s", res.Err, res.Stderr)
	}

	out := filepath.Join(opts.OutputDir, d.Database+".sql.gz")
	if err := gzipBytes(res.Stdout, out); err != nil {
		return "", err
	}
	if err := verifyGzip(out); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}
