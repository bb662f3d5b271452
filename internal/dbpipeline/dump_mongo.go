package dbpipeline

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/execcmd"
)

// dumpMongo shells out to mongodump into a scratch directory, then
// tar+gzips it into a single artifact.
func dumpMongo(ctx context.Context, d Descriptor, opts Options) (string, error) {
	timeout := opts.DumpTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	scratch, err := os.MkdirTemp(opts.OutputDir, "mongodump-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	args := []string{"--host", orDefault(d.Host, "localhost"), "--port", orDefault(d.Port, "27017"), "--db", d.Database, "--out", scratch}
	if d.User != "" {
		args = append(args, "--username", d.User, "--authenticationDatabase", "admin")
	}

	// mongodump has no equivalent of PGPASSWORD/MYSQL_PWD; unlike the
	// other two engines its password must go on argv.
	if d.Password != "" {
		args = append(args, "--password", d.Password)
	}

	res := execcmd.Run(ctx, timeout, nil, nil, "mongodump", args...)
	if res.TimedOut {
		return "", checkerr.ErrDBTimeout
	}
	if res.Err != nil {
		if isNotFound(res.Err) {
			return "", checkerr.ErrDBToolMissing.WithErr(res.Err)
		}
		return "", fmt.Errorf("mongodump: %w: %s", res.Err, res.Stderr)
	}

	out := filepath.Join(opts.OutputDir, d.Database+".tar.gz")
	if err := tarGzDir(scratch, out); err != nil {
		return "", err
	}
	if err := verifyGzip(out); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}

func tarGzDir(dir, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}
