package dbpipeline

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// dumpSQLite uses VACUUM INTO for an online, consistent snapshot (the
// engine's own backup API, per spec §4.6), then gzips and verifies it.
func dumpSQLite(ctx context.Context, d Descriptor, opts Options) (string, error) {
	db, err := sql.Open("sqlite3", d.Path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", d.Path, err)
	}
	defer db.Close()

	tmp := filepath.Join(opts.OutputDir, filepath.Base(d.Path)+".vacuum.tmp")
	defer os.Remove(tmp)

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		return "", fmt.Errorf("vacuum into: %w", err)
	}

	out := filepath.Join(opts.OutputDir, filepath.Base(d.Path)+".gz")
	if err := gzipFile(tmp, out); err != nil {
		return "", err
	}
	if err := verifyGzip(out); err != nil {
		os.Remove(out)
		return "", err
	}
	return out, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func verifyGzip(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("corrupt artifact: %w", err)
	}
	defer gr.Close()

	n, err := io.Copy(io.Discard, gr)
	if err != nil {
		return fmt.Errorf("decompress-test failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("artifact %s is empty", path)
	}
	return nil
}
