package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MirrorConfig names the remote object-store destination for §4.5 step 11
// ("Mirror to configured local cloud folder and/or remote store").
type MirrorConfig struct {
	Enabled    bool
	Bucket     string
	Prefix     string
	LocalCloud string // e.g. a Dropbox/iCloud-synced folder; plain copy
}

// Mirrorer uploads backup artifacts to the configured remote store.
// Mirror errors are non-fatal per-artifact: §4.5 step 11 downgrades the
// run's outcome to "partial" rather than failing it outright.
type Mirrorer struct {
	cfg      MirrorConfig
	uploader *manager.Uploader
}

// NewMirrorer builds the uploader the same way the teacher's R2Client
// does: aws-sdk-go-v2 config + s3 manager with a fixed part size and
// concurrency. No endpoint override here — a plain bucket/region pair,
// not an R2-style custom endpoint.
func NewMirrorer(ctx context.Context, cfg MirrorConfig) (*Mirrorer, error) {
	if !cfg.Enabled {
		return &Mirrorer{cfg: cfg}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024
		u.Concurrency = 5
	})
	return &Mirrorer{cfg: cfg, uploader: uploader}, nil
}

// MirrorResult is one artifact's mirror outcome.
type MirrorResult struct {
	Path string
	Err  error
}

// Mirror uploads every artifact, plus copies to the local-cloud folder if
// configured. Each artifact's error is independent; a failure on one
// never stops the rest.
func (m *Mirrorer) Mirror(ctx context.Context, artifacts []string) []MirrorResult {
	results := make([]MirrorResult, 0, len(artifacts))
	for _, path := range artifacts {
		var err error
		if m.cfg.LocalCloud != "" {
			if cpErr := copyToLocalCloud(path, m.cfg.LocalCloud); cpErr != nil {
				err = cpErr
			}
		}
		if m.cfg.Enabled && m.uploader != nil {
			if upErr := m.upload(ctx, path); upErr != nil {
				if err != nil {
					err = fmt.Errorf("%w; local-cloud copy also failed: %v", upErr, err)
				} else {
					err = upErr
				}
			}
		}
		results = append(results, MirrorResult{Path: path, Err: err})
	}
	return results
}

func (m *Mirrorer) upload(ctx context.Context, path string) error {
	cctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s for mirror: %w", path, err)
	}
	defer f.Close()

	key := m.cfg.Prefix + "/" + filepath.Base(path)
	_, err = m.uploader.Upload(cctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("uploading %s to mirror bucket: %w", path, err)
	}
	return nil
}

func copyToLocalCloud(src, destDir string) error {
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(destDir, filepath.Base(src)))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
