package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"
)

const defaultPollInterval = 30 * time.Second

// newPollWatcher implements the §4.3 polling fallback: every poll
// interval, walk the tree looking for anything newer than the last scan's
// marker time, and emit one Change Event if anything was found.
func newPollWatcher(ctx context.Context, opts Options) *Watcher {
	interval := defaultPollInterval
	if opts.PollInterval > 0 {
		interval = time.Duration(opts.PollInterval) * time.Second
	}

	events := make(chan Event, 8)
	errs := make(chan error, 8)
	done := make(chan struct{})

	go func() {
		marker := time.Now()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Startup race: emit the initial synthetic event immediately,
		// same as the native backend.
		events <- Event{}

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				next := time.Now()
				found, err := anyNewerThan(opts.Root, marker, opts.Excludes)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				if found {
					select {
					case events <- Event{}:
					default:
					}
				}
				marker = next
			}
		}
	}()

	return &Watcher{
		Backend: BackendPolling,
		events:  events,
		errs:    errs,
		close: func() error {
			close(done)
			return nil
		},
	}
}

func anyNewerThan(root string, marker time.Time, excludes *ExcludeSet) (bool, error) {
	found := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if excludes != nil && excludes.Match(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if found {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(marker) {
			found = true
		}
		return nil
	})
	return found, err
}
