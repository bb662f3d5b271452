package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// newNativeWatcher recursively adds every non-excluded directory under
// opts.Root to an fsnotify.Watcher, mirroring the teacher's
// cmd/bd/daemon_watcher.go recursive-add-at-start pattern. On Linux,
// fsnotify delivers per-syscall Write events; §4.3 says modify-per-write
// is deliberately not subscribed, so the event loop below drops events
// whose only op is fsnotify.Write and forwards every other op (Create,
// Remove, Rename, Chmod).
func newNativeWatcher(ctx context.Context, opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if opts.Excludes != nil && opts.Excludes.Match(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return nil, err
	}

	events := make(chan Event, 64)
	errs := make(chan error, 8)

	go func() {
		// Startup race (§4.3): emit one synthetic event once the
		// recursive subscription above has completed.
		events <- Event{}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Write {
					continue
				}
				if opts.Excludes != nil && opts.Excludes.Match(ev.Name) {
					continue
				}
				if ev.Op&fsnotify.Create != 0 {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						_ = tryAddDir(fw, ev.Name, opts.Excludes)
					}
				}
				select {
				case events <- Event{}:
				default:
				}
			case werr, ok := <-fw.Errors:
				if !ok {
					return
				}
				select {
				case errs <- werr:
				default:
				}
			}
		}
	}()

	return &Watcher{
		Backend: BackendNative,
		events:  events,
		errs:    errs,
		close:   fw.Close,
	}, nil
}

// tryAddDir adds a newly created directory to the watch set so nested
// trees created after startup are still covered.
func tryAddDir(fw *fsnotify.Watcher, path string, excludes *ExcludeSet) error {
	if excludes != nil && excludes.Match(path) {
		return nil
	}
	return fw.Add(path)
}
