// Package checklog provides the structured, rotated logger used by every
// long-running Checkpoint component. Components never import zerolog
// directly; they depend on the narrow Logger interface below, the same
// shape the teacher's daemon code uses for its own log.log(format, args...)
// calls.
package checklog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the narrow interface every watcher, debouncer, executor, DB
// pipeline, scheduler, and watchdog instance takes. It intentionally has no
// notion of levels beyond a binary info/error split, mirroring the
// teacher's "daemonLogger" convention of a single .log() entry point used
// everywhere, plus an explicit Error for cases that should be flagged
// louder (logged at error level).
type Logger interface {
	Log(format string, args ...any)
	Error(err error, format string, args ...any)
	With(fields map[string]any) Logger
}

// MaxSizeMB is the default log rotation threshold (§5 Rotation default 10MB).
const MaxSizeMB = 10

// MaxBackups caps retained rotated files at .1..5 per §6's state directory layout.
const MaxBackups = 5

type zlogger struct {
	z zerolog.Logger
}

// New builds a Logger writing JSON lines to path, rotated via lumberjack
// once it exceeds maxSizeMB (size-bounded per §5). An empty path logs to
// stderr only, used for CLI commands that don't want a file under them.
func New(path string, maxSizeMB int) Logger {
	var w io.Writer = os.Stderr
	if path != "" {
		if maxSizeMB <= 0 {
			maxSizeMB = MaxSizeMB
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: MaxBackups,
			Compress:   false,
		}
		w = io.MultiWriter(lj, os.Stderr)
	}
	z := zerolog.New(w).With().Timestamp().Logger()
	return &zlogger{z: z}
}

func (l *zlogger) Log(format string, args ...any) {
	l.z.Info().Msg(fmt.Sprintf(format, args...))
}

func (l *zlogger) Error(err error, format string, args ...any) {
	l.z.Error().Err(err).Msg(fmt.Sprintf(format, args...))
}

func (l *zlogger) With(fields map[string]any) Logger {
	ctx := l.z.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &zlogger{z: ctx.Logger()}
}

// Memory is an in-memory Logger used in tests that want to assert on
// emitted lines without touching the filesystem.
type Memory struct {
	mu    sync.Mutex
	Lines []string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Log(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines = append(m.Lines, fmt.Sprintf(format, args...))
}

func (m *Memory) Error(err error, format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines = append(m.Lines, fmt.Sprintf("ERROR: %s: %v", fmt.Sprintf(format, args...), err))
}

func (m *Memory) With(map[string]any) Logger { return m }

func (m *Memory) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Lines))
	copy(out, m.Lines)
	return out
}

// RotateIfNeeded is a startup hook: if path already exceeds maxSizeMB it
// rotates immediately rather than waiting for the next write, covering S8
// ("agent starts with an oversize log already on disk").
func RotateIfNeeded(path string, maxSizeMB int) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if maxSizeMB <= 0 {
		maxSizeMB = MaxSizeMB
	}
	if info.Size() < int64(maxSizeMB)*1024*1024 {
		return nil
	}
	lj := &lumberjack.Logger{Filename: path, MaxSize: maxSizeMB, MaxBackups: MaxBackups}
	return lj.Rotate()
}

// StartupTimestamp exists so call sites can stamp a "started at" line
// without reaching for time.Now() in more than one place.
func StartupTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
