// Package fuzzlog is the logging collaborator (§6, §9). It wraps log/slog
// with a colorized, worker-tagged line handler and the dated-log-file +
// `fuzzer.log` symlink scheme from the original project's
// FuzzerLogger/CustomFormatter (original_source/.../types.py).
package fuzzlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// levelColor mirrors CustomFormatter.level_color.
var levelColor = map[slog.Level]string{
	slog.LevelDebug: "\x1b[37;11m",
	slog.LevelInfo:  "\x1b[96;11m",
	slog.LevelWarn:  "\x1b[33;11m",
	slog.LevelError: "\x1b[31;21m",
}

const colorReset = "\x1b[0m"

// handler renders "LEVEL [worker] message key=value ..." lines, colorized
// when writing to a terminal-like writer and plain otherwise (the file
// handler), matching CustomFormatter's two code paths.
type handler struct {
	out     io.Writer
	level   slog.Level
	color   bool
	workers map[string]string // attrs captured via WithAttrs, incl. "worker"
}

func newHandler(out io.Writer, level slog.Level, color bool) *handler {
	return &handler{out: out, level: level, color: color, workers: map[string]string{}}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	levelStr := r.Level.String()
	if h.color {
		if c, ok := levelColor[r.Level]; ok {
			levelStr = c + levelStr + colorReset
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s", r.Time.Format("15:04:05"), levelStr)
	if worker, ok := h.workers["worker"]; ok && worker != "" {
		fmt.Fprintf(&b, " [%s]", worker)
	}
	fmt.Fprintf(&b, " %s", r.Message)

	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &handler{out: h.out, level: h.level, color: h.color, workers: map[string]string{}}
	for k, v := range h.workers {
		next.workers[k] = v
	}
	for _, a := range attrs {
		next.workers[a.Key] = a.Value.String()
	}
	return next
}

func (h *handler) WithGroup(_ string) slog.Handler { return h }

// TraceLevel is one notch below slog.LevelDebug, matching the original's
// custom TRACE level below DEBUG.
const TraceLevel = slog.LevelDebug - 5

// LevelForVerbosity maps a `-v` repeat count onto a slog.Level, mirroring
// FuzzerLogger.init_logging's levels table (ERROR, WARNING, INFO, DEBUG,
// TRACE).
func LevelForVerbosity(verbose int) slog.Level {
	levels := []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug, TraceLevel}
	if verbose < 0 {
		verbose = 0
	}
	if verbose >= len(levels) {
		verbose = len(levels) - 1
	}
	return levels[verbose]
}

// InitFileHandler creates ./log/, opens a dated log file, and re-points
// ./fuzzer.log at it: any existing fuzzer.log is removed (a missing one is
// fine), then a new symlink is created. The two steps are not atomic; if
// fuzzer.log reappears between them, the symlink call fails and its error
// is returned.
func InitFileHandler() (*os.File, error) {
	if err := os.MkdirAll("./log", 0o755); err != nil {
		return nil, fmt.Errorf("fuzzlog: creating log dir: %w", err)
	}

	now := time.Now()
	filename := filepath.Join("log", fmt.Sprintf("fluxfuzzer_%d-%d_%02d:%02d.log", now.Day(), now.Month(), now.Hour(), now.Minute()))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("fuzzlog: creating log file: %w", err)
	}

	symlinkPath := "fuzzer.log"
	if err := os.Remove(symlinkPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("fuzzlog: removing stale symlink: %w", err)
	}
	if err := os.Symlink(filename, symlinkPath); err != nil {
		return nil, fmt.Errorf("fuzzlog: creating symlink: %w", err)
	}

	return f, nil
}

// New builds the root logger: file output always at TraceLevel (everything
// goes to disk), console output gated by verbose's mapped level.
func New(file *os.File, verbose int) *slog.Logger {
	consoleLevel := LevelForVerbosity(verbose)

	fh := newHandler(file, TraceLevel, false)
	ch := newHandler(os.Stderr, consoleLevel, true)

	return slog.New(teeHandler{fh, ch})
}

// ForWorker returns a logger tagged with the given worker id, the
// equivalent of the original's get_logger(name, worker_id).
func ForWorker(logger *slog.Logger, workerID string) *slog.Logger {
	return logger.With("worker", workerID)
}

// teeHandler fans out to both the file and console handlers.
type teeHandler struct {
	file, console *handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.file.Enabled(ctx, level) || t.console.Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if t.file.Enabled(ctx, r.Level) {
		if err := t.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	if t.console.Enabled(ctx, r.Level) {
		return t.console.Handle(ctx, r)
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{t.file.WithAttrs(attrs).(*handler), t.console.WithAttrs(attrs).(*handler)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{t.file.WithGroup(name).(*handler), t.console.WithGroup(name).(*handler)}
}
