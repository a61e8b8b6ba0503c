// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects level, format and an optional log file.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	File   string // also write JSON lines here when set
}

// ParseLevel maps a level name to a slog.Level. Unknown names are an error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a logger writing to w and, if opts.File is set, to that file.
// The returned closer releases the file and is never nil.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	ho := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handlers = append(handlers, slog.NewTextHandler(w, ho))
	case "json":
		handlers = append(handlers, slog.NewJSONHandler(w, ho))
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, ho))
		closer = f
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}
	return slog.New(handler), closer, nil
}

// Init builds a stderr logger and installs it as slog's default.
func Init(opts Options) (io.Closer, error) {
	log, closer, err := New(os.Stderr, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
