package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// levelRouter is a slog.Handler that writes every enabled record to the log
// file (if any) and only WARN and above to the console, keeping command output
// on stdout clean.
type levelRouter struct {
	console slog.Handler
	file    slog.Handler
	min     slog.Level
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	if lr.file != nil {
		return level >= lr.min
	}
	return level >= max(lr.min, slog.LevelWarn)
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if lr.file != nil && r.Level >= lr.min {
		if err := lr.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	if r.Level >= max(lr.min, slog.LevelWarn) {
		return lr.console.Handle(ctx, r)
	}
	return nil
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &levelRouter{console: lr.console.WithAttrs(attrs), min: lr.min}
	if lr.file != nil {
		next.file = lr.file.WithAttrs(attrs)
	}
	return next
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	next := &levelRouter{console: lr.console.WithGroup(name), min: lr.min}
	if lr.file != nil {
		next.file = lr.file.WithGroup(name)
	}
	return next
}

// setupLogger configures structured logging. WARN and ERROR go to stderr; if
// logPath is non-empty, every record at or above level is also appended to
// that file. Returns a cleanup function that closes the log file (if opened).
func setupLogger(stderr io.Writer, level slog.Level, logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	handler := &levelRouter{
		console: slog.NewTextHandler(stderr, opts),
		min:     level,
	}

	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		handler.file = slog.NewTextHandler(f, opts)
	}

	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}
