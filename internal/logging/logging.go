package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"

	"github.com/propdesk/propdesk/config"
)

// New builds the application logger: tint (or JSON) on stdout, plus Fluent Bit
// when enabled. The returned close func flushes the fluent client.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	level := ParseLevel(cfg.Level)
	handlers := []slog.Handler{stdoutHandler(os.Stdout, level, cfg.JSON)}

	closeFn := func() error { return nil }
	if cfg.FluentEnabled {
		client, err := fluent.New(fluent.Config{
			FluentHost: cfg.FluentHost,
			FluentPort: cfg.FluentPort,
			TagPrefix:  cfg.AppName,
			Async:      true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create fluent client: %w", err)
		}
		handlers = append(handlers, NewFluentHandler(client, level))
		closeFn = client.Close
	}

	logger := slog.New(fanout(handlers)).With("service_name", cfg.AppName)
	return logger, closeFn, nil
}

func stdoutHandler(w io.Writer, level slog.Level, asJSON bool) slog.Handler {
	if asJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger for tests and tools that must stay quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
