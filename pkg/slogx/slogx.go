package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls how the process logger is built. Zero values mean JSON
// output to stdout at info level.
type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "prod"
	Level   string // e.g. "debug", "info", "warn", "error"
	Format  string // e.g. "json", "text"

	// Output overrides the destination; nil means os.Stdout.
	Output io.Writer
}

// New builds the process logger and installs it as the slog default. Dev
// environments get text output with source locations at debug level unless
// the config says otherwise; everything else logs JSON for ingestion.
func New(cfg Config) *slog.Logger {
	dev := cfg.Env == "dev"

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		AddSource: dev,
		Level:     parseLevel(cfg.Level, dev),
	}

	format := strings.ToLower(cfg.Format)
	if format == "" && dev {
		format = "text"
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	attrs := []any{
		slog.String("service", cfg.Service),
		slog.String("env", cfg.Env),
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}

	logger := slog.New(handler).With(attrs...)
	slog.SetDefault(logger)
	return logger
}

// parseLevel maps the configured level name; an unset level means debug in
// dev and info everywhere else.
func parseLevel(lvl string, dev bool) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if dev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
