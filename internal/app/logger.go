package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger based on configuration.
// The interactive UI owns stdout, so log output goes to stderr.
func NewLogger(cfg *Config) *slog.Logger {
	return NewLoggerTo(cfg, os.Stderr)
}

// NewLoggerTo writes log output to the given writer.
func NewLoggerTo(cfg *Config, w io.Writer) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
