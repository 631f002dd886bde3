// Package logging builds the daemon's slog logger from configuration.
package logging

import (
	"log/slog"
	"os"

	"github.com/tycoonsim/tycoon-go/internal/infrastructure/config"
)

// NewLogger creates a slog.Logger per the logging configuration.
func NewLogger(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	output := os.Stdout
	if cfg.Output == "stderr" {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}
