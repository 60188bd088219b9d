// Package logging provides structured logging for the storage core.
//
// It wraps log/slog to give every component (volume, storage,
// sequencer, cache) a consistently-tagged logger, with either text or
// JSON output.
//
// Usage:
//
//	logging.Init(slog.LevelInfo, false)
//	log := logging.Component("storage")
//	log.Info("volume opened", "index", ix)
package logging

import (
	"log/slog"
	"os"
)

// Logger is the global logger instance.
var Logger *slog.Logger

// Init initializes the global logger with the given level and format.
func Init(level slog.Level, jsonFormat bool) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// InitWithHandler installs a custom handler, useful for tests that
// want to capture output.
func InitWithHandler(handler slog.Handler) {
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// Component returns a logger tagged with the given component name.
func Component(name string) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, false)
	}

	return Logger.With("component", name)
}
