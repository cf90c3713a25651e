// Package xlog configures the stdlib log/slog default logger for the
// streamson module. Every package pulls a component-scoped child logger via
// For; nothing in this module logs to the global logger directly.
package xlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog default logger at the given level and
// format ("json" for structured output, anything else for text). All output
// goes to os.Stderr, keeping any byte stream a caller reads from stdout
// clean.
//
// Safe to call multiple times; each call replaces the previous logger.
func Setup(level slog.Level, format string) {
	SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit writer, primarily for tests that
// want to capture log output in a buffer.
func SetupWithWriter(level slog.Level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// For returns a child logger derived from the global default logger with a
// "component" attribute set to name, so log output can be filtered by
// subsystem (e.g. "streamer", "matcher", "strategy").
func For(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
