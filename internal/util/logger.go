// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package util

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnv enables debug logging when set to any value.
const DebugEnv = "PYSKETCH_DEBUG"

var Logger = slog.New(slog.DiscardHandler)

// InitLogger initializes the global logger with appropriate log level.
// Set PYSKETCH_DEBUG=1 (or pass debug=true) to enable debug logging.
func InitLogger(debug bool) {
	InitLoggerTo(os.Stderr, debug)
}

// InitLoggerTo is InitLogger with an explicit destination. Stdout belongs
// to the sketch, so the launcher logs to stderr.
func InitLoggerTo(w io.Writer, debug bool) {
	level := slog.LevelInfo // Default: only show Info, Warn, Error

	// Check for debug mode
	if debug || os.Getenv(DebugEnv) != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		// Remove timestamp for cleaner CLI output
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// Debug logs a debug message (only shown when PYSKETCH_DEBUG is set)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
