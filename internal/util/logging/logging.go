// Package logging configures the structured logger used across the runner
// and its supporting services, and provides a small set of slog helpers
// that are used the same way everywhere the runner logs.
package logging

import (
	"log/slog"
	"os"
)

// Custom levels above slog.LevelError.
//
// LevelDPanic marks a condition that should never happen — a broken
// contract between the runner and one of its collaborators. It does not
// panic in production builds; it is a logging-only signal that something
// needs investigation.
//
// LevelFatal marks a condition that is about to crash the process.
const (
	LevelDPanic = slog.Level(slog.LevelError + 1)
	LevelFatal  = slog.Level(slog.LevelError + 4)
)

var levelNames = map[slog.Leveler]string{
	LevelDPanic: "DPANIC",
	LevelFatal:  "FATAL",
}

// Setup installs a process-wide default [slog.Logger] at the given level,
// writing JSON records to stderr. It is typically called once, from main.
func Setup(level slog.Level, name string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[lvl]; ok {
						a.Value = slog.StringValue(name)
					}
				}
			}

			return a
		},
	})

	l := slog.New(h)
	if name != "" {
		l = WithName(l, name)
	}

	slog.SetDefault(l)

	return l
}

// WithName returns a child logger tagged with a "component" attribute,
// following the convention used throughout this module for naming
// sub-loggers (e.g. "pgx", "dispatcher", "refengine").
func WithName(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// Error returns a [slog.Attr] for an error value, under the conventional
// "error" key.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
