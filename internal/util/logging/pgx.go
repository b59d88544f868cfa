package logging

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/tracelog"
)

// pgxLogLevels maps [tracelog.LogLevel] to the [slog.Level] it is reported
// under.
var pgxLogLevels = map[tracelog.LogLevel]slog.Level{
	tracelog.LogLevelTrace: slog.LevelDebug - 1,
	tracelog.LogLevelDebug: slog.LevelDebug,
	tracelog.LogLevelInfo:  slog.LevelInfo,
	tracelog.LogLevelWarn:  slog.LevelWarn,
	tracelog.LogLevelError: slog.LevelError,
	tracelog.LogLevelNone:  LevelDPanic,
}

// pgxLogger adapts a [*slog.Logger] to [tracelog.Logger], so pgx's query
// and connection tracing flows through the same structured logger as the
// rest of the process.
type pgxLogger struct {
	l *slog.Logger
}

// NewPgxLogger returns a [tracelog.Logger] that logs through l.
func NewPgxLogger(l *slog.Logger) tracelog.Logger {
	return &pgxLogger{l: l}
}

// Log implements [tracelog.Logger].
func (pl *pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	lvl, ok := pgxLogLevels[level]
	if !ok {
		lvl = slog.LevelError
	}

	attrs := make([]slog.Attr, 0, len(data))
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}

	pl.l.LogAttrs(ctx, lvl, msg, attrs...)
}
