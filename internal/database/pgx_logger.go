package database

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/chybatronik/goUserFilter/internal/logging"
)

// PgxLogger adapts the service logger to pgx's tracelog interface
type PgxLogger struct {
	logger *logging.Logger
}

// NewPgxLogger scopes logger to the pgx component
func NewPgxLogger(logger *logging.Logger) *PgxLogger {
	return &PgxLogger{logger: logger.WithComponent("pgx")}
}

// Log implements tracelog.Logger
func (l *PgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}

	attrs := make([]slog.Attr, 0, len(data)+1)
	if sql, ok := data["sql"]; ok {
		attrs = append(attrs, slog.Any(logging.FieldSQL, sql))
		delete(data, "sql")
	}
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}

	var slogLevel slog.Level
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		slogLevel = slog.LevelDebug
	case tracelog.LogLevelInfo:
		slogLevel = slog.LevelInfo
	case tracelog.LogLevelWarn:
		slogLevel = slog.LevelWarn
	case tracelog.LogLevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
		attrs = append(attrs, slog.String("pgx_log_level", level.String()))
	}

	l.logger.LogAttrs(ctx, slogLevel, "pgx: "+msg, attrs...)
}

// TraceLevel maps a config log level to the pgx trace level
func TraceLevel(level string) tracelog.LogLevel {
	switch level {
	case logging.LevelDebug:
		return tracelog.LogLevelDebug
	case logging.LevelWarn:
		return tracelog.LogLevelWarn
	case logging.LevelError:
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelInfo
	}
}
