// Package logging provides structured logging functionality using log/slog
package logging

import (
	"io"
	"log/slog"
	"time"
)

// Slow query thresholds
const (
	SlowQueryWarning  = 100 * time.Millisecond
	SlowQueryCritical = 180 * time.Millisecond
)

// Logger wraps slog.Logger with additional application-specific functionality
type Logger struct {
	*slog.Logger
	service string
	version string
}

// NewLogger creates a logger writing to w in the given format (json or text)
func NewLogger(w io.Writer, level, format, service, version string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger:  slog.New(handler),
		service: service,
		version: version,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{
		Logger:  l.Logger.With(args...),
		service: l.service,
		version: l.version,
	}
}

// WithRequestID adds request ID to the logger
func (l *Logger) WithRequestID(reqID string) *Logger {
	return l.with(slog.String(FieldRequestID, reqID))
}

// WithHTTPRequest adds HTTP request context to the logger
func (l *Logger) WithHTTPRequest(method, path string, statusCode int, latencyMs int64) *Logger {
	return l.with(
		slog.String(FieldHTTPMethod, method),
		slog.String(FieldHTTPPath, path),
		slog.Int(FieldHTTPStatus, statusCode),
		slog.Int64(FieldLatencyMs, latencyMs),
	)
}

// WithError adds error context to the logger
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with(slog.String(FieldError, err.Error()))
}

// WithComponent tags every entry with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(slog.String(FieldComponent, name))
}

// WithServiceContext adds service context to the logger
func (l *Logger) WithServiceContext() *Logger {
	return l.with(
		slog.String(FieldService, l.service),
		slog.String(FieldVersion, l.version),
	)
}

// Startup logs application startup information
func (l *Logger) Startup(msg string, args ...any) {
	l.WithServiceContext().Info(msg, args...)
}

// Request logs HTTP request completion
func (l *Logger) Request(reqID, method, path string, statusCode int, latencyMs int64) {
	l.WithRequestID(reqID).
		WithHTTPRequest(method, path, statusCode, latencyMs).
		Info("HTTP request completed")
}

// Database logs database-related operations
func (l *Logger) Database(msg string, args ...any) {
	l.Logger.Info("database: "+msg, args...)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(msg string, err error) {
	l.WithError(err).Error("database: " + msg)
}

// Query logs a finished query pass. Durations over SlowQueryWarning are
// logged as warnings, over SlowQueryCritical as errors.
func (l *Logger) Query(operation string, duration time.Duration, args ...any) {
	attrs := append([]any{
		slog.String(FieldOperation, operation),
		slog.Int64(FieldDurationMs, duration.Milliseconds()),
	}, args...)

	switch {
	case duration > SlowQueryCritical:
		l.Logger.Error("query: critical slow query", attrs...)
	case duration > SlowQueryWarning:
		l.Logger.Warn("query: slow query", attrs...)
	default:
		l.Logger.Debug("query: completed", attrs...)
	}
}

// QueryError logs a failed query pass
func (l *Logger) QueryError(operation string, err error, args ...any) {
	l.WithError(err).Error("query: "+operation+" failed", args...)
}

// HealthCheck logs health check operations
func (l *Logger) HealthCheck(msg string, args ...any) {
	l.Logger.Info("healthcheck: "+msg, args...)
}
