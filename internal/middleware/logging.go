package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chybatronik/goUserFilter/internal/logging"
)

// LoggingMiddleware logs HTTP requests using structured logging
type LoggingMiddleware struct {
	next   http.Handler
	logger *logging.Logger
}

// NewLoggingMiddleware creates a new structured logging middleware
func NewLoggingMiddleware(logger *logging.Logger, next http.Handler) *LoggingMiddleware {
	return &LoggingMiddleware{
		next:   next,
		logger: logger,
	}
}

// RequestLogger adapts LoggingMiddleware to router middleware
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return NewLoggingMiddleware(logger, next)
	}
}

// ServeHTTP implements the http.Handler interface with structured logging
func (lm *LoggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	wrapped := NewResponseWriter(w)

	lm.next.ServeHTTP(wrapped, r)

	// chi fills the route pattern while routing; fall back to the raw path
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		path = rctx.RoutePattern()
	}

	lm.logger.Request(
		GetRequestID(r.Context()),
		r.Method,
		path,
		wrapped.StatusCode(),
		time.Since(start).Milliseconds(),
	)
}
