package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apierrors "github.com/chybatronik/goUserFilter/internal/errors"
	"github.com/chybatronik/goUserFilter/internal/logging"
)

// ErrorHandler recovers handler panics and answers them with the unified
// error envelope
type ErrorHandler struct {
	next   http.Handler
	logger *logging.Logger
	errors *apierrors.Writer
}

// NewErrorHandler creates a new error handler middleware
func NewErrorHandler(logger *logging.Logger, ew *apierrors.Writer, next http.Handler) *ErrorHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	if ew == nil {
		ew = apierrors.NewWriter(logger)
	}
	return &ErrorHandler{
		next:   next,
		logger: logger,
		errors: ew,
	}
}

// Recoverer adapts ErrorHandler to router middleware
func Recoverer(logger *logging.Logger, ew *apierrors.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return NewErrorHandler(logger, ew, next)
	}
}

// ServeHTTP implements the http.Handler interface with panic recovery
func (eh *ErrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wrapped := NewResponseWriter(w)

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}

		eh.logger.WithRequestID(GetRequestID(r.Context())).Error("panic recovered",
			logging.FieldError, fmt.Sprint(rec),
			logging.FieldHTTPMethod, r.Method,
			logging.FieldHTTPPath, r.URL.Path,
			"stack", string(debug.Stack()),
		)

		if wrapped.HeaderWritten() {
			// the status line is gone; nothing consistent can be sent
			return
		}
		eh.errors.WriteInternalError(w, r)
	}()

	eh.next.ServeHTTP(wrapped, r)
}
