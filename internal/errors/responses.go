package errors

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chybatronik/goUserFilter/internal/logging"
)

// RequestIDHeader carries the request ID set by the request ID middleware
const RequestIDHeader = "X-Request-ID"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Writer writes error envelopes and logs them with the request ID
type Writer struct {
	logger *logging.Logger
}

// NewWriter creates an error writer; a nil logger discards
func NewWriter(logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{logger: logger.WithComponent("http")}
}

// WriteError maps err with MapQueryErrorSecure and writes it. The cause is
// logged, never sent.
func (ew *Writer) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	userErr := MapQueryErrorSecure(err)
	if userErr == nil {
		return
	}

	log := ew.requestLogger(w).WithError(err)
	if userErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed", "code", userErr.Code, logging.FieldHTTPPath, r.URL.Path)
	} else {
		log.Debug("request rejected", "code", userErr.Code, logging.FieldHTTPPath, r.URL.Path)
	}

	ew.write(w, r, userErr.HTTPStatus, ErrorResponse{
		Error:   userErr.Message,
		Code:    userErr.Code,
		Details: sanitizeErrorMessage(userErr.Details),
	})
}

// WriteValidationError writes a validation error response (400 Bad Request)
func (ew *Writer) WriteValidationError(w http.ResponseWriter, r *http.Request, code, message string) {
	ew.write(w, r, http.StatusBadRequest, ErrorResponse{
		Error: sanitizeErrorMessage(message),
		Code:  code,
	})
}

// WriteNotFoundError writes a not found error response (404 Not Found)
func (ew *Writer) WriteNotFoundError(w http.ResponseWriter, r *http.Request, resource string) {
	message := "Resource not found"
	if resource != "" {
		message = resource + " not found"
	}
	ew.write(w, r, http.StatusNotFound, ErrorResponse{Error: message, Code: "NOT_FOUND"})
}

// WriteMethodNotAllowed writes a 405 response
func (ew *Writer) WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ew.write(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
}

// WriteRateLimitError writes a rate limit error response (429 Too Many Requests)
func (ew *Writer) WriteRateLimitError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	ew.write(w, r, http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests", Code: "RATE_LIMIT_EXCEEDED"})
}

// WriteInternalError writes an internal server error response (500 Internal Server Error)
func (ew *Writer) WriteInternalError(w http.ResponseWriter, r *http.Request) {
	ew.write(w, r, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: "INTERNAL_ERROR"})
}

// WriteSecurityError writes a security-related error response
func (ew *Writer) WriteSecurityError(w http.ResponseWriter, r *http.Request, securityCode string) {
	securityMessages := map[string]string{
		"INVALID_UNICODE":            "Invalid input characters detected",
		"UNICODE_SECURITY_VIOLATION": "Invalid input characters detected",
		"VALIDATION_ERROR":           "Invalid input provided",
		"SECURITY_VIOLATION":         "Security validation failed",
		"BLOCKED_REQUEST":            "Request blocked for security reasons",
	}

	message := securityMessages[securityCode]
	if message == "" {
		message = "Security validation failed"
	}

	ew.requestLogger(w).Warn("security validation failed", "code", securityCode, logging.FieldHTTPPath, r.URL.Path)
	ew.write(w, r, http.StatusBadRequest, ErrorResponse{Error: message, Code: securityCode})
}

func (ew *Writer) requestLogger(w http.ResponseWriter) *logging.Logger {
	if reqID := w.Header().Get(RequestIDHeader); reqID != "" {
		return ew.logger.WithRequestID(reqID)
	}
	return ew.logger
}

// write sets the security headers and encodes the envelope
func (ew *Writer) write(w http.ResponseWriter, r *http.Request, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		ew.requestLogger(w).WithError(err).Warn("failed to encode error response", logging.FieldHTTPPath, r.URL.Path)
	}
}

// sanitizeErrorMessage removes potentially dangerous information from error messages
func sanitizeErrorMessage(message string) string {
	if message == "" {
		return ""
	}

	lower := strings.ToLower(message)
	dangerousTerms := []string{
		"internal", "system", "database", "server", "stack trace",
		"panic", "fatal", "exception", "error code", "sql",
		"file:", "at line", "in function", "pg_",
	}
	for _, term := range dangerousTerms {
		if strings.Contains(lower, term) {
			return "Validation failed"
		}
	}

	// Remove potential file paths
	message = strings.ReplaceAll(message, "/", "_")

	// Limit message length to prevent information leakage
	if len(message) > 200 {
		return "Validation failed with invalid input"
	}

	return strings.TrimSpace(message)
}
