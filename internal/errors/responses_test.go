package errors

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/logging"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

func TestMapQueryErrorSecure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid page request",
			err:        apperrors.InvalidPageRequest("size must be greater than 0, got 0"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeInvalidPageParams,
		},
		{
			name:       "query failure",
			err:        apperrors.QueryExecutionFailure("find", stderrors.New("syntax error at or near")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrCodeQueryExecutionFailed,
		},
		{
			name:       "query timeout",
			err:        apperrors.QueryExecutionFailure("count", context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.ErrCodeConnectionFailed,
		},
		{
			name:       "connection exception",
			err:        apperrors.QueryExecutionFailure("count", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.ErrCodeConnectionFailed,
		},
		{
			name:       "admin shutdown",
			err:        apperrors.QueryExecutionFailure("find", &pgconn.PgError{Code: pgerrcode.AdminShutdown}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.ErrCodeConnectionFailed,
		},
		{
			name:       "mapping failure",
			err:        apperrors.MappingFailure(3, stderrors.New("user has no id")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrCodeMappingFailed,
		},
		{
			name:       "user not found",
			err:        fmt.Errorf("get user: %w", apperrors.ErrUserNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.ErrCodeUserNotFound,
		},
		{
			name:       "username taken",
			err:        fmt.Errorf("create user: %w", apperrors.ErrUserAlreadyExists),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.ErrCodeUserAlreadyExists,
		},
		{
			name:       "missing company",
			err:        apperrors.ErrCompanyNotFound,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeCompanyNotFound,
		},
		{
			name:       "user error passes through",
			err:        apperrors.NewUserValidationError(apperrors.ErrCodeRoleInvalid, "Role must be one of: USER, ADMIN"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeRoleInvalid,
		},
		{
			name:       "raw constraint violation",
			err:        &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "users_role_check"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeValidationFailed,
		},
		{
			name:       "unknown",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapQueryErrorSecure(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}

	assert.Nil(t, MapQueryErrorSecure(nil))
}

func TestMapQueryErrorSecure_PageRequestDetails(t *testing.T) {
	got := MapQueryErrorSecure(apperrors.InvalidPageRequest("page %d is out of range", -1))
	require.NotNil(t, got)
	assert.Equal(t, "Invalid page request", got.Message)
	assert.Equal(t, "page -1 is out of range", got.Details)
}

func TestWriter_WriteErrorHidesCause(t *testing.T) {
	var buf bytes.Buffer
	ew := NewWriter(logging.NewLogger(&buf, "debug", "json", "test", "dev"))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "req-42")

	cause := stderrors.New(`relation "users" does not exist`)
	ew.WriteError(w, req, apperrors.QueryExecutionFailure("find", cause))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, resp.Code)
	assert.Equal(t, "Query execution failed", resp.Error)
	assert.Empty(t, resp.Details)

	// the cause goes to the log, tagged with the request ID
	assert.Contains(t, buf.String(), "req-42")
	assert.Contains(t, buf.String(), "does not exist")
}

func TestWriter_WriteErrorPageRequest(t *testing.T) {
	ew := NewWriter(nil)
	req := httptest.NewRequest(http.MethodGet, "/users?size=0", nil)
	w := httptest.NewRecorder()

	ew.WriteError(w, req, apperrors.InvalidPageRequest("size must be greater than 0, got 0"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"error":"Invalid page request","code":"INVALID_PAGE_REQUEST","details":"size must be greater than 0, got 0"}`,
		w.Body.String())
}

func TestWriter_Envelopes(t *testing.T) {
	ew := NewWriter(nil)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{
			name:  "validation",
			write: func(w http.ResponseWriter) {
				ew.WriteValidationError(w, req, "USER_FILTER_INVALID", "birthDate must be YYYY-MM-DD")
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"birthDate must be YYYY-MM-DD","code":"USER_FILTER_INVALID"}`,
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter) { ew.WriteNotFoundError(w, req, "") },
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Resource not found","code":"NOT_FOUND"}`,
		},
		{
			name:       "method not allowed",
			write:      func(w http.ResponseWriter) { ew.WriteMethodNotAllowed(w, req) },
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method not allowed","code":"METHOD_NOT_ALLOWED"}`,
		},
		{
			name:       "rate limit",
			write:      func(w http.ResponseWriter) { ew.WriteRateLimitError(w, req) },
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"Too many requests","code":"RATE_LIMIT_EXCEEDED"}`,
		},
		{
			name:       "internal",
			write:      func(w http.ResponseWriter) { ew.WriteInternalError(w, req) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error","code":"INTERNAL_ERROR"}`,
		},
		{
			name:       "security",
			write:      func(w http.ResponseWriter) { ew.WriteSecurityError(w, req, "UNICODE_SECURITY_VIOLATION") },
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid input characters detected","code":"UNICODE_SECURITY_VIOLATION"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		})
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"size must be greater than 0, got 0", "size must be greater than 0, got 0"},
		{"internal server failure", "Validation failed"},
		{"pg_catalog is broken", "Validation failed"},
		{"bad SQL near ORDER", "Validation failed"},
		{"path /etc/passwd", "path _etc_passwd"},
		{strings.Repeat("a", 201), "Validation failed with invalid input"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeErrorMessage(tt.in), tt.in)
	}
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(context.Canceled))
	assert.True(t, isConnectionError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, isConnectionError(&pgconn.PgError{Code: pgerrcode.TooManyConnections}))
	assert.False(t, isConnectionError(&pgconn.PgError{Code: pgerrcode.UndefinedTable}))
	assert.False(t, isConnectionError(stderrors.New("plain")))
	assert.False(t, isConnectionError(nil))
}
