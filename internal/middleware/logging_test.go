package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "info", "json", "test-service", "1.0.0")

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware, RequestLogger(logger))
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTeapot, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "HTTP request completed", entry["msg"])
	assert.Equal(t, "req-abc", entry[logging.FieldRequestID])
	assert.Equal(t, http.MethodGet, entry[logging.FieldHTTPMethod])
	assert.Equal(t, "/users/{id}", entry[logging.FieldHTTPPath])
	assert.EqualValues(t, http.StatusTeapot, entry[logging.FieldHTTPStatus])
}

func TestLoggingMiddleware_WithoutRouter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "info", "json", "test-service", "1.0.0")

	handler := NewLoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("success"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw/path", nil))

	assert.Equal(t, "success", w.Body.String())
	assert.Contains(t, buf.String(), `"path":"/raw/path"`)
	assert.Contains(t, buf.String(), `"status":200`)
}
