package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequestID(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, ids[id], "duplicate request ID %s", id)
		ids[id] = true
	}
}

func TestGetSetRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	withID := SetRequestID(ctx, "test-req-456")
	assert.Equal(t, "test-req-456", GetRequestID(withID))
	assert.Empty(t, GetRequestID(ctx), "original context must be unchanged")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		header   string
		wantKeep bool
	}{
		{name: "missing", header: "", wantKeep: false},
		{name: "well formed", header: "existing-req-123", wantKeep: true},
		{name: "uuid", header: "1b4e28ba-2fa1-11d2-883f-0016d3cca427", wantKeep: true},
		{name: "header injection", header: "abc\r\nSet-Cookie: x=1", wantKeep: false},
		{name: "spaces", header: "req id", wantKeep: false},
		{name: "too long", header: strings.Repeat("a", maxRequestIDLength+1), wantKeep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			if tt.wantKeep {
				assert.Equal(t, tt.header, seen)
			} else {
				assert.NotEqual(t, tt.header, seen)
				_, err := uuid.Parse(seen)
				assert.NoError(t, err)
			}
		})
	}
}
