package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg, "test")
}

func TestObserveQuery(t *testing.T) {
	m := newTestMetrics()

	m.ObserveQuery("count", 20*time.Millisecond, nil)
	m.ObserveQuery("find", 30*time.Millisecond, nil)
	m.ObserveQuery("find", time.Second, apperrors.QueryExecutionFailure("find", context.DeadlineExceeded))
	m.ObserveQuery("find", time.Millisecond, errors.New("connection reset"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.queryDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryErrors.WithLabelValues("find", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryErrors.WithLabelValues("find", "store")))
}

func TestCause(t *testing.T) {
	assert.Equal(t, "timeout", cause(context.DeadlineExceeded))
	assert.Equal(t, "canceled", cause(apperrors.QueryExecutionFailure("count", context.Canceled)))
	assert.Equal(t, "invalid_request", cause(apperrors.InvalidPageRequest("size must be greater than 0")))
	assert.Equal(t, "store", cause(errors.New("boom")))
}

func TestMiddleware_LabelsRoutePattern(t *testing.T) {
	m := newTestMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/users/{id}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsInFlight))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_http_requests_total{method="GET",route="/api/v1/users/{id}",status="404"} 3`), body)
}
