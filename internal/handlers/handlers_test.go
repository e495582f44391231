package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/database/memory"
	"github.com/chybatronik/goUserFilter/internal/metrics"
	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/query"
	"github.com/chybatronik/goUserFilter/internal/service"
)

type testServer struct {
	router  http.Handler
	store   *memory.UserStore
	metrics *metrics.Metrics
	acme    models.Company
}

func birth(y int) *time.Time {
	t := time.Date(y, 6, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

// newTestServer serves five users, three of them in Acme:
// ivan (Ivanov, ADMIN), petr (Petrov), sveta (Svetikova, no company),
// anna (Smith), kate (Brown, no company, no birth date)
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.NewUserStore()
	acme, err := store.CreateCompany(ctx, "Acme")
	require.NoError(t, err)

	for _, u := range []models.User{
		{Username: "ivan", FirstName: "Ivan", LastName: "Ivanov", BirthDate: birth(1990), Role: models.RoleAdmin, CompanyID: &acme.ID},
		{Username: "petr", FirstName: "Petr", LastName: "Petrov", BirthDate: birth(1985), Role: models.RoleUser, CompanyID: &acme.ID},
		{Username: "sveta", FirstName: "Sveta", LastName: "Svetikova", BirthDate: birth(1995), Role: models.RoleUser},
		{Username: "anna", FirstName: "Anna", LastName: "Smith", BirthDate: birth(2000), Role: models.RoleUser, CompanyID: &acme.ID},
		{Username: "kate", FirstName: "Kate", LastName: "Brown", Role: models.RoleUser},
	} {
		_, err := store.Create(ctx, u)
		require.NoError(t, err)
	}

	m := metrics.New("handlers_test")
	health := NewHealthHandler("goUserFilter", "test", nil)
	health.AddChecker(NewPingHealthChecker("database", store, nil))

	router := NewRouter(ctx, RouterConfig{
		Users:           service.NewUserService(store, nil, query.WithMaxPageSize(100), query.WithObserver(m)),
		Health:          health,
		Metrics:         m,
		DefaultPageSize: 20,
	})

	return &testServer{router: router, store: store, metrics: m, acme: acme}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details"`
}
