package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/chybatronik/goUserFilter/internal/errors"
	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/metrics"
	"github.com/chybatronik/goUserFilter/internal/middleware"
)

// APIPrefix is the mount point of the versioned API
const APIPrefix = "/api/v1"

// RouterConfig collects what the router serves
type RouterConfig struct {
	Logger          *logging.Logger
	Users           UserService
	Health          *HealthHandler   // nil disables /health
	Metrics         *metrics.Metrics // nil disables /metrics and HTTP metrics
	DefaultPageSize int

	// RateLimit is the per-IP request rate per second; 0 disables limiting
	RateLimit float64
	RateBurst int
}

// NewRouter builds the chi router with the middleware chain:
// request ID, logging, panic recovery, metrics, rate limiting. ctx bounds
// background work of the middleware.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ew := apierrors.NewWriter(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer(logger, ew))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	if cfg.RateLimit > 0 {
		r.Use(middleware.SecurityRateLimit(ctx, logger, ew, cfg.RateLimit, cfg.RateBurst))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ew.WriteNotFoundError(w, r, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ew.WriteMethodNotAllowed(w, r)
	})

	if cfg.Health != nil {
		r.Method(http.MethodGet, "/health", cfg.Health)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	users := NewUserHandler(logger, cfg.Users, ew, cfg.DefaultPageSize)
	reports := NewReportHandler(logger, cfg.Users, ew)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.GetUsers)
			r.Post("/", users.CreateUser)
			r.Get("/report", reports.GetReport)
			r.Get("/{id}", users.GetUser)
			r.Put("/{id}", users.UpdateUser)
			r.Delete("/{id}", users.DeleteUser)
		})
		r.Get("/companies/{id}/users", reports.GetCompanyUsers)
	})

	return r
}
