package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/types"
)

// HealthCheckResponse represents the structured health check response format
type HealthCheckResponse struct {
	Status        string                       `json:"status"` // healthy|unhealthy
	Timestamp     int64                        `json:"timestamp"`
	Service       string                       `json:"service"`
	Version       string                       `json:"version"`
	UptimeSeconds int64                        `json:"uptime_seconds"`
	Checks        map[string]types.HealthCheck `json:"checks"`
}

// HealthHandler aggregates the registered checkers into one response
type HealthHandler struct {
	checkers  []types.HealthChecker
	startTime time.Time
	version   string
	service   string
	mu        sync.RWMutex
	logger    *logging.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service, version string, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HealthHandler{
		checkers:  make([]types.HealthChecker, 0),
		startTime: time.Now(),
		version:   version,
		service:   service,
		logger:    logger,
	}
}

// AddChecker adds a health checker to the handler
func (h *HealthHandler) AddChecker(checker types.HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// ServeHTTP answers 200 when every checker is healthy, 503 otherwise.
// ?ping=true skips the checkers.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.URL.Query().Get("ping") == "true" {
		h.write(w, http.StatusOK, map[string]string{"status": "ok", "ping": "pong"})
		return
	}

	response := HealthCheckResponse{
		Timestamp:     time.Now().Unix(),
		Service:       h.service,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        make(map[string]types.HealthCheck),
	}

	h.mu.RLock()
	checkers := make([]types.HealthChecker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	allHealthy := true
	for _, checker := range checkers {
		check := checker.CheckHealth(r.Context())
		response.Checks[checker.Name()] = check

		if !check.Healthy() {
			allHealthy = false
			h.logger.HealthCheck("health check failed",
				"check_name", checker.Name(),
				"check_status", check.Status,
				logging.FieldError, check.Error,
			)
		}
	}

	status := http.StatusOK
	response.Status = types.StatusHealthy
	if !allHealthy {
		status = http.StatusServiceUnavailable
		response.Status = types.StatusUnhealthy
	}

	h.logger.HealthCheck("health check completed",
		"check_status", response.Status,
		logging.FieldResponseTime, time.Since(start).Milliseconds(),
	)
	h.write(w, status, response)
}

func (h *HealthHandler) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health check response", logging.FieldError, err)
	}
}

// PingHealthChecker turns any types.Pinger into a health checker. It serves
// stores without richer statistics, such as the in-memory store.
type PingHealthChecker struct {
	name   string
	pinger types.Pinger
	logger *logging.Logger
}

// NewPingHealthChecker creates a checker reporting under name
func NewPingHealthChecker(name string, pinger types.Pinger, logger *logging.Logger) *PingHealthChecker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PingHealthChecker{name: name, pinger: pinger, logger: logger}
}

// Name returns the checker name
func (p *PingHealthChecker) Name() string {
	return p.name
}

// CheckHealth pings with timing
func (p *PingHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	start := time.Now()
	err := p.pinger.Ping(ctx)

	check := types.HealthCheck{
		Status:         types.StatusHealthy,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = types.StatusUnhealthy
		check.Error = err.Error()
		p.logger.DatabaseError(p.name+" health check failed", err)
		return check
	}

	p.logger.Database(p.name+" health check successful", logging.FieldResponseTime, check.ResponseTimeMs)
	return check
}
