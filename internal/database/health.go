package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chybatronik/goUserFilter/internal/types"
)

// HealthCheckTimeout bounds a single health probe
const HealthCheckTimeout = 5 * time.Second

// HealthChecker reports pool connectivity and pool statistics
type HealthChecker struct {
	db *pgxpool.Pool
}

// NewHealthChecker creates a new database health checker
func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

// Name implements types.HealthChecker
func (h *HealthChecker) Name() string {
	return "database"
}

// CheckHealth pings the pool and attaches its connection counts
func (h *HealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)

	stat := h.db.Stat()
	check := types.HealthCheck{
		Status:         types.StatusHealthy,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Details: map[string]string{
			"driver":         "postgres",
			"total_conns":    strconv.Itoa(int(stat.TotalConns())),
			"idle_conns":     strconv.Itoa(int(stat.IdleConns())),
			"acquired_conns": strconv.Itoa(int(stat.AcquiredConns())),
			"max_conns":      strconv.Itoa(int(stat.MaxConns())),
		},
	}

	if err != nil {
		check.Status = types.StatusUnhealthy
		check.Error = fmt.Sprintf("database connection failed: %v", err)
	}

	return check
}

// Ping implements types.Pinger
func (h *HealthChecker) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}
