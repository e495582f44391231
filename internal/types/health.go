package types

import "context"

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck represents individual health check result with timing
type HealthCheck struct {
	Status         string            `json:"status"`
	ResponseTimeMs int64             `json:"response_time_ms"`
	Error          string            `json:"error,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

// Healthy reports whether the check passed
func (h HealthCheck) Healthy() bool {
	return h.Status == StatusHealthy
}

// HealthChecker is one named component of the health endpoint
type HealthChecker interface {
	CheckHealth(ctx context.Context) HealthCheck
	Name() string
}

// Pinger is anything with a connectivity probe
type Pinger interface {
	Ping(ctx context.Context) error
}
