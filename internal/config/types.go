// Package config provides configuration types and structures for the goUserFilter service.
package config

import "time"

// Config represents the application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Query       QueryConfig
	Logging     LoggingConfig
	HealthCheck HealthCheckConfig
	Application ApplicationConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int    // Server port number
	Host         string // Server host address
	ReadTimeout  int    // Read timeout in seconds
	WriteTimeout int    // Write timeout in seconds
	IdleTimeout  int    // Idle timeout in seconds
	Debug        bool   // Enable debug mode
}

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver         string // postgres, sqlite or memory
	Host           string // Database host address
	Port           int    // Database port number
	User           string // Database username
	Password       string // Database password
	Database       string // Database name
	SSLMode        string // SSL mode (disable, require, etc.)
	MaxConns       int    // Maximum database connections
	MinConns       int    // Minimum database connections
	ConnectRetries int    // Connection attempts at startup before giving up
	SQLitePath     string // SQLite file, ":memory:" for a throwaway database
}

// QueryConfig bounds the filtered query layer
type QueryConfig struct {
	Timeout         time.Duration // per query, count and window pass together
	DefaultPageSize int           // used when the request has no size
	MaxPageSize     int           // larger sizes are rejected; 0 disables the bound
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level         string // Log level (debug, info, warn, error)
	Format        string // Log format (json, text)
	Dir           string // Also write logs to files in this directory when set
	RetentionDays int    // Log files older than this are removed at startup
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Enabled bool
}

// ApplicationConfig holds application-specific configuration
type ApplicationConfig struct {
	Environment       string // Environment (development, staging, production, test)
	ShutdownTimeout   int    // Shutdown timeout in seconds
	RateLimitRequests int    // Rate limit requests per window
	RateLimitWindow   string // Rate limit time window
	MetricsEnabled    bool   // Expose /metrics and record query metrics
}
