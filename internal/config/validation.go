package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	validDrivers      = []string{DriverPostgres, DriverSQLite, DriverMemory}
	validSSLModes     = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{"json", "text"}
	validEnvironments = []string{"development", "staging", "production", "test"}
)

// Validate validates the configuration and returns any errors
func Validate(config *Config) error {
	var validationErrors []string

	validators := []func() error{
		func() error { return validateDatabaseConfig(&config.Database) },
		func() error { return validateServerConfig(&config.Server) },
		func() error { return validateQueryConfig(&config.Query) },
		func() error { return validateLoggingConfig(&config.Logging) },
		func() error { return validateApplicationConfig(&config.Application) },
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			validationErrors = append(validationErrors, err.Error())
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(validationErrors, "; "))
	}

	return nil
}

// validateDatabaseConfig validates database configuration for the selected driver
func validateDatabaseConfig(db *DatabaseConfig) error {
	switch db.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if db.SQLitePath == "" {
			return errors.New("sqlite path is required")
		}
		return nil
	case DriverPostgres:
	default:
		return fmt.Errorf("invalid database driver: %s, must be one of: %s", db.Driver, strings.Join(validDrivers, ", "))
	}

	if db.Host == "" {
		return errors.New("database host is required")
	}

	if db.Port <= 0 || db.Port > 65535 {
		return errors.New("database port must be between 1 and 65535")
	}

	if db.User == "" {
		return errors.New("database user is required")
	}

	if db.Password == "" && db.SSLMode != "disable" {
		return errors.New("database password is required when SSL is enabled")
	}

	if db.Database == "" {
		return errors.New("database name is required")
	}

	if !contains(validSSLModes, db.SSLMode) {
		return fmt.Errorf("invalid SSL mode: %s, must be one of: %s", db.SSLMode, strings.Join(validSSLModes, ", "))
	}

	if db.MaxConns <= 0 {
		return errors.New("database max connections must be positive")
	}

	if db.MinConns < 0 || db.MinConns > db.MaxConns {
		return errors.New("database min connections must be between 0 and max connections")
	}

	if db.ConnectRetries < 1 {
		return errors.New("database connect retries must be at least 1")
	}

	return nil
}

// validateServerConfig validates server configuration
func validateServerConfig(server *ServerConfig) error {
	if server.Port <= 0 || server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}

	if server.ReadTimeout <= 0 {
		return errors.New("server read timeout must be positive")
	}

	if server.WriteTimeout <= 0 {
		return errors.New("server write timeout must be positive")
	}

	if server.IdleTimeout <= 0 {
		return errors.New("server idle timeout must be positive")
	}

	return nil
}

// validateQueryConfig validates paging bounds and the query timeout
func validateQueryConfig(q *QueryConfig) error {
	if q.Timeout <= 0 {
		return errors.New("query timeout must be positive")
	}

	if q.DefaultPageSize <= 0 {
		return errors.New("default page size must be positive")
	}

	if q.MaxPageSize < 0 {
		return errors.New("max page size must not be negative")
	}

	if q.MaxPageSize > 0 && q.DefaultPageSize > q.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", q.DefaultPageSize, q.MaxPageSize)
	}

	return nil
}

// validateLoggingConfig validates logging configuration
func validateLoggingConfig(logging *LoggingConfig) error {
	if !contains(validLogLevels, logging.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %s", logging.Level, strings.Join(validLogLevels, ", "))
	}

	if !contains(validLogFormats, logging.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %s", logging.Format, strings.Join(validLogFormats, ", "))
	}

	if logging.Dir != "" && logging.RetentionDays < 0 {
		return errors.New("log retention days must not be negative")
	}

	return nil
}

// validateApplicationConfig validates application configuration
func validateApplicationConfig(app *ApplicationConfig) error {
	if !contains(validEnvironments, app.Environment) {
		return fmt.Errorf("invalid environment: %s, must be one of: %s", app.Environment, strings.Join(validEnvironments, ", "))
	}

	if app.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if app.RateLimitRequests <= 0 {
		return errors.New("rate limit requests must be positive")
	}

	if app.RateLimitWindow == "" {
		return errors.New("rate limit window is required")
	}

	if _, err := time.ParseDuration(app.RateLimitWindow); err != nil {
		return fmt.Errorf("invalid rate limit window: %s", app.RateLimitWindow)
	}

	return nil
}
