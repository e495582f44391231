// Package config provides configuration loading and environment management
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s='%s': %s", e.Field, e.Value, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	msg := "configuration validation errors:\n"
	for _, err := range ve {
		msg += fmt.Sprintf("  - %s\n", err.Error())
	}
	return msg
}

// PostgresEnvironmentVariables must be set when DB_DRIVER is postgres
var PostgresEnvironmentVariables = []string{
	"DB_HOST",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
}

// OptionalEnvironmentVariables defines optional environment variables with defaults
var OptionalEnvironmentVariables = map[string]string{
	"DB_DRIVER":               DriverPostgres,
	"DB_PORT":                 "5432",
	"DB_SSL_MODE":             "disable",
	"DB_MAX_CONNECTIONS":      "25",
	"DB_MIN_CONNS":            "5",
	"DB_CONNECT_RETRIES":      "5",
	"SQLITE_PATH":             "goUserFilter.db",
	"APP_HOST":                "0.0.0.0",
	"APP_PORT":                "8080",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"LOG_DIR":                 "",
	"LOG_RETENTION_DAYS":      "7",
	"ENVIRONMENT":             "development",
	"SERVER_DEBUG":            "false",
	"SERVER_READ_TIMEOUT":     "30",
	"SERVER_WRITE_TIMEOUT":    "30",
	"SERVER_IDLE_TIMEOUT":     "120",
	"SHUTDOWN_TIMEOUT":        "30",
	"RATE_LIMIT_REQUESTS":     "100",
	"RATE_LIMIT_WINDOW":       "1m",
	"METRICS_ENABLED":         "false",
	"HEALTH_CHECK_ENABLED":    "true",
	"QUERY_TIMEOUT":           "5s",
	"QUERY_DEFAULT_PAGE_SIZE": "20",
	"QUERY_MAX_PAGE_SIZE":     "100",
}

// ValidateRequired validates the variables the selected driver needs
func ValidateRequired() ValidationErrors {
	var errs ValidationErrors

	if getEnv("DB_DRIVER", DriverPostgres) != DriverPostgres {
		return nil
	}

	for _, envVar := range PostgresEnvironmentVariables {
		if value := os.Getenv(envVar); value == "" {
			errs = append(errs, ValidationError{
				Field:   envVar,
				Value:   "",
				Message: "required environment variable is not set",
			})
		}
	}

	return errs
}

// ValidatePort validates that a port number is in valid range
func ValidatePort(envVar string) error {
	portStr := os.Getenv(envVar)
	if portStr == "" {
		return nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ValidationError{
			Field:   envVar,
			Value:   portStr,
			Message: "must be a valid integer",
		}
	}

	if port < 1 || port > 65535 {
		return ValidationError{
			Field:   envVar,
			Value:   portStr,
			Message: "must be between 1 and 65535",
		}
	}

	return nil
}

// ValidateDuration validates that envVar, when set, parses as a positive duration
func ValidateDuration(envVar string) error {
	value := os.Getenv(envVar)
	if value == "" {
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return ValidationError{
			Field:   envVar,
			Value:   value,
			Message: "must be a positive duration such as 5s or 1m",
		}
	}

	return nil
}

// ValidateLogLevel validates log level value
func ValidateLogLevel() error {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return nil
	}

	if !contains(validLogLevels, level) {
		return ValidationError{
			Field:   "LOG_LEVEL",
			Value:   level,
			Message: "must be one of: debug, info, warn, error",
		}
	}

	return nil
}

// ValidateEnvironmentType validates environment type
func ValidateEnvironmentType() error {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return nil
	}

	if !contains(validEnvironments, env) {
		return ValidationError{
			Field:   "ENVIRONMENT",
			Value:   env,
			Message: "must be one of: development, staging, production, test",
		}
	}

	return nil
}

// ValidateAll performs comprehensive configuration validation
func ValidateAll() error {
	var errs ValidationErrors

	if requiredErrs := ValidateRequired(); len(requiredErrs) > 0 {
		errs = append(errs, requiredErrs...)
	}

	checks := []error{
		ValidatePort("DB_PORT"),
		ValidatePort("APP_PORT"),
		ValidateDuration("QUERY_TIMEOUT"),
		ValidateDuration("RATE_LIMIT_WINDOW"),
		ValidateLogLevel(),
		ValidateEnvironmentType(),
	}
	for _, err := range checks {
		var ve ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// LoadAndValidate loads environment variables and validates configuration
func LoadAndValidate() (map[string]string, error) {
	env := make(map[string]string)

	for _, key := range PostgresEnvironmentVariables {
		if value := os.Getenv(key); value != "" {
			env[key] = value
		}
	}

	for key, defaultValue := range OptionalEnvironmentVariables {
		value := os.Getenv(key)
		if value == "" {
			value = defaultValue
		}
		env[key] = value
	}

	if err := ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return env, nil
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	// 1. Load .env file if it exists; variables already set win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// 2. Pre-load environment variable validation
	if _, err := LoadAndValidate(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	// 3. Load configuration with defaults
	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("APP_PORT", 8080),
			Host:         getEnv("APP_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			Debug:        getEnvBool("SERVER_DEBUG", false),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", DriverPostgres),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Database:       getEnv("DB_NAME", "postgres"),
			SSLMode:        getEnv("DB_SSL_MODE", "disable"),
			MaxConns:       getEnvInt("DB_MAX_CONNECTIONS", 25),
			MinConns:       getEnvInt("DB_MIN_CONNS", 5),
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
			SQLitePath:     getEnv("SQLITE_PATH", "goUserFilter.db"),
		},
		Query: QueryConfig{
			Timeout:         getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
			DefaultPageSize: getEnvInt("QUERY_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     getEnvInt("QUERY_MAX_PAGE_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "json"),
			Dir:           getEnv("LOG_DIR", ""),
			RetentionDays: getEnvInt("LOG_RETENTION_DAYS", 7),
		},
		HealthCheck: HealthCheckConfig{
			Enabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		},
		Application: ApplicationConfig{
			Environment:       getEnv("ENVIRONMENT", "development"),
			ShutdownTimeout:   getEnvInt("SHUTDOWN_TIMEOUT", 30),
			RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:   getEnv("RATE_LIMIT_WINDOW", "1m"),
			MetricsEnabled:    getEnvBool("METRICS_ENABLED", false),
		},
	}

	// 4. Post-load configuration validation
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as integer with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets environment variable as boolean with default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
