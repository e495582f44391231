package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/chybatronik/goUserFilter/internal/config"
	"github.com/chybatronik/goUserFilter/internal/logging"
)

// ConnString renders the keyword/value connection string for cfg
func ConnString(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)
}

// NewPoolConfig parses cfg into a pool configuration with pgx tracing on logger
func NewPoolConfig(appConfig *config.Config, logger *logging.Logger) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(appConfig.Database))
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(appConfig.Database.MaxConns)
	poolConfig.MinConns = int32(appConfig.Database.MinConns)
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	if logger != nil {
		poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   NewPgxLogger(logger),
			LogLevel: TraceLevel(appConfig.Logging.Level),
		}
	}

	return poolConfig, nil
}

// NewConnectionPool creates a PostgreSQL pool and pings it, retrying with
// exponential backoff up to Database.ConnectRetries attempts
func NewConnectionPool(ctx context.Context, appConfig *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := NewPoolConfig(appConfig, logger)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.Discard()
	}

	attempts := appConfig.Database.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0

	var pool *pgxpool.Pool
	attempt := 0
	connect := func() error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("unable to create connection pool: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return fmt.Errorf("unable to connect to database: %w", err)
		}
		pool = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("database: connection attempt failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"retry_in_ms", wait.Milliseconds(),
			logging.FieldError, err,
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, err
	}

	logger.Database("connection pool ready",
		"host", appConfig.Database.Host,
		"database", appConfig.Database.Database,
		"attempts", attempt,
	)
	return pool, nil
}

// ValidateConnection checks if database connection is working
func ValidateConnection(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return pool.Ping(ctx)
}
