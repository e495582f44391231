// Package main provides the entry point for the goUserFilter service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chybatronik/goUserFilter/internal/config"
	"github.com/chybatronik/goUserFilter/internal/database"
	"github.com/chybatronik/goUserFilter/internal/database/memory"
	"github.com/chybatronik/goUserFilter/internal/database/sqlite"
	"github.com/chybatronik/goUserFilter/internal/handlers"
	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/metrics"
	"github.com/chybatronik/goUserFilter/internal/query"
	"github.com/chybatronik/goUserFilter/internal/service"
	"github.com/chybatronik/goUserFilter/internal/types"
)

const serviceName = "goUserFilter"

var (
	// Build information (set during build)
	Version   = "dev"
	BuildTime = ""
)

// migrationsDir holds the PostgreSQL migrations applied at startup
const migrationsDir = "./migrations"

// backend is an opened user store with its health probe and cleanup
type backend struct {
	store   service.UserStore
	checker types.HealthChecker
	close   func()
}

func main() {
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger, closeLogs, err := setupStructuredLogging(appConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to set up logging: %v", err)
	}
	defer closeLogs()

	logStartupEvents(logger, appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	b, err := openBackend(startupCtx, appConfig, logger)
	cancel()
	if err != nil {
		logger.Error("failed to open user store", logging.FieldError, err, "driver", appConfig.Database.Driver)
		closeLogs()
		os.Exit(1)
	}
	defer b.close()

	server := setupHTTPServer(ctx, appConfig, b, logger)

	go func() {
		logger.Startup("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", logging.FieldError, err)
			stop()
		}
	}()

	logger.Startup("goUserFilter service started successfully")

	<-ctx.Done()
	gracefulShutdown(server, appConfig.Application.ShutdownTimeout, logger)
}

// openBackend opens the store selected by Database.Driver. PostgreSQL is
// migrated before it is returned.
func openBackend(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*backend, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		logger.Startup("initializing database connection")
		pool, err := database.NewConnectionPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		logger.Startup("running database migrations")
		if err := database.NewMigrationRunner(pool, migrationsDir, logger).RunMigrations(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database migration failed: %w", err)
		}

		return &backend{
			store:   database.NewUserStore(pool, logger),
			checker: database.NewHealthChecker(pool),
			close:   pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Database("sqlite database opened", "path", cfg.Database.SQLitePath)

		store := sqlite.NewUserStore(db)
		return &backend{
			store:   store,
			checker: store,
			close:   func() { db.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory user store; data is lost on shutdown")
		store := memory.NewUserStore()
		return &backend{
			store:   store,
			checker: handlers.NewPingHealthChecker("database", store, logger),
			close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// newRouter wires the service, health and metrics for b into the HTTP router
func newRouter(ctx context.Context, cfg *config.Config, b *backend, logger *logging.Logger) http.Handler {
	opts := []query.Option{
		query.WithTimeout(cfg.Query.Timeout),
		query.WithMaxPageSize(cfg.Query.MaxPageSize),
	}

	var m *metrics.Metrics
	if cfg.Application.MetricsEnabled {
		m = metrics.New(metrics.DefaultNamespace)
		opts = append(opts, query.WithObserver(m))
	}

	var health *handlers.HealthHandler
	if cfg.HealthCheck.Enabled {
		health = handlers.NewHealthHandler(serviceName, Version, logger)
		health.AddChecker(b.checker)
	}

	rate, burst := rateLimit(cfg.Application)

	return handlers.NewRouter(ctx, handlers.RouterConfig{
		Logger:          logger,
		Users:           service.NewUserService(b.store, logger, opts...),
		Health:          health,
		Metrics:         m,
		DefaultPageSize: cfg.Query.DefaultPageSize,
		RateLimit:       rate,
		RateBurst:       burst,
	})
}

// setupHTTPServer configures the HTTP server with timeouts
func setupHTTPServer(ctx context.Context, cfg *config.Config, b *backend, logger *logging.Logger) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(ctx, cfg, b, logger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
}

// rateLimit converts RATE_LIMIT_REQUESTS per RATE_LIMIT_WINDOW into a
// per-second rate with a burst of a fifth of the window's requests.
// A non-positive request count disables limiting.
func rateLimit(app config.ApplicationConfig) (float64, int) {
	if app.RateLimitRequests <= 0 {
		return 0, 0
	}
	window, err := time.ParseDuration(app.RateLimitWindow)
	if err != nil || window <= 0 {
		window = time.Minute
	}
	return float64(app.RateLimitRequests) / window.Seconds(), max(app.RateLimitRequests/5, 1)
}

// gracefulShutdown drains in-flight requests within shutdownTimeout seconds
func gracefulShutdown(server *http.Server, shutdownTimeout int, logger *logging.Logger) {
	logger.Startup("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", logging.FieldError, err)
	} else {
		logger.Startup("HTTP server shutdown completed")
	}
}

// setupStructuredLogging builds the service logger. With LOG_DIR set, output
// is also written to a file there and files past the retention are removed.
func setupStructuredLogging(cfg *config.Config) (*logging.Logger, func(), error) {
	var (
		out     io.Writer = os.Stdout
		files   *logging.FileOutput
		cleanup = func() {}
	)

	if cfg.Logging.Dir != "" {
		var err error
		files, err = logging.OpenFileOutput(cfg.Logging.Dir, time.Now())
		if err != nil {
			return nil, nil, err
		}
		out = files
		cleanup = func() { files.Close() }
	}

	logger := logging.NewLogger(out, cfg.Logging.Level, cfg.Logging.Format, serviceName, Version).WithServiceContext()

	if files != nil && cfg.Logging.RetentionDays > 0 {
		removed, err := files.CleanupOldLogs(time.Now().AddDate(0, 0, -cfg.Logging.RetentionDays))
		if err != nil {
			logger.Warn("failed to clean up old log files", logging.FieldError, err)
		} else if len(removed) > 0 {
			logger.Info("old log files removed", "count", len(removed), "dir", cfg.Logging.Dir)
		}
	}

	return logger, cleanup, nil
}

// logStartupEvents logs the effective configuration without secrets
func logStartupEvents(logger *logging.Logger, cfg *config.Config) {
	logger.Startup("goUserFilter service starting up",
		"version", Version,
		"build_time", BuildTime,
	)

	logger.Startup("configuration loaded successfully",
		"environment", cfg.Application.Environment,
		"log_level", cfg.Logging.Level,
		"server_port", cfg.Server.Port,
		"server_host", cfg.Server.Host,
		"db_driver", cfg.Database.Driver,
		"db_host", cfg.Database.Host,
		"db_name", cfg.Database.Database,
		"query_timeout", cfg.Query.Timeout.String(),
		"max_page_size", cfg.Query.MaxPageSize,
		"metrics_enabled", cfg.Application.MetricsEnabled,
		"health_check_enabled", cfg.HealthCheck.Enabled,
	)
}
