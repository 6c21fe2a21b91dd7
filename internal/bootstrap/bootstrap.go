// Package bootstrap connects the backing stores and wires the services shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jobbuddy/internal/circuitbreaker"
	"github.com/jobbuddy/internal/config"
	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/logging"
	"github.com/jobbuddy/internal/retry"
	"github.com/jobbuddy/internal/service"
	"github.com/jobbuddy/internal/storage"
)

// App holds the open connections and the services built on them
type App struct {
	Config   *config.Config
	Postgres *storage.PostgresDB
	Redis    *storage.RedisCache // nil when caching is disabled or Redis is unreachable
	Store    *service.Store
	Services *service.Services
	Logger   *logging.Logger
}

// connectRetry covers the window where Postgres is still starting
func connectRetry() *retry.RetryConfig {
	return &retry.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
	}
}

// InitLogging configures the global logger from cfg and returns it
func InitLogging(cfg *config.Config) *logging.Logger {
	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")
	return logger
}

// Open connects to Postgres, retrying with backoff, and to Redis when caching is enabled.
// A Redis failure is logged and the services run without a cache.
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	ctx = logging.WithLogger(ctx, logger)

	var postgres *storage.PostgresDB
	err := retry.Do(ctx, connectRetry(), func(ctx context.Context, attempt int) error {
		db, err := storage.NewPostgresDB(&cfg.Database.Postgres)
		if err != nil {
			return apperrors.NewDatabaseError("connect", err)
		}
		postgres = db
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to Postgres: %w", err)
	}
	logger.WithFields(map[string]interface{}{
		"host":     cfg.Database.Postgres.Host,
		"database": cfg.Database.Postgres.Database,
	}).Info("Connected to Postgres")

	app := &App{Config: cfg, Postgres: postgres, Logger: logger}

	// a typed nil *CacheService must not reach the services as a non-nil Cache
	var cache service.Cache
	if cfg.Cache.Enabled {
		redis, err := storage.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, continuing without cache")
		} else {
			app.Redis = redis
			cache = storage.NewCacheService(redis, cfg.Cache.TTL).
				WithBreaker(circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("redis")))
			logger.WithField("addr", cfg.Database.Redis.Addr()).Info("Connected to Redis")
		}
	}

	app.Store = service.NewStore(postgres)
	app.Services = service.NewServices(app.Store, service.NewPostgresUnitOfWork(postgres), cache, service.SystemClock)
	return app, nil
}

// Close releases the connections
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close Redis")
		}
	}
	a.Postgres.Close()
}
