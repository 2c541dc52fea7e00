// Package app initializes and holds long-lived application services,
// acting as a dependency injection container for the cobra commands.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/api"
	"github.com/alshabili/first-backend/internal/config"
	"github.com/alshabili/first-backend/internal/logging"
	"github.com/alshabili/first-backend/internal/metrics"
	"github.com/alshabili/first-backend/internal/notifier"
	"github.com/alshabili/first-backend/internal/queue"
	"github.com/alshabili/first-backend/internal/queue/memory"
	"github.com/alshabili/first-backend/internal/queue/redisqueue"
	"github.com/alshabili/first-backend/internal/seenset"
	"github.com/alshabili/first-backend/internal/storage/noop"
	"github.com/alshabili/first-backend/internal/storage/postgres"
)

// App holds all the shared, long-lived services for the application. It
// is initialized once at startup and handed to the command that runs.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	redisClient *redis.Client
	pgPool      *pgxpool.Pool

	queue    queue.Queue
	seen     seenset.Store
	jobStore notifier.JobPersister
	subStore notifier.SubscriptionLister
}

// GetConfig returns the loaded configuration.
func (a *App) GetConfig() config.Config { return a.cfg }

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger { return a.logger }

// GetQueue returns the job queue.
func (a *App) GetQueue() queue.Queue { return a.queue }

// GetSeenSet returns the dedup store.
func (a *App) GetSeenSet() seenset.Store { return a.seen }

// GetJobStore returns the job persistence store.
func (a *App) GetJobStore() notifier.JobPersister { return a.jobStore }

// GetSubscriptionStore returns the subscription query store.
func (a *App) GetSubscriptionStore() notifier.SubscriptionLister { return a.subStore }

// New creates and initializes an App from configuration. It fails fast
// if any backing service cannot be reached.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	logger = logging.WithAlerts(logger, cfg.Logging.AlertWebhook)

	metrics.Init()

	a := &App{cfg: cfg, logger: logger}

	switch cfg.Queue.Provider {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			a.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", opts.Addr))
		a.redisClient = client
		a.queue = redisqueue.New(client, cfg.Queue.Main, cfg.Queue.Processing)
		a.seen = seenset.NewRedisStore(client)
	case "memory":
		logger.Info("using in-memory queue and seen-set, state is lost on restart")
		a.queue = memory.NewQueue()
		a.seen = seenset.NewMemoryStore()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown queue provider: %s", cfg.Queue.Provider)
	}

	switch cfg.Database.Provider {
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initialize database: %w", err)
		}
		logger.Info("connected to postgres")
		a.pgPool = pool
		if a.jobStore, err = postgres.NewJobStore(pool, logger); err != nil {
			a.Close()
			return nil, err
		}
		if a.subStore, err = postgres.NewSubscriptionStore(pool, logger); err != nil {
			a.Close()
			return nil, err
		}
	case "noop":
		logger.Info("using noop database provider, jobs will not be persisted")
		a.jobStore = noop.NewJobStore(logger)
		a.subStore = noop.NewSubscriptionStore()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown database provider: %s", cfg.Database.Provider)
	}

	return a, nil
}

// Pingers exposes health probes for every connected backing service.
func (a *App) Pingers() map[string]api.Pinger {
	checks := make(map[string]api.Pinger)
	if a.redisClient != nil {
		client := a.redisClient
		checks["redis"] = api.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	if a.pgPool != nil {
		pool := a.pgPool
		checks["postgres"] = api.PingerFunc(func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}
	return checks
}

// Close shuts down every service the App holds. It is called by a cobra
// hook after the command finishes.
func (a *App) Close() {
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("error closing redis client", zap.Error(err))
		}
	}
	// best effort, stderr sync fails on some platforms
	_ = a.logger.Sync()
}
