package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/roundpool/internal/cache/redis"
	"github.com/osse101/roundpool/internal/concurrency"
	"github.com/osse101/roundpool/internal/config"
	"github.com/osse101/roundpool/internal/database"
	"github.com/osse101/roundpool/internal/database/memory"
	"github.com/osse101/roundpool/internal/database/postgres"
	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
	"github.com/osse101/roundpool/internal/metrics"
	"github.com/osse101/roundpool/internal/repository"
	"github.com/osse101/roundpool/internal/scenario"
)

// scenarioPoolConns sizes the pool of one scenario run; steps run in order
const scenarioPoolConns = 2

// cleanup releases whatever a builder opened
type cleanup func()

func noop() {}

// openLedger connects the configured Entity Store. For postgres, schema
// selects a search_path other than the server default.
func openLedger(ctx context.Context, cfg *config.Config, schema string) (repository.Ledger, cleanup, error) {
	gov := domain.NewGovernance(cfg.Deployer, cfg.Treasury)
	gov.FeeRate = cfg.FeeRate

	if cfg.Store == config.StoreMemory {
		return memory.NewLedger(gov), noop, nil
	}

	pool, err := database.NewPoolInSchema(ctx, cfg.GetDBConnString(), schema, cfg.DBMaxConns, database.DefaultMaxConnIdle, database.DefaultMaxConnLifetime)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := preparePostgres(ctx, pool, cfg, gov)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return ledger, pool.Close, nil
}

func preparePostgres(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, gov *domain.Governance) (*postgres.Ledger, error) {
	if err := postgres.Migrate(ctx, pool); err != nil {
		return nil, err
	}
	ledger := postgres.NewLedger(pool, cfg.CacheTTL)
	if err := ledger.EnsureGovernance(ctx, gov); err != nil {
		return nil, err
	}
	return ledger, nil
}

// openScenarioStores returns the store factory for scenario runs. With the
// postgres store every run gets its own migrated schema, dropped afterwards
// unless keep is set.
func openScenarioStores(ctx context.Context, cfg *config.Config, keep bool) (scenario.StoreFactory, cleanup, error) {
	if cfg.Store == config.StoreMemory {
		return scenario.MemoryStore, noop, nil
	}

	admin, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, database.DefaultMaxConnIdle, database.DefaultMaxConnLifetime)
	if err != nil {
		return nil, nil, err
	}

	factory := func(ctx context.Context, runID string, gov *domain.Governance) (*scenario.Store, error) {
		schema := postgres.SchemaName(runID)
		if err := postgres.CreateSchema(ctx, admin, schema); err != nil {
			return nil, err
		}
		drop := func() {
			if keep {
				return
			}
			if err := postgres.DropSchema(context.WithoutCancel(ctx), admin, schema); err != nil {
				logger.FromContext(ctx).Warn("Failed to drop scenario schema", "schema", schema, "error", err)
			}
		}

		pool, err := database.NewPoolInSchema(ctx, cfg.GetDBConnString(), schema, scenarioPoolConns, database.DefaultMaxConnIdle, database.DefaultMaxConnLifetime)
		if err != nil {
			drop()
			return nil, err
		}
		ledger, err := preparePostgres(ctx, pool, cfg, gov)
		if err != nil {
			pool.Close()
			drop()
			return nil, err
		}
		return &scenario.Store{
			Ledger:   ledger,
			Location: "postgres schema " + schema,
			Close: func() {
				pool.Close()
				drop()
			},
		}, nil
	}
	return factory, admin.Close, nil
}

// openLocker returns a redis-backed Locker when REDIS_ADDR is set and an
// in-process one otherwise
func openLocker(ctx context.Context, cfg *config.Config) (concurrency.Locker, cleanup, error) {
	if cfg.RedisAddr == "" {
		return concurrency.NewLockManager(), noop, nil
	}
	client, err := redis.New(ctx, redis.ClientConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.FromContext(ctx).Warn("Failed to close redis client", "error", err)
		}
	}
	return redis.NewLockManager(client, cfg.LockTTL), closeClient, nil
}

// openEventBus builds the in-memory bus with metrics attached, wrapped so that
// failed deliveries are retried and finally dead-lettered
func openEventBus(ctx context.Context, cfg *config.Config) (event.Bus, cleanup, error) {
	bus := event.NewMemoryBus()
	if err := metrics.NewEventMetricsCollector().Register(bus); err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics collector: %w", err)
	}

	publisher, err := event.NewResilientPublisher(bus, event.RetryMaxAttempts, event.RetryInitialDelay, cfg.DeadLetterPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start event publisher: %w", err)
	}
	shutdown := func() {
		if err := publisher.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.FromContext(ctx).Warn("Event publisher shutdown incomplete", "error", err)
		}
	}
	return publisher, shutdown, nil
}
