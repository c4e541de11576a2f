package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/roundpool/internal/logger"
)

// Pool interface for database connection pool operations
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// NewPool creates a PostgreSQL connection pool and pings it
func NewPool(ctx context.Context, connString string, maxConns int32, maxIdle, maxLife time.Duration) (*pgxpool.Pool, error) {
	return NewPoolInSchema(ctx, connString, "", maxConns, maxIdle, maxLife)
}

// NewPoolInSchema is NewPool with every session's search_path set to schema.
// An empty schema keeps the server default.
func NewPoolInSchema(ctx context.Context, connString, schema string, maxConns int32, maxIdle, maxLife time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	config.MaxConns = maxConns
	config.MinConns = min(DefaultMinConnections, maxConns)
	config.MaxConnLifetime = maxLife
	config.MaxConnIdleTime = maxIdle
	if schema != "" {
		config.ConnConfig.RuntimeParams["search_path"] = schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	logger.FromContext(ctx).Info(LogMsgSuccessfullyConnectedToDatabase, "max_conns", maxConns, "schema", schema)
	return pool, nil
}
