package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/listing-watch/internal/config"
)

// Connect creates a single connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// ConnectFunc dials one pool. Swapped out in tests.
type ConnectFunc func(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error)

// ConnectWithRetry calls connect at a fixed interval until it succeeds,
// the timeout expires, or ctx is cancelled.
func ConnectWithRetry(
	ctx context.Context,
	cfg config.DBConfig,
	interval, timeout time.Duration,
	connect ConnectFunc,
	logger *slog.Logger,
) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if connect == nil {
		connect = Connect
	}

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		pool, err := connect(ctx, cfg)
		if err == nil {
			if attempt > 1 {
				logger.Info("database reachable", "attempts", attempt)
			}
			return pool, nil
		}

		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		}

		logger.Warn("database connect failed, retrying",
			"attempt", attempt,
			"retry_in", interval,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
