// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// connectAttempts and connectBackoff accommodate containers starting up.
const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewPool creates and validates a pgxpool connection pool.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		slog.Warn("db connect attempt failed",
			"attempt", attempt, "max", connectAttempts, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// No arguments, so pgx sends this over the simple protocol and the
	// multi-statement script runs as one batch.
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
