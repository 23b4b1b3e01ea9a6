// Package database owns PostgreSQL access for gestor-engine: the pgx
// pool shared by every repository, and the golang-migrate runner that
// brings the schema up to date on startup.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the pgx connection pool handed to the repositories.
type DB struct {
	*pgxpool.Pool
}

// Config holds pool settings. Defaults live in pkg/config; values here
// are applied as given.
type Config struct {
	URL            string
	MaxConnections int32
	ConnLifetime   time.Duration
	ConnIdleTime   time.Duration
}

// NewConnection opens and pings a connection pool.
func NewConnection(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
