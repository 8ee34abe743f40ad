package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotInitialized is returned by Handle when the connection has not been
// established or has already been disposed.
var ErrNotInitialized = errors.New("database: not initialized")

// DB wraps the process-wide connection pool. It is constructed once at startup
// and passed by reference into every component that talks to storage.
type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, uri string) (*DB, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Connectivity probe before handing the pool out.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Handle returns the pool, or ErrNotInitialized after Close (or before New).
func (db *DB) Handle() (*pgxpool.Pool, error) {
	if db == nil || db.Pool == nil {
		return nil, ErrNotInitialized
	}
	return db.Pool, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.Pool = nil
	}
}
