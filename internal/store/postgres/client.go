// Package postgres implements the tenant registry and commerce store
// on PostgreSQL. Upserts rely on INSERT ... ON CONFLICT against the
// per-tenant unique external-id constraints, so concurrent writers
// (scheduler, manual sync, webhooks) serialize in the database rather
// than in application code.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/config"
)

// Client wraps the shared connection pool. Constructed once at startup
// and passed down; nothing here is package-level state.
type Client struct {
	db  *sql.DB
	log *zap.Logger
}

// NewClient opens and verifies the Postgres pool.
func NewClient(ctx context.Context, cfg *config.Postgres, log *zap.Logger) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("Postgres connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns))

	return &Client{db: db, log: log}, nil
}

// DB returns the underlying pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Ping checks connection liveness.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the pool.
func (c *Client) Close() error {
	c.log.Info("Closing Postgres connection")
	return c.db.Close()
}
