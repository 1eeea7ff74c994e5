package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/config"
)

// Client owns the native-protocol connection behind the mirror sink.
type Client struct {
	conn driver.Conn
	log  *zap.Logger
}

// NewClient opens and pings a ClickHouse connection.
func NewClient(ctx context.Context, cfg *config.ClickHouse, log *zap.Logger) (*Client, error) {
	opts := &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      5 * time.Second,
		MaxOpenConns:     cfg.MaxOpenConns,
		MaxIdleConns:     cfg.MaxIdleConns,
		ConnMaxLifetime:  time.Duration(cfg.ConnMaxLifetime) * time.Second,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	}
	if cfg.UseTLS {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("Mirror database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Bool("tls", cfg.UseTLS))

	return &Client{conn: conn, log: log}, nil
}

// Conn returns the underlying connection.
func (c *Client) Conn() driver.Conn {
	return c.conn
}

// Close closes the connection.
func (c *Client) Close() error {
	c.log.Info("Closing mirror database connection")
	return c.conn.Close()
}
