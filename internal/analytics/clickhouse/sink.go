package clickhouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
)

// Sink implements analytics.EventSink for ClickHouse.
type Sink struct {
	client *Client
	log    *zap.Logger
}

// NewSink creates a ClickHouse mirror sink.
func NewSink(client *Client, log *zap.Logger) *Sink {
	return &Sink{
		client: client,
		log:    log,
	}
}

// InitSchema creates the mirror table. ReplacingMergeTree on the
// deterministic event id deduplicates redeliveries (SQS is
// at-least-once) at merge time.
func (s *Sink) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS ingestion_events (
		event_id String,
		tenant_id Int64,
		resource LowCardinality(String),
		external_id Int64,
		payload String,
		enqueued_at DateTime64(3),
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id, tenant_id)
	PARTITION BY toYYYYMM(enqueued_at)
	SETTINGS index_granularity = 8192
	`

	if err := s.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create ingestion_events table: %w", err)
	}

	return nil
}

// InsertBatch writes mirror events in one batch.
func (s *Sink) InsertBatch(ctx context.Context, events []*domain.MirrorEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := s.client.Conn().PrepareBatch(ctx, `
		INSERT INTO ingestion_events
		(event_id, tenant_id, resource, external_id, payload, enqueued_at, processed_at, version)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, ev := range events {
		if err := batch.Append(
			ev.EventID,
			ev.TenantID,
			ev.Resource,
			ev.ExternalID,
			ev.Payload,
			ev.EnqueuedAt,
			ev.ProcessedAt,
			ev.Version,
		); err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	s.log.Debug("Mirror batch inserted", zap.Int("event_count", len(events)))
	return len(events), nil
}

// Ping checks the sink connection.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Conn().Ping(ctx)
}

// Close closes the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}
