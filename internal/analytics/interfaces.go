package analytics

import (
	"context"

	"github.com/aretelabs/storesync/internal/domain"
)

// EventSink is the destination of the ingestion mirror: an append-only
// record of every resource the sync and webhook paths touched, for
// analytics consumers outside this service. It is never authoritative.
type EventSink interface {
	// InsertBatch writes a batch of mirror events and returns how many
	// were accepted.
	InsertBatch(ctx context.Context, events []*domain.MirrorEvent) (int, error)

	// InitSchema creates the mirror table if it does not exist.
	InitSchema(ctx context.Context) error

	// Ping checks if the sink connection is alive.
	Ping(ctx context.Context) error

	// Close releases the sink's resources.
	Close() error
}
