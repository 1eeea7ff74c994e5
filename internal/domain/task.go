package domain

import (
	"encoding/json"
	"time"
)

// Resource names the upstream resource type a task or record belongs to.
const (
	ResourceCustomer = "customer"
	ResourceProduct  = "product"
	ResourceOrder    = "order"
	ResourceEvent    = "custom_event"
)

// IngestionTask is one raw upstream record published to the side
// channel. The synchronous upsert path is authoritative; tasks feed the
// analytics mirror and any future asynchronous consumers.
type IngestionTask struct {
	TenantID   int64           `json:"tenant_id"`
	Resource   string          `json:"resource"`
	ExternalID int64           `json:"external_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// MirrorEvent is one row of the ClickHouse ingestion_events mirror.
type MirrorEvent struct {
	EventID     string    `ch:"event_id"`
	TenantID    int64     `ch:"tenant_id"`
	Resource    string    `ch:"resource"`
	ExternalID  int64     `ch:"external_id"`
	Payload     string    `ch:"payload"`
	EnqueuedAt  time.Time `ch:"enqueued_at"`
	ProcessedAt time.Time `ch:"processed_at"`
	Version     uint64    `ch:"version"`
}
