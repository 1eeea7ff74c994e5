package consumer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretelabs/storesync/internal/domain"
)

// JSONTaskParser implements TaskParser for JSON-encoded ingestion tasks.
type JSONTaskParser struct{}

// NewJSONTaskParser creates a new JSON task parser.
func NewJSONTaskParser() *JSONTaskParser {
	return &JSONTaskParser{}
}

// Parse parses a JSON message body into a mirror event.
func (p *JSONTaskParser) Parse(body []byte) (*domain.MirrorEvent, error) {
	var task domain.IngestionTask
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingestion task: %w", err)
	}

	if task.TenantID == 0 {
		return nil, fmt.Errorf("ingestion task missing tenant id")
	}
	if task.Resource == "" {
		return nil, fmt.Errorf("ingestion task missing resource type")
	}

	payload := "{}"
	if len(task.Payload) > 0 {
		payload = string(task.Payload)
	}

	return &domain.MirrorEvent{
		EventID:     computeEventID(&task),
		TenantID:    task.TenantID,
		Resource:    task.Resource,
		ExternalID:  task.ExternalID,
		Payload:     payload,
		EnqueuedAt:  task.EnqueuedAt,
		ProcessedAt: time.Now(),
		Version:     uint64(time.Now().UnixNano()),
	}, nil
}

// computeEventID derives a deterministic id so redelivered messages
// collapse to one mirror row.
func computeEventID(task *domain.IngestionTask) string {
	data := fmt.Sprintf("%d|%s|%d|%d",
		task.TenantID,
		task.Resource,
		task.ExternalID,
		task.EnqueuedAt.UnixNano(),
	)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
