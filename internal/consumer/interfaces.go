package consumer

import (
	"github.com/aretelabs/storesync/internal/domain"
)

// TaskParser parses raw side-channel message bytes into mirror events.
type TaskParser interface {
	Parse(body []byte) (*domain.MirrorEvent, error)
}
