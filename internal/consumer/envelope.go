package consumer

import (
	"context"

	"github.com/aretelabs/storesync/internal/domain"
)

// Envelope carries a parsed mirror event through the pipeline together
// with its settlement callbacks. Ack removes the backing message from
// the side channel; Nack leaves it for redelivery.
type Envelope struct {
	Event  *domain.MirrorEvent
	onAck  func(context.Context) error
	onNack func(context.Context) error
}

func NewEnvelope(event *domain.MirrorEvent, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Event:  event,
		onAck:  ack,
		onNack: nack,
	}
}

// Ack marks the event as durably mirrored.
func (e *Envelope) Ack(ctx context.Context) error {
	if e.onAck == nil {
		return nil
	}
	return e.onAck(ctx)
}

// Nack releases the event back to the side channel.
func (e *Envelope) Nack(ctx context.Context) error {
	if e.onNack == nil {
		return nil
	}
	return e.onNack(ctx)
}
