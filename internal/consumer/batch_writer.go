package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/analytics"
	"github.com/aretelabs/storesync/internal/domain"
)

// BatchWriterConfig bounds a mirror batch by size and age.
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter accumulates parsed envelopes and flushes them to the
// mirror sink when the batch fills or ages out. A flushed batch is
// settled as a unit: acked on a complete insert, nacked otherwise, so
// a failed insert redelivers every record in it.
type BatchWriter struct {
	sink   analytics.EventSink
	config BatchWriterConfig
	log    *zap.Logger
}

func NewBatchWriter(sink analytics.EventSink, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		sink:   sink,
		config: config,
		log:    log,
	}
}

// Start consumes envelopes until the input channel closes or the
// context is cancelled. Pending envelopes are flushed before exit.
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	pending := make([]*Envelope, 0, w.config.MaxBatchSize)

	flush := func(reason string) {
		if len(pending) == 0 {
			return
		}
		w.log.Debug("Flushing mirror batch",
			zap.String("reason", reason),
			zap.Int("envelope_count", len(pending)))
		w.write(ctx, pending)
		pending = pending[:0]
		ticker.Reset(w.config.FlushTimeout)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			flush("shutdown")
			return

		case env, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input closed")
				flush("input closed")
				return
			}
			pending = append(pending, env)
			if len(pending) >= w.config.MaxBatchSize {
				flush("size")
			}

		case <-ticker.C:
			flush("timeout")
		}
	}
}

func (w *BatchWriter) write(ctx context.Context, envelopes []*Envelope) {
	events := make([]*domain.MirrorEvent, len(envelopes))
	for i, env := range envelopes {
		events[i] = env.Event
	}

	inserted, err := w.sink.InsertBatch(ctx, events)
	if err != nil {
		w.log.Error("Mirror batch insert failed",
			zap.Error(err),
			zap.Int("event_count", len(events)))
		w.settle(ctx, envelopes, false)
		return
	}

	if inserted != len(events) {
		w.log.Warn("Mirror batch insert incomplete",
			zap.Int("inserted", inserted),
			zap.Int("expected", len(events)))
		w.settle(ctx, envelopes, false)
		return
	}

	w.log.Info("Mirror events inserted", zap.Int("count", inserted))
	w.settle(ctx, envelopes, true)
}

// settle acks (deletes) or nacks (leaves for redelivery) every
// envelope of a flushed batch.
func (w *BatchWriter) settle(ctx context.Context, envelopes []*Envelope, acked bool) {
	for _, env := range envelopes {
		var err error
		if acked {
			err = env.Ack(ctx)
		} else {
			err = env.Nack(ctx)
		}
		if err != nil {
			w.log.Error("Failed to settle envelope", zap.Error(err))
		}
	}
}
