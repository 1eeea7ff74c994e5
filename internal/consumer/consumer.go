// Package consumer drains the ingestion side channel into the
// analytics mirror through a staged pipeline: an SQS receiver feeds a
// task parser, which feeds a batch writer.
package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/analytics"
	"github.com/aretelabs/storesync/internal/config"
	"github.com/aretelabs/storesync/internal/queue"
)

const (
	receiveMaxMessages = 10
	receiveWaitSeconds = 20
	stageBufferSize    = 100
)

// Consumer runs the mirror pipeline stages over buffered channels.
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

// NewConsumer wires the pipeline from config.
func NewConsumer(cfg *config.Config, tasks queue.TaskConsumer, sink analytics.EventSink, log *zap.Logger) *Consumer {
	return &Consumer{
		receiver: NewReceiver(tasks, ReceiverConfig{
			MaxMessages:     receiveMaxMessages,
			WaitTimeSeconds: receiveWaitSeconds,
			BufferSize:      stageBufferSize,
		}, log),
		parser: NewParserStage(tasks, NewJSONTaskParser(), log),
		batchWriter: NewBatchWriter(sink, BatchWriterConfig{
			MaxBatchSize: cfg.Consumer.BatchSizeMax,
			FlushTimeout: time.Duration(cfg.Consumer.BatchTimeoutSec) * time.Second,
		}, log),
	}
}

// Start runs all stages and blocks until every stage has exited. On
// cancellation the receiver closes its output, which drains and stops
// the downstream stages in order.
func (c *Consumer) Start(ctx context.Context) error {
	messages := make(chan types.Message, stageBufferSize)
	envelopes := make(chan *Envelope, stageBufferSize)

	var wg sync.WaitGroup
	stage := func(run func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}

	stage(func() { c.receiver.Start(ctx, messages) })
	stage(func() { c.parser.Start(ctx, messages, envelopes) })
	stage(func() { c.batchWriter.Start(ctx, envelopes) })

	wg.Wait()
	return nil
}
