package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/queue"
)

const receiveBackoff = time.Second

// ReceiverConfig controls how the side channel is polled.
type ReceiverConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	BufferSize      int
}

// Receiver long-polls the side channel and feeds raw messages to the
// parser stage.
type Receiver struct {
	tasks  queue.TaskConsumer
	config ReceiverConfig
	log    *zap.Logger
}

func NewReceiver(tasks queue.TaskConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	return &Receiver{
		tasks:  tasks,
		config: config,
		log:    log,
	}
}

// Start polls until the context is cancelled, then closes out so the
// downstream stages drain and exit.
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	for ctx.Err() == nil {
		messages, err := r.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.log.Error("Side channel receive failed", zap.Error(err))
			time.Sleep(receiveBackoff)
			continue
		}
		if len(messages) == 0 {
			continue
		}

		r.log.Debug("Received side channel messages",
			zap.Int("message_count", len(messages)))

		for _, msg := range messages {
			select {
			case out <- msg:
			case <-ctx.Done():
				r.log.Info("Receiver shutting down")
				return
			}
		}
	}

	r.log.Info("Receiver shutting down")
}

func (r *Receiver) poll(ctx context.Context) ([]types.Message, error) {
	result, err := r.tasks.ReceiveMessages(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.tasks.QueueURL()),
		MaxNumberOfMessages: r.config.MaxMessages,
		WaitTimeSeconds:     r.config.WaitTimeSeconds,
	})
	if err != nil {
		return nil, err
	}
	return result.Messages, nil
}
