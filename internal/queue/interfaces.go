package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/aretelabs/storesync/internal/domain"
)

// TaskPublisher publishes ingestion tasks to the side channel. The
// synchronous upsert path is authoritative; publish failures must never
// fail a sync or webhook dispatch.
type TaskPublisher interface {
	PublishTask(ctx context.Context, task *domain.IngestionTask) error
}

// TaskConsumer consumes side-channel messages for the mirror pipeline.
type TaskConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
