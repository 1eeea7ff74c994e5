package consumer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/queue"
)

// ParserStage turns raw side-channel messages into mirror-event
// envelopes. Malformed messages are deleted immediately; redelivering
// them would never succeed.
type ParserStage struct {
	tasks  queue.TaskConsumer
	parser TaskParser
	log    *zap.Logger
}

func NewParserStage(tasks queue.TaskConsumer, parser TaskParser, log *zap.Logger) *ParserStage {
	return &ParserStage{
		tasks:  tasks,
		parser: parser,
		log:    log,
	}
}

// Start consumes raw messages from in and emits envelopes on out until
// in closes or the context is cancelled.
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input closed")
				return
			}

			env := p.envelope(ctx, msg)
			if env == nil {
				continue
			}

			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}
}

// envelope parses one message, nil when it was malformed and dropped.
// The envelope's ack deletes the message; its nack leaves it for the
// visibility timeout to redeliver.
func (p *ParserStage) envelope(ctx context.Context, msg types.Message) *Envelope {
	event, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Dropping malformed side channel message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		if derr := p.delete(ctx, msg); derr != nil {
			p.log.Error("Failed to delete malformed message",
				zap.String("message_id", aws.ToString(msg.MessageId)),
				zap.Error(derr))
		}
		return nil
	}

	ack := func(ctx context.Context) error { return p.delete(ctx, msg) }
	nack := func(ctx context.Context) error { return nil }

	return NewEnvelope(event, ack, nack)
}

func (p *ParserStage) delete(ctx context.Context, msg types.Message) error {
	_, err := p.tasks.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.tasks.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	return err
}
