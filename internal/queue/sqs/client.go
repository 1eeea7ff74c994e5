package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/aretelabs/storesync/internal/config"
	"github.com/aretelabs/storesync/internal/domain"
)

// Client is the SQS-backed ingestion side channel. The API process
// publishes tasks through it; the worker consumes them.
type Client struct {
	client *sqs.Client
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient builds the SQS client. A non-empty Endpoint switches to a
// local ElasticMQ setup with static dummy credentials.
func NewClient(ctx context.Context, cfg envConfig.SQS, log *zap.Logger) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	var clientOpts []func(*sqs.Options)

	if cfg.Endpoint != "" {
		log.Info("Using local SQS endpoint", zap.String("endpoint", cfg.Endpoint))
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Side channel client created",
		zap.String("region", cfg.Region),
		zap.String("queue_url", cfg.QueueURL))

	return &Client{
		client: sqs.NewFromConfig(awsCfg, clientOpts...),
		config: cfg,
		log:    log,
	}, nil
}

func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.client.ReceiveMessage(ctx, input)
}

func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.client.DeleteMessage(ctx, input)
}

// QueueURL returns the configured queue URL.
func (c *Client) QueueURL() string {
	return c.config.QueueURL
}

// PublishTask publishes an ingestion task to the side channel.
func (c *Client) PublishTask(ctx context.Context, task *domain.IngestionTask) error {
	bodyJSON, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal ingestion task: %w", err)
	}

	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.config.QueueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Resource": {
				DataType:    aws.String("String"),
				StringValue: aws.String(task.Resource),
			},
			"TenantID": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.FormatInt(task.TenantID, 10)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Debug("Ingestion task published",
		zap.Int64("tenant_id", task.TenantID),
		zap.String("resource", task.Resource),
		zap.Int64("external_id", task.ExternalID))

	return nil
}
