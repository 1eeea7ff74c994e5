package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds process-level settings shared by both binaries.
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

// Postgres holds the authoritative store connection settings.
type Postgres struct {
	DSN             string `envconfig:"POSTGRES_DSN" required:"true"`
	MaxOpenConns    int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"POSTGRES_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// ClickHouse holds the analytics mirror sink settings.
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// SQS holds the ingestion side-channel queue settings. Endpoint is only
// set for local development against ElasticMQ.
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

// Shopify holds upstream API settings shared across tenants. The access
// token itself is per tenant and lives in the tenant registry.
type Shopify struct {
	APIVersion     string `envconfig:"SHOPIFY_API_VERSION" default:"2024-01"`
	PageSize       int    `envconfig:"SHOPIFY_PAGE_SIZE" default:"250"`
	TimeoutSec     int    `envconfig:"SHOPIFY_TIMEOUT_SEC" default:"15"`
	WebhookSecret  string `envconfig:"SHOPIFY_WEBHOOK_SECRET"`
	WebhookBaseURL string `envconfig:"WEBHOOK_BASE_URL"`
}

// Scheduler holds the periodic sweep settings.
type Scheduler struct {
	SyncIntervalSec int `envconfig:"SCHEDULER_SYNC_INTERVAL_SEC" default:"3600"`
}

// Consumer holds the mirror pipeline settings for the worker binary.
type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Secrets holds the encryption-at-rest key for stored webhook secrets.
type Secrets struct {
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`
}

type Config struct {
	Service    Service
	Postgres   Postgres
	ClickHouse ClickHouse
	SQS        SQS
	Shopify    Shopify
	Scheduler  Scheduler
	Consumer   Consumer
	Secrets    Secrets
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
