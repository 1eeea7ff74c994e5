package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/docs"
	"github.com/aretelabs/storesync/internal/config"
	"github.com/aretelabs/storesync/internal/handler"
	"github.com/aretelabs/storesync/internal/ingest"
	"github.com/aretelabs/storesync/internal/logger"
	"github.com/aretelabs/storesync/internal/queue/sqs"
	"github.com/aretelabs/storesync/internal/scheduler"
	"github.com/aretelabs/storesync/internal/secrets"
	"github.com/aretelabs/storesync/internal/service"
	"github.com/aretelabs/storesync/internal/shopify"
	"github.com/aretelabs/storesync/internal/store/postgres"
	"github.com/aretelabs/storesync/internal/webhook"
)

// @title StoreSync API
// @version 1.0
// @description API for connecting commerce shops and syncing their data
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	// Initialize Postgres client
	pgClient, err := postgres.NewClient(ctx, &cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer func(pgClient *postgres.Client) {
		if err := pgClient.Close(); err != nil {
			log.Error("Failed to close Postgres client", zap.Error(err))
		}
	}(pgClient)

	if err := pgClient.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepository(pgClient, log)
	commerceRepo := postgres.NewCommerceRepository(pgClient, log)

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// One shared HTTP client for all upstream calls
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Shopify.TimeoutSec) * time.Second,
	}
	apiClients := func(creds shopify.Credentials) ingest.APIClient {
		return shopify.NewClient(creds, cfg.Shopify.APIVersion, httpClient, log)
	}
	storeAPIs := func(creds shopify.Credentials) service.StoreAPI {
		return shopify.NewClient(creds, cfg.Shopify.APIVersion, httpClient, log)
	}

	// Initialize sync orchestrator and services
	callTimeout := time.Duration(cfg.Shopify.TimeoutSec) * time.Second
	syncer := ingest.NewSyncer(apiClients, commerceRepo, sqsClient, cfg.Shopify.PageSize, callTimeout, log)
	syncService := service.NewSyncService(tenantRepo, syncer, log)

	var encryptor *secrets.Encryptor
	if cfg.Secrets.EncryptionKey != "" {
		encryptor, err = secrets.NewEncryptor(cfg.Secrets.EncryptionKey)
		if err != nil {
			log.Fatal("Failed to create encryptor", zap.Error(err))
		}
	}

	tenantService := service.NewTenantService(
		tenantRepo, storeAPIs, syncService, encryptor,
		cfg.Shopify.WebhookSecret, cfg.Shopify.WebhookBaseURL, log)

	// Initialize webhook pipeline
	verifier := webhook.NewVerifier(cfg.Shopify.WebhookSecret, log)
	webhookRouter := webhook.NewRouter(commerceRepo, sqsClient, log)

	// Initialize handler
	h := handler.NewHandler(tenantService, syncService, tenantRepo, verifier, webhookRouter, log)

	// Start the periodic sweep
	interval := time.Duration(cfg.Scheduler.SyncIntervalSec) * time.Second
	sched := scheduler.New(tenantRepo, syncer, interval, log)
	go sched.Run(ctx)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
