package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/secrets"
	"github.com/aretelabs/storesync/internal/shopify"
	"github.com/aretelabs/storesync/internal/store"
	"github.com/aretelabs/storesync/internal/webhook"
)

var (
	// ErrInvalidCredentials rejects onboarding with a bad token or
	// domain, immediately rather than on the first scheduled sync.
	ErrInvalidCredentials = errors.New("invalid shop domain or access token")

	// ErrTenantExists rejects connecting an already-connected shop.
	ErrTenantExists = errors.New("shop is already connected")
)

// StoreAPI is the upstream surface onboarding needs.
type StoreAPI interface {
	GetShopInfo(ctx context.Context) (map[string]any, error)
	ListWebhooks(ctx context.Context) ([]map[string]any, error)
	RegisterWebhook(ctx context.Context, topic, address string) error
}

// StoreAPIFactory builds a StoreAPI for one tenant's credentials.
type StoreAPIFactory func(creds shopify.Credentials) StoreAPI

// OnboardParams is the input to tenant creation.
type OnboardParams struct {
	ShopDomain  string
	AccessToken string
	ShopName    string
}

// TenantService handles onboarding: credential validation against the
// live upstream, tenant creation, webhook registration, and the
// initial background sync.
type TenantService struct {
	tenants        store.TenantStore
	clients        StoreAPIFactory
	sync           SyncServicer
	encryptor      *secrets.Encryptor
	webhookSecret  string
	webhookBaseURL string
	log            *zap.Logger
}

// NewTenantService creates a tenant service. encryptor may be nil when
// no encryption key is configured; webhookBaseURL may be empty, which
// disables webhook registration.
func NewTenantService(
	tenants store.TenantStore,
	clients StoreAPIFactory,
	sync SyncServicer,
	encryptor *secrets.Encryptor,
	webhookSecret, webhookBaseURL string,
	log *zap.Logger,
) *TenantService {
	return &TenantService{
		tenants:        tenants,
		clients:        clients,
		sync:           sync,
		encryptor:      encryptor,
		webhookSecret:  webhookSecret,
		webhookBaseURL: webhookBaseURL,
		log:            log,
	}
}

// Onboard validates credentials, creates the tenant, registers
// webhooks (best effort), and kicks off the initial sync. Webhook or
// sync failures never fail the onboarding itself.
func (s *TenantService) Onboard(ctx context.Context, params OnboardParams) (*domain.Tenant, error) {
	client := s.clients(shopify.Credentials{
		ShopDomain:  params.ShopDomain,
		AccessToken: params.AccessToken,
	})

	shopInfo, err := client.GetShopInfo(ctx)
	if err != nil {
		if errors.Is(err, shopify.ErrCredentialRejected) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("verify shop credentials: %w", err)
	}

	if _, err := s.tenants.GetByDomain(ctx, params.ShopDomain); err == nil {
		return nil, ErrTenantExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing tenant: %w", err)
	}

	shopName := params.ShopName
	if shopName == "" {
		if name, ok := shopInfo["name"].(string); ok {
			shopName = name
		}
	}

	tenant := &domain.Tenant{
		ShopDomain:  params.ShopDomain,
		ShopName:    shopName,
		AccessToken: params.AccessToken,
		IsActive:    true,
	}

	id, err := s.tenants.Create(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	tenant.ID = id

	s.registerWebhooks(ctx, client, tenant)

	if s.sync != nil {
		if _, err := s.sync.Trigger(ctx, id); err != nil {
			s.log.Error("Failed to trigger initial sync",
				zap.Int64("tenant_id", id),
				zap.Error(err))
		}
	}

	return tenant, nil
}

// registerWebhooks subscribes the standard topic set, skipping topics
// the shop already has, and stores the encrypted secret copy. All
// failures here are logged and swallowed.
func (s *TenantService) registerWebhooks(ctx context.Context, client StoreAPI, tenant *domain.Tenant) {
	if s.webhookBaseURL == "" {
		return
	}
	address := s.webhookBaseURL + "/webhooks/shopify"

	existingTopics := make(map[string]bool)
	existing, err := client.ListWebhooks(ctx)
	if err != nil {
		s.log.Error("Failed to list existing webhooks",
			zap.Int64("tenant_id", tenant.ID),
			zap.Error(err))
		return
	}
	for _, wh := range existing {
		if topic, ok := wh["topic"].(string); ok {
			existingTopics[topic] = true
		}
	}

	registered := 0
	for _, topic := range webhook.RegisteredTopics {
		if existingTopics[topic] {
			continue
		}
		if err := client.RegisterWebhook(ctx, topic, address); err != nil {
			s.log.Error("Failed to register webhook",
				zap.Int64("tenant_id", tenant.ID),
				zap.String("topic", topic),
				zap.Error(err))
			continue
		}
		registered++
	}

	s.log.Info("Webhooks registered",
		zap.Int64("tenant_id", tenant.ID),
		zap.Int("registered", registered),
		zap.Int("already_present", len(existingTopics)))

	if s.webhookSecret != "" && s.encryptor != nil {
		encrypted, err := s.encryptor.Encrypt(s.webhookSecret)
		if err != nil {
			s.log.Error("Failed to encrypt webhook secret", zap.Error(err))
			return
		}
		if err := s.tenants.SetWebhookSecret(ctx, tenant.ID, encrypted); err != nil {
			s.log.Error("Failed to store webhook secret",
				zap.Int64("tenant_id", tenant.ID),
				zap.Error(err))
		}
	}
}
