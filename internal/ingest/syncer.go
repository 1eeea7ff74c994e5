// Package ingest drives full-tenant synchronization: page through the
// upstream API, normalize, upsert, and feed the side channel. It holds
// no state between calls, so overlapping syncs for the same tenant are
// safe; the store's uniqueness constraints serialize their writes.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/normalize"
	"github.com/aretelabs/storesync/internal/queue"
	"github.com/aretelabs/storesync/internal/shopify"
	"github.com/aretelabs/storesync/internal/store"
)

// APIClient is the upstream surface the syncer needs from one tenant's
// Shopify client.
type APIClient interface {
	ListCustomers(ctx context.Context, limit int, pageInfo string) ([]map[string]any, string, error)
	ListProducts(ctx context.Context, limit int, pageInfo string) ([]map[string]any, string, error)
	ListOrders(ctx context.Context, limit int, pageInfo string, sinceID int64) ([]map[string]any, string, error)
}

// ClientFactory builds an API client for one tenant's credentials.
type ClientFactory func(creds shopify.Credentials) APIClient

// Syncer runs one tenant's synchronization. Dependencies are injected;
// tasks may be nil when no side channel is configured.
type Syncer struct {
	clients     ClientFactory
	commerce    store.CommerceStore
	tasks       queue.TaskPublisher
	pageSize    int
	callTimeout time.Duration
	log         *zap.Logger
}

// NewSyncer creates a syncer.
func NewSyncer(clients ClientFactory, commerce store.CommerceStore, tasks queue.TaskPublisher, pageSize int, callTimeout time.Duration, log *zap.Logger) *Syncer {
	return &Syncer{
		clients:     clients,
		commerce:    commerce,
		tasks:       tasks,
		pageSize:    pageSize,
		callTimeout: callTimeout,
		log:         log,
	}
}

// SyncTenant syncs customers, then products, then orders. Orders come
// last so customer links can resolve against rows written moments
// earlier. Each phase runs even when an earlier one failed; the result
// records what happened per phase.
func (s *Syncer) SyncTenant(ctx context.Context, tenant *domain.Tenant) *Result {
	client := s.clients(shopify.Credentials{
		ShopDomain:  tenant.ShopDomain,
		AccessToken: tenant.AccessToken,
	})

	log := s.log.With(
		zap.Int64("tenant_id", tenant.ID),
		zap.String("shop_domain", tenant.ShopDomain))

	result := &Result{}

	s.syncResource(ctx, log, domain.ResourceCustomer, &result.Customers,
		func(ctx context.Context, pageInfo string) ([]map[string]any, string, error) {
			return client.ListCustomers(ctx, s.pageSize, pageInfo)
		},
		func(ctx context.Context, raw map[string]any) error {
			return s.processCustomer(ctx, tenant.ID, raw)
		})

	s.syncResource(ctx, log, domain.ResourceProduct, &result.Products,
		func(ctx context.Context, pageInfo string) ([]map[string]any, string, error) {
			return client.ListProducts(ctx, s.pageSize, pageInfo)
		},
		func(ctx context.Context, raw map[string]any) error {
			return s.processProduct(ctx, tenant.ID, raw)
		})

	s.syncOrders(ctx, log, client, tenant.ID, &result.Orders)

	log.Info("Tenant sync finished",
		zap.String("result", result.String()),
		zap.Bool("success", result.Success()))

	return result
}

// syncResource pages through one resource type. A fetch failure ends
// this resource only; a bad record is counted and skipped, never
// aborting the page.
func (s *Syncer) syncResource(
	ctx context.Context,
	log *zap.Logger,
	resource string,
	out *ResourceOutcome,
	fetch func(context.Context, string) ([]map[string]any, string, error),
	process func(context.Context, map[string]any) error,
) {
	pageInfo := ""
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		records, nextPageInfo, err := fetch(fetchCtx, pageInfo)
		cancel()

		if err != nil {
			out.Err = err
			log.Error("Resource sync aborted",
				zap.String("resource", resource),
				zap.Error(err))
			return
		}

		for _, raw := range records {
			if err := process(ctx, raw); err != nil {
				out.Failed++
				log.Warn("Record failed",
					zap.String("resource", resource),
					zap.Int64("external_id", normalize.ExternalID(raw)),
					zap.Error(err))
				continue
			}
			out.Synced++
		}

		if nextPageInfo == "" {
			log.Info("Resource synced",
				zap.String("resource", resource),
				zap.Int("synced", out.Synced),
				zap.Int("failed", out.Failed))
			return
		}
		pageInfo = nextPageInfo
	}
}

// syncOrders bounds the first page by the highest order id already
// stored, so a full historical backfill happens only once per tenant.
func (s *Syncer) syncOrders(ctx context.Context, log *zap.Logger, client APIClient, tenantID int64, out *ResourceOutcome) {
	sinceID, err := s.commerce.MaxOrderExternalID(ctx, tenantID)
	if err != nil {
		out.Err = err
		log.Error("Resource sync aborted",
			zap.String("resource", domain.ResourceOrder),
			zap.Error(err))
		return
	}

	s.syncResource(ctx, log, domain.ResourceOrder, out,
		func(ctx context.Context, pageInfo string) ([]map[string]any, string, error) {
			return client.ListOrders(ctx, s.pageSize, pageInfo, sinceID)
		},
		func(ctx context.Context, raw map[string]any) error {
			return s.processOrder(ctx, tenantID, raw)
		})
}

func (s *Syncer) processCustomer(ctx context.Context, tenantID int64, raw map[string]any) error {
	s.publishTask(ctx, tenantID, domain.ResourceCustomer, raw)

	customer, err := normalize.Customer(raw)
	if err != nil {
		return err
	}
	if customer.MissingIdentity {
		s.log.Debug("Customer has no identifying data",
			zap.Int64("tenant_id", tenantID),
			zap.Int64("external_id", customer.ExternalID))
	}
	return s.commerce.UpsertCustomer(ctx, tenantID, &customer)
}

func (s *Syncer) processProduct(ctx context.Context, tenantID int64, raw map[string]any) error {
	s.publishTask(ctx, tenantID, domain.ResourceProduct, raw)

	product, err := normalize.Product(raw)
	if err != nil {
		return err
	}
	return s.commerce.UpsertProduct(ctx, tenantID, &product)
}

func (s *Syncer) processOrder(ctx context.Context, tenantID int64, raw map[string]any) error {
	s.publishTask(ctx, tenantID, domain.ResourceOrder, raw)

	order, err := normalize.Order(raw)
	if err != nil {
		return err
	}

	var customerID *int64
	if order.CustomerExternalID != 0 {
		customerID, err = s.commerce.LookupCustomerID(ctx, tenantID, order.CustomerExternalID)
		if err != nil {
			return err
		}
	}
	return s.commerce.UpsertOrder(ctx, tenantID, &order, customerID)
}

// publishTask feeds the side channel. Best effort only: the queue is a
// non-authoritative mirror feed and must never fail the sync.
func (s *Syncer) publishTask(ctx context.Context, tenantID int64, resource string, raw map[string]any) {
	if s.tasks == nil {
		return
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		s.log.Warn("Failed to marshal task payload",
			zap.Int64("tenant_id", tenantID),
			zap.String("resource", resource),
			zap.Error(err))
		return
	}

	task := &domain.IngestionTask{
		TenantID:   tenantID,
		Resource:   resource,
		ExternalID: normalize.ExternalID(raw),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.tasks.PublishTask(ctx, task); err != nil {
		s.log.Warn("Failed to publish ingestion task",
			zap.Int64("tenant_id", tenantID),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
