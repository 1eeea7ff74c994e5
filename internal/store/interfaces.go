package store

import (
	"context"
	"errors"

	"github.com/aretelabs/storesync/internal/domain"
)

// ErrNotFound signals a lookup miss. Deletes never return it; deleting
// an absent row is a no-op success.
var ErrNotFound = errors.New("not found")

// TenantStore is the tenant registry.
type TenantStore interface {
	// Create inserts a tenant and returns its id.
	Create(ctx context.Context, tenant *domain.Tenant) (int64, error)

	// GetByID returns a tenant or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Tenant, error)

	// GetByDomain returns the tenant owning a shop domain or ErrNotFound.
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)

	// ListActive returns every tenant eligible for the scheduled sweep.
	ListActive(ctx context.Context) ([]*domain.Tenant, error)

	// TouchLastSync records a completed sync. Called by the sync
	// caller, never by the orchestrator.
	TouchLastSync(ctx context.Context, id int64) error

	// SetWebhookSecret stores the encrypted webhook secret copy.
	SetWebhookSecret(ctx context.Context, id int64, encrypted string) error

	// Delete removes a tenant; commerce rows cascade.
	Delete(ctx context.Context, id int64) error
}

// CommerceStore is the idempotent persistence layer for synced commerce
// data. Every upsert is a single atomic insert-or-update keyed by
// (tenant, external id); the uniqueness constraint is the serialization
// point for racing entry points.
type CommerceStore interface {
	UpsertCustomer(ctx context.Context, tenantID int64, c *domain.Customer) error
	UpsertProduct(ctx context.Context, tenantID int64, p *domain.Product) error

	// UpsertOrder persists an order with an already-resolved local
	// customer id; nil is a legitimate unresolved link.
	UpsertOrder(ctx context.Context, tenantID int64, o *domain.Order, customerID *int64) error

	// DeleteCustomer and DeleteProduct are idempotent and report
	// whether a row was actually removed.
	DeleteCustomer(ctx context.Context, tenantID, externalID int64) (bool, error)
	DeleteProduct(ctx context.Context, tenantID, externalID int64) (bool, error)

	// LookupCustomerID resolves an external customer id to the local
	// row id, nil when the customer is not yet known locally.
	LookupCustomerID(ctx context.Context, tenantID, externalCustomerID int64) (*int64, error)

	// MaxOrderExternalID returns the highest synced external order id
	// for a tenant, zero when no orders exist yet.
	MaxOrderExternalID(ctx context.Context, tenantID int64) (int64, error)

	// AppendCustomEvent writes one append-only event log entry.
	AppendCustomEvent(ctx context.Context, tenantID int64, ev *domain.CustomEvent) error
}
