// Package webhook verifies and dispatches inbound store events. One
// webhook is one record; dispatch reuses the same normalize and upsert
// contracts as the bulk sync path.
package webhook

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/normalize"
	"github.com/aretelabs/storesync/internal/queue"
	"github.com/aretelabs/storesync/internal/store"
)

// Disposition reports what the router did with a topic.
type Disposition string

const (
	// DispositionHandled means a registered handler ran.
	DispositionHandled Disposition = "handled"
	// DispositionIgnored means the topic has no handler. New upstream
	// event types must never cause failures, so ignored is a success.
	DispositionIgnored Disposition = "ignored"
)

// Topics registered at onboarding. The router handles exactly these;
// anything else is acknowledged and ignored.
var RegisteredTopics = []string{
	"orders/create", "orders/update", "orders/paid",
	"orders/cancelled", "orders/fulfilled",
	"customers/create", "customers/update", "customers/delete",
	"products/create", "products/update", "products/delete",
	"checkouts/create", "carts/create",
}

type handlerFunc func(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error

// Router maps event topics to handlers. The mapping is built once at
// construction, explicit rather than a switch with a silent default.
type Router struct {
	commerce store.CommerceStore
	tasks    queue.TaskPublisher
	log      *zap.Logger
	handlers map[string]handlerFunc
}

// NewRouter builds the topic table. tasks may be nil.
func NewRouter(commerce store.CommerceStore, tasks queue.TaskPublisher, log *zap.Logger) *Router {
	r := &Router{
		commerce: commerce,
		tasks:    tasks,
		log:      log,
	}

	r.handlers = map[string]handlerFunc{
		"orders/create":    r.upsertOrder,
		"orders/update":    r.upsertOrder,
		"orders/paid":      r.upsertOrder,
		"orders/cancelled": r.upsertOrder,
		"orders/fulfilled": r.upsertOrder,
		"customers/create": r.upsertCustomer,
		"customers/update": r.upsertCustomer,
		"customers/delete": r.deleteCustomer,
		"products/create":  r.upsertProduct,
		"products/update":  r.upsertProduct,
		"products/delete":  r.deleteProduct,
		"checkouts/create": r.customEvent("checkout_started"),
		"carts/create":     r.customEvent("cart_created"),
	}

	return r
}

// Dispatch routes one verified, parsed webhook. The returned error is
// the handler's internal failure; callers acknowledge the webhook
// either way.
func (r *Router) Dispatch(ctx context.Context, tenant *domain.Tenant, topic string, payload map[string]any) (Disposition, error) {
	handler, ok := r.handlers[topic]
	if !ok {
		r.log.Info("Ignoring unhandled webhook topic",
			zap.String("topic", topic),
			zap.Int64("tenant_id", tenant.ID))
		return DispositionIgnored, nil
	}

	if err := handler(ctx, tenant, payload); err != nil {
		r.log.Error("Webhook handler failed",
			zap.String("topic", topic),
			zap.Int64("tenant_id", tenant.ID),
			zap.Int64("external_id", normalize.ExternalID(payload)),
			zap.Error(err))
		return DispositionHandled, err
	}

	r.log.Info("Webhook handled",
		zap.String("topic", topic),
		zap.Int64("tenant_id", tenant.ID))
	return DispositionHandled, nil
}

func (r *Router) upsertCustomer(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error {
	r.publishTask(ctx, tenant.ID, domain.ResourceCustomer, payload)

	customer, err := normalize.Customer(payload)
	if err != nil {
		return err
	}
	return r.commerce.UpsertCustomer(ctx, tenant.ID, &customer)
}

func (r *Router) upsertProduct(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error {
	r.publishTask(ctx, tenant.ID, domain.ResourceProduct, payload)

	product, err := normalize.Product(payload)
	if err != nil {
		return err
	}
	return r.commerce.UpsertProduct(ctx, tenant.ID, &product)
}

func (r *Router) upsertOrder(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error {
	r.publishTask(ctx, tenant.ID, domain.ResourceOrder, payload)

	order, err := normalize.Order(payload)
	if err != nil {
		return err
	}

	var customerID *int64
	if order.CustomerExternalID != 0 {
		customerID, err = r.commerce.LookupCustomerID(ctx, tenant.ID, order.CustomerExternalID)
		if err != nil {
			return err
		}
	}
	return r.commerce.UpsertOrder(ctx, tenant.ID, &order, customerID)
}

func (r *Router) deleteCustomer(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error {
	removed, err := r.commerce.DeleteCustomer(ctx, tenant.ID, normalize.ExternalID(payload))
	if err != nil {
		return err
	}
	if !removed {
		r.log.Info("Customer delete was a no-op",
			zap.Int64("tenant_id", tenant.ID),
			zap.Int64("external_id", normalize.ExternalID(payload)))
	}
	return nil
}

func (r *Router) deleteProduct(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error {
	removed, err := r.commerce.DeleteProduct(ctx, tenant.ID, normalize.ExternalID(payload))
	if err != nil {
		return err
	}
	if !removed {
		r.log.Info("Product delete was a no-op",
			zap.Int64("tenant_id", tenant.ID),
			zap.Int64("external_id", normalize.ExternalID(payload)))
	}
	return nil
}

// customEvent appends ephemeral commerce actions to the event log.
// These topics have no persisted entity of their own.
func (r *Router) customEvent(eventType string) handlerFunc {
	return func(ctx context.Context, tenant *domain.Tenant, payload map[string]any) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		occurredAt := time.Now().UTC()
		if ts := normalize.Timestamp(payload, "occurred_at", "created_at"); ts != nil {
			occurredAt = *ts
		}

		ev := &domain.CustomEvent{
			Type:       eventType,
			Payload:    data,
			CustomerID: normalize.OptionalID(payload, "customer_id"),
			OrderID:    normalize.OptionalID(payload, "order_id"),
			ProductID:  normalize.OptionalID(payload, "product_id"),
			OccurredAt: occurredAt,
		}

		r.publishTask(ctx, tenant.ID, domain.ResourceEvent, payload)
		return r.commerce.AppendCustomEvent(ctx, tenant.ID, ev)
	}
}

// publishTask mirrors the record to the side channel, best effort.
func (r *Router) publishTask(ctx context.Context, tenantID int64, resource string, payload map[string]any) {
	if r.tasks == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Warn("Failed to marshal task payload", zap.Error(err))
		return
	}

	task := &domain.IngestionTask{
		TenantID:   tenantID,
		Resource:   resource,
		ExternalID: normalize.ExternalID(payload),
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := r.tasks.PublishTask(ctx, task); err != nil {
		r.log.Warn("Failed to publish ingestion task",
			zap.Int64("tenant_id", tenantID),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
