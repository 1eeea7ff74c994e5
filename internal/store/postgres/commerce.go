package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
)

// CommerceRepository implements store.CommerceStore. Every upsert is a
// single statement; the (tenant_id, shopify_*_id) unique constraints do
// the conflict resolution, so racing webhook and sync writes converge
// on last-write-wins without application locking.
type CommerceRepository struct {
	client *Client
	log    *zap.Logger
}

// NewCommerceRepository creates the commerce store over a shared client.
func NewCommerceRepository(client *Client, log *zap.Logger) *CommerceRepository {
	return &CommerceRepository{client: client, log: log}
}

func (r *CommerceRepository) UpsertCustomer(ctx context.Context, tenantID int64, c *domain.Customer) error {
	_, err := r.client.db.ExecContext(ctx,
		`INSERT INTO customers
		 (tenant_id, shopify_customer_id, email, first_name, last_name, phone,
		  total_spent, orders_count, missing_identity, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
		  $7, $8, $9, $10, $11)
		 ON CONFLICT (tenant_id, shopify_customer_id) DO UPDATE SET
		 email = EXCLUDED.email,
		 first_name = EXCLUDED.first_name,
		 last_name = EXCLUDED.last_name,
		 phone = EXCLUDED.phone,
		 total_spent = EXCLUDED.total_spent,
		 orders_count = EXCLUDED.orders_count,
		 missing_identity = EXCLUDED.missing_identity,
		 updated_at = EXCLUDED.updated_at,
		 synced_at = NOW()`,
		tenantID, c.ExternalID, c.Email, c.FirstName, c.LastName, c.Phone,
		c.TotalSpent, c.OrdersCount, c.MissingIdentity, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert customer %d: %w", c.ExternalID, err)
	}
	return nil
}

func (r *CommerceRepository) UpsertProduct(ctx context.Context, tenantID int64, p *domain.Product) error {
	_, err := r.client.db.ExecContext(ctx,
		`INSERT INTO products
		 (tenant_id, shopify_product_id, title, handle, vendor, product_type,
		  status, total_inventory, price, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
		  NULLIF($7, ''), $8, $9, $10, $11)
		 ON CONFLICT (tenant_id, shopify_product_id) DO UPDATE SET
		 title = EXCLUDED.title,
		 handle = EXCLUDED.handle,
		 vendor = EXCLUDED.vendor,
		 product_type = EXCLUDED.product_type,
		 status = EXCLUDED.status,
		 total_inventory = EXCLUDED.total_inventory,
		 price = EXCLUDED.price,
		 updated_at = EXCLUDED.updated_at,
		 synced_at = NOW()`,
		tenantID, p.ExternalID, p.Title, p.Handle, p.Vendor, p.ProductType,
		p.Status, p.TotalInventory, p.Price, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ExternalID, err)
	}
	return nil
}

func (r *CommerceRepository) UpsertOrder(ctx context.Context, tenantID int64, o *domain.Order, customerID *int64) error {
	_, err := r.client.db.ExecContext(ctx,
		`INSERT INTO orders
		 (tenant_id, shopify_order_id, order_number, customer_id, email,
		  financial_status, fulfillment_status, total_price, subtotal_price,
		  total_tax, total_discounts, currency, order_date, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''),
		  NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, NULLIF($12, ''), $13, $14, $15)
		 ON CONFLICT (tenant_id, shopify_order_id) DO UPDATE SET
		 order_number = EXCLUDED.order_number,
		 customer_id = EXCLUDED.customer_id,
		 email = EXCLUDED.email,
		 financial_status = EXCLUDED.financial_status,
		 fulfillment_status = EXCLUDED.fulfillment_status,
		 total_price = EXCLUDED.total_price,
		 subtotal_price = EXCLUDED.subtotal_price,
		 total_tax = EXCLUDED.total_tax,
		 total_discounts = EXCLUDED.total_discounts,
		 currency = EXCLUDED.currency,
		 order_date = EXCLUDED.order_date,
		 updated_at = EXCLUDED.updated_at,
		 synced_at = NOW()`,
		tenantID, o.ExternalID, o.OrderNumber, customerID, o.Email,
		o.FinancialStatus, o.FulfillmentStatus, o.TotalPrice, o.SubtotalPrice,
		o.TotalTax, o.TotalDiscounts, o.Currency, o.OrderDate, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert order %d: %w", o.ExternalID, err)
	}
	return nil
}

func (r *CommerceRepository) DeleteCustomer(ctx context.Context, tenantID, externalID int64) (bool, error) {
	return r.deleteByExternalID(ctx, "customers", "shopify_customer_id", tenantID, externalID)
}

func (r *CommerceRepository) DeleteProduct(ctx context.Context, tenantID, externalID int64) (bool, error) {
	return r.deleteByExternalID(ctx, "products", "shopify_product_id", tenantID, externalID)
}

func (r *CommerceRepository) deleteByExternalID(ctx context.Context, table, column string, tenantID, externalID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1 AND %s = $2`, table, column)
	result, err := r.client.db.ExecContext(ctx, query, tenantID, externalID)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return affected > 0, nil
}

func (r *CommerceRepository) LookupCustomerID(ctx context.Context, tenantID, externalCustomerID int64) (*int64, error) {
	if externalCustomerID == 0 {
		return nil, nil
	}

	var id int64
	err := r.client.db.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE tenant_id = $1 AND shopify_customer_id = $2`,
		tenantID, externalCustomerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup customer %d: %w", externalCustomerID, err)
	}
	return &id, nil
}

func (r *CommerceRepository) MaxOrderExternalID(ctx context.Context, tenantID int64) (int64, error) {
	var maxID int64
	err := r.client.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(shopify_order_id), 0) FROM orders WHERE tenant_id = $1`,
		tenantID).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("max order id: %w", err)
	}
	return maxID, nil
}

func (r *CommerceRepository) AppendCustomEvent(ctx context.Context, tenantID int64, ev *domain.CustomEvent) error {
	_, err := r.client.db.ExecContext(ctx,
		`INSERT INTO custom_events
		 (tenant_id, event_type, event_data, customer_id, order_id, product_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tenantID, ev.Type, ev.Payload, ev.CustomerID, ev.OrderID, ev.ProductID, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("append custom event %q: %w", ev.Type, err)
	}
	return nil
}
