package postgres

import (
	"context"
	"fmt"
)

// Tables are created on startup. External ids are unique per tenant,
// not globally; tenant removal cascades through every commerce table;
// an order keeps its row when its customer is deleted (link nulls out).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id BIGSERIAL PRIMARY KEY,
		shop_domain TEXT UNIQUE NOT NULL,
		shop_name TEXT,
		access_token TEXT NOT NULL,
		webhook_secret TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_sync_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		shopify_customer_id BIGINT NOT NULL,
		email TEXT,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		total_spent NUMERIC(12,2) NOT NULL DEFAULT 0,
		orders_count INT NOT NULL DEFAULT 0,
		missing_identity BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ,
		synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, shopify_customer_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_tenant ON customers (tenant_id)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		shopify_product_id BIGINT NOT NULL,
		title TEXT,
		handle TEXT,
		vendor TEXT,
		product_type TEXT,
		status TEXT,
		total_inventory INT NOT NULL DEFAULT 0,
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ,
		synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, shopify_product_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_tenant ON products (tenant_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		shopify_order_id BIGINT NOT NULL,
		order_number TEXT,
		customer_id BIGINT REFERENCES customers(id) ON DELETE SET NULL,
		email TEXT,
		financial_status TEXT,
		fulfillment_status TEXT,
		total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		subtotal_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_tax NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_discounts NUMERIC(12,2) NOT NULL DEFAULT 0,
		currency TEXT,
		order_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ,
		synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, shopify_order_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_tenant ON orders (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders (order_date)`,
	`CREATE TABLE IF NOT EXISTS custom_events (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		event_type TEXT NOT NULL,
		event_data JSONB,
		customer_id BIGINT,
		order_id BIGINT,
		product_id BIGINT,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_events_tenant ON custom_events (tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_events_occurred ON custom_events (occurred_at)`,
}

// InitSchema creates the tables if they do not exist.
func (c *Client) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	c.log.Info("Database schema initialized")
	return nil
}
