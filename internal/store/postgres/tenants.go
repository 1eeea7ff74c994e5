package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/store"
)

// TenantRepository implements store.TenantStore.
type TenantRepository struct {
	client *Client
	log    *zap.Logger
}

// NewTenantRepository creates the tenant registry over a shared client.
func NewTenantRepository(client *Client, log *zap.Logger) *TenantRepository {
	return &TenantRepository{client: client, log: log}
}

const tenantColumns = `id, shop_domain, COALESCE(shop_name, ''), access_token,
	COALESCE(webhook_secret, ''), is_active, last_sync_at, created_at, updated_at`

func scanTenant(row *sql.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	var lastSync sql.NullTime
	err := row.Scan(&t.ID, &t.ShopDomain, &t.ShopName, &t.AccessToken,
		&t.WebhookSecret, &t.IsActive, &lastSync, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	if lastSync.Valid {
		t.LastSyncAt = &lastSync.Time
	}
	return &t, nil
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) (int64, error) {
	var id int64
	err := r.client.db.QueryRowContext(ctx,
		`INSERT INTO tenants (shop_domain, shop_name, access_token, is_active)
		 VALUES ($1, $2, $3, TRUE)
		 RETURNING id`,
		tenant.ShopDomain, tenant.ShopName, tenant.AccessToken).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create tenant: %w", err)
	}

	r.log.Info("Tenant created",
		zap.Int64("tenant_id", id),
		zap.String("shop_domain", tenant.ShopDomain))
	return id, nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	row := r.client.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

func (r *TenantRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	row := r.client.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE shop_domain = $1`, shopDomain)
	return scanTenant(row)
}

func (r *TenantRepository) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := r.client.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		var lastSync sql.NullTime
		if err := rows.Scan(&t.ID, &t.ShopDomain, &t.ShopName, &t.AccessToken,
			&t.WebhookSecret, &t.IsActive, &lastSync, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		if lastSync.Valid {
			t.LastSyncAt = &lastSync.Time
		}
		tenants = append(tenants, &t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepository) TouchLastSync(ctx context.Context, id int64) error {
	_, err := r.client.db.ExecContext(ctx,
		`UPDATE tenants SET last_sync_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last sync: %w", err)
	}
	return nil
}

func (r *TenantRepository) SetWebhookSecret(ctx context.Context, id int64, encrypted string) error {
	_, err := r.client.db.ExecContext(ctx,
		`UPDATE tenants SET webhook_secret = $2, updated_at = NOW() WHERE id = $1`, id, encrypted)
	if err != nil {
		return fmt.Errorf("set webhook secret: %w", err)
	}
	return nil
}

func (r *TenantRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.client.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	r.log.Info("Tenant deleted", zap.Int64("tenant_id", id))
	return nil
}
