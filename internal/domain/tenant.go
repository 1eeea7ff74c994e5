package domain

import "time"

// Tenant is one connected store. All commerce records are scoped to a
// tenant and cascade-deleted with it.
type Tenant struct {
	ID          int64
	ShopDomain  string
	ShopName    string
	AccessToken string
	// WebhookSecret is stored encrypted; the verifier uses the shared
	// process-wide secret, this copy is bookkeeping from registration.
	WebhookSecret string
	IsActive      bool
	LastSyncAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
