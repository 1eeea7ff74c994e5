package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"shop_domain is required"`
}

// TenantResponse represents a connected shop
type TenantResponse struct {
	ID         int64  `json:"id" example:"12"`
	ShopDomain string `json:"shop_domain" example:"acme-store.myshopify.com"`
	ShopName   string `json:"shop_name" example:"Acme Store"`
	IsActive   bool   `json:"is_active" example:"true"`
	LastSyncAt string `json:"last_sync_at,omitempty" example:"2024-05-01T12:00:00Z"`
	CreatedAt  string `json:"created_at" example:"2024-04-28T09:30:00Z"`
}

// SyncTriggeredResponse acknowledges a sync request
type SyncTriggeredResponse struct {
	AttemptID string `json:"attempt_id" example:"8f14e45f-ceea-467f-9b26-1d5be3c6a1a2"`
	TenantID  int64  `json:"tenant_id" example:"12"`
	State     string `json:"state" example:"running"`
}

// ResourceOutcomeResponse reports one resource phase of a sync
type ResourceOutcomeResponse struct {
	Synced int    `json:"synced" example:"240"`
	Failed int    `json:"failed" example:"2"`
	Error  string `json:"error,omitempty" example:"fetch orders: status 503"`
}

// SyncAttemptResponse reports the state of one sync attempt
type SyncAttemptResponse struct {
	AttemptID  string                   `json:"attempt_id" example:"8f14e45f-ceea-467f-9b26-1d5be3c6a1a2"`
	TenantID   int64                    `json:"tenant_id" example:"12"`
	State      string                   `json:"state" example:"succeeded"`
	StartedAt  string                   `json:"started_at" example:"2024-05-01T12:00:00Z"`
	FinishedAt string                   `json:"finished_at,omitempty" example:"2024-05-01T12:02:14Z"`
	Error      string                   `json:"error,omitempty"`
	Customers  *ResourceOutcomeResponse `json:"customers,omitempty"`
	Products   *ResourceOutcomeResponse `json:"products,omitempty"`
	Orders     *ResourceOutcomeResponse `json:"orders,omitempty"`
}

// WebhookAckResponse acknowledges receipt of a webhook delivery
type WebhookAckResponse struct {
	Received bool `json:"received" example:"true"`
}
