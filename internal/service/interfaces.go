package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aretelabs/storesync/internal/domain"
)

// TenantServicer defines tenant onboarding operations.
type TenantServicer interface {
	Onboard(ctx context.Context, params OnboardParams) (*domain.Tenant, error)
}

// SyncServicer defines supervised fire-and-forget sync operations.
// Completion is observable through attempt records and the tenant's
// last-sync timestamp, never synchronously.
type SyncServicer interface {
	Trigger(ctx context.Context, tenantID int64) (Attempt, error)
	Attempt(tenantID int64, attemptID uuid.UUID) (Attempt, bool)
	Latest(tenantID int64) (Attempt, bool)
}
