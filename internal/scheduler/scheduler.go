// Package scheduler sweeps every active tenant on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/ingest"
	"github.com/aretelabs/storesync/internal/store"
)

// TenantSyncer runs one tenant's sync. Satisfied by *ingest.Syncer.
type TenantSyncer interface {
	SyncTenant(ctx context.Context, tenant *domain.Tenant) *ingest.Result
}

// Scheduler triggers a sequential sweep of all active tenants at a
// fixed interval. Sequential keeps load on the store and the upstream
// API bounded; one tenant's failure never stops the sweep, and there
// is no intra-sweep retry.
type Scheduler struct {
	tenants  store.TenantStore
	syncer   TenantSyncer
	interval time.Duration
	log      *zap.Logger
}

// New creates a scheduler.
func New(tenants store.TenantStore, syncer TenantSyncer, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		tenants:  tenants,
		syncer:   syncer,
		interval: interval,
		log:      log,
	}
}

// Run sweeps until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("Scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler shutting down")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep syncs every active tenant once, in order.
func (s *Scheduler) Sweep(ctx context.Context) {
	s.log.Info("Running scheduled sync sweep")

	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		s.log.Error("Failed to list active tenants", zap.Error(err))
		return
	}

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			return
		}

		result := s.syncer.SyncTenant(ctx, tenant)
		if !result.Success() {
			s.log.Error("Scheduled sync failed",
				zap.Int64("tenant_id", tenant.ID),
				zap.String("shop_domain", tenant.ShopDomain),
				zap.Error(result.Err()))
			continue
		}

		// Sync bookkeeping is the caller's job, not the orchestrator's.
		if err := s.tenants.TouchLastSync(ctx, tenant.ID); err != nil {
			s.log.Error("Failed to record sync completion",
				zap.Int64("tenant_id", tenant.ID),
				zap.Error(err))
		}
	}

	s.log.Info("Scheduled sync sweep completed", zap.Int("tenant_count", len(tenants)))
}
