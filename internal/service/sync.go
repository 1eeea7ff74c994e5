package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/ingest"
	"github.com/aretelabs/storesync/internal/store"
)

// AttemptState is the lifecycle of one supervised sync attempt.
type AttemptState string

const (
	AttemptRunning   AttemptState = "running"
	AttemptSucceeded AttemptState = "succeeded"
	AttemptFailed    AttemptState = "failed"
)

// Attempt is the status record of one triggered sync, keyed by tenant
// and attempt id. Accessors return copies; the service owns the
// mutable originals.
type Attempt struct {
	ID         uuid.UUID
	TenantID   int64
	State      AttemptState
	StartedAt  time.Time
	FinishedAt *time.Time
	Result     *ingest.Result
	Error      string
}

// TenantSyncer is the orchestrator surface SyncService drives.
type TenantSyncer interface {
	SyncTenant(ctx context.Context, tenant *domain.Tenant) *ingest.Result
}

// SyncService supervises fire-and-forget syncs. A trigger while the
// same tenant's sync is in flight coalesces onto the running attempt:
// overlapping full syncs are safe (every write is an idempotent
// upsert) but waste upstream API quota, so the in-flight guard is a
// hint, not a correctness requirement.
type SyncService struct {
	tenants store.TenantStore
	syncer  TenantSyncer
	log     *zap.Logger

	mu       sync.Mutex
	attempts map[uuid.UUID]*Attempt
	inflight map[int64]uuid.UUID
	latest   map[int64]uuid.UUID
}

// NewSyncService creates a sync service.
func NewSyncService(tenants store.TenantStore, syncer TenantSyncer, log *zap.Logger) *SyncService {
	return &SyncService{
		tenants:  tenants,
		syncer:   syncer,
		log:      log,
		attempts: make(map[uuid.UUID]*Attempt),
		inflight: make(map[int64]uuid.UUID),
		latest:   make(map[int64]uuid.UUID),
	}
}

// Trigger starts a background sync for the tenant and returns its
// attempt record immediately. The request context only guards the
// tenant lookup; the sync itself outlives the request.
func (s *SyncService) Trigger(ctx context.Context, tenantID int64) (Attempt, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return Attempt{}, err
	}

	s.mu.Lock()
	if runningID, ok := s.inflight[tenantID]; ok {
		running := *s.attempts[runningID]
		s.mu.Unlock()
		s.log.Info("Sync trigger coalesced onto running attempt",
			zap.Int64("tenant_id", tenantID),
			zap.String("attempt_id", runningID.String()))
		return running, nil
	}

	attempt := &Attempt{
		ID:        uuid.New(),
		TenantID:  tenantID,
		State:     AttemptRunning,
		StartedAt: time.Now().UTC(),
	}
	s.attempts[attempt.ID] = attempt
	s.inflight[tenantID] = attempt.ID
	s.latest[tenantID] = attempt.ID
	snapshot := *attempt
	s.mu.Unlock()

	s.log.Info("Sync triggered",
		zap.Int64("tenant_id", tenantID),
		zap.String("attempt_id", attempt.ID.String()))

	go s.run(tenant, attempt.ID)

	return snapshot, nil
}

// Attempt returns one attempt's status.
func (s *SyncService) Attempt(tenantID int64, attemptID uuid.UUID) (Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.TenantID != tenantID {
		return Attempt{}, false
	}
	return *attempt, true
}

// Latest returns the tenant's most recently triggered attempt.
func (s *SyncService) Latest(tenantID int64) (Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.latest[tenantID]
	if !ok {
		return Attempt{}, false
	}
	return *s.attempts[id], true
}

func (s *SyncService) run(tenant *domain.Tenant, attemptID uuid.UUID) {
	ctx := context.Background()

	result := s.syncer.SyncTenant(ctx, tenant)
	finished := time.Now().UTC()

	s.mu.Lock()
	attempt := s.attempts[attemptID]
	attempt.FinishedAt = &finished
	attempt.Result = result
	if result.Success() {
		attempt.State = AttemptSucceeded
	} else {
		attempt.State = AttemptFailed
		attempt.Error = result.Err().Error()
	}
	delete(s.inflight, tenant.ID)
	s.mu.Unlock()

	if !result.Success() {
		s.log.Error("Background sync failed",
			zap.Int64("tenant_id", tenant.ID),
			zap.String("attempt_id", attemptID.String()),
			zap.Error(result.Err()))
		return
	}

	// The orchestrator never touches bookkeeping; its caller does.
	if err := s.tenants.TouchLastSync(ctx, tenant.ID); err != nil {
		s.log.Error("Failed to record sync completion",
			zap.Int64("tenant_id", tenant.ID),
			zap.Error(err))
	}

	s.log.Info("Background sync completed",
		zap.Int64("tenant_id", tenant.ID),
		zap.String("attempt_id", attemptID.String()),
		zap.Int("synced", result.TotalSynced()),
		zap.Int("failed", result.TotalFailed()))
}
