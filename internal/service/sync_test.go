package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/ingest"
	"github.com/aretelabs/storesync/internal/store"
)

// MockTenantStore is a mock implementation of store.TenantStore
type MockTenantStore struct {
	mock.Mock
}

func (m *MockTenantStore) Create(ctx context.Context, tenant *domain.Tenant) (int64, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantStore) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantStore) GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	args := m.Called(ctx, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantStore) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tenant), args.Error(1)
}

func (m *MockTenantStore) TouchLastSync(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantStore) SetWebhookSecret(ctx context.Context, id int64, encrypted string) error {
	args := m.Called(ctx, id, encrypted)
	return args.Error(0)
}

func (m *MockTenantStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// blockingSyncer lets tests hold a sync in flight until released.
type blockingSyncer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	result  *ingest.Result
}

func newBlockingSyncer(result *ingest.Result) *blockingSyncer {
	return &blockingSyncer{release: make(chan struct{}), result: result}
}

func (b *blockingSyncer) SyncTenant(ctx context.Context, tenant *domain.Tenant) *ingest.Result {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return b.result
}

func (b *blockingSyncer) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func syncTestTenant() *domain.Tenant {
	return &domain.Tenant{ID: 5, ShopDomain: "acme-store.myshopify.com", IsActive: true}
}

func TestTrigger_ReturnsRunningAttempt(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Once()
	tenants.On("TouchLastSync", mock.Anything, int64(5)).Return(nil).Maybe()

	syncer := newBlockingSyncer(&ingest.Result{})
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	attempt, err := svc.Trigger(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, AttemptRunning, attempt.State)
	assert.Equal(t, int64(5), attempt.TenantID)
	assert.NotEqual(t, uuid.Nil, attempt.ID)

	close(syncer.release)
}

func TestTrigger_UnknownTenant(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(99)).Return(nil, store.ErrNotFound).Once()

	svc := NewSyncService(tenants, newBlockingSyncer(&ingest.Result{}), zap.NewNop())

	_, err := svc.Trigger(context.Background(), 99)

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTrigger_CoalescesOntoRunningAttempt(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Times(2)
	tenants.On("TouchLastSync", mock.Anything, int64(5)).Return(nil).Maybe()

	syncer := newBlockingSyncer(&ingest.Result{})
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	first, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)

	second, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Eventually(t, func() bool {
		return syncer.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	close(syncer.release)
}

func TestTrigger_SuccessfulRunRecordsCompletion(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Once()
	tenants.On("TouchLastSync", mock.Anything, int64(5)).Return(nil).Once()

	result := &ingest.Result{
		Customers: ingest.ResourceOutcome{Synced: 10},
		Orders:    ingest.ResourceOutcome{Synced: 4, Failed: 1},
	}
	syncer := newBlockingSyncer(result)
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	attempt, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)

	close(syncer.release)

	assert.Eventually(t, func() bool {
		got, ok := svc.Attempt(5, attempt.ID)
		return ok && got.State == AttemptSucceeded
	}, time.Second, 5*time.Millisecond)

	got, ok := svc.Attempt(5, attempt.ID)
	assert.True(t, ok)
	assert.NotNil(t, got.FinishedAt)
	assert.Equal(t, 14, got.Result.TotalSynced())
	tenants.AssertExpectations(t)
}

func TestTrigger_FailedRunSkipsBookkeeping(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Once()

	result := &ingest.Result{
		Orders: ingest.ResourceOutcome{Err: errors.New("status 503")},
	}
	syncer := newBlockingSyncer(result)
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	attempt, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)

	close(syncer.release)

	assert.Eventually(t, func() bool {
		got, ok := svc.Attempt(5, attempt.ID)
		return ok && got.State == AttemptFailed
	}, time.Second, 5*time.Millisecond)

	got, _ := svc.Attempt(5, attempt.ID)
	assert.Contains(t, got.Error, "status 503")
	tenants.AssertNotCalled(t, "TouchLastSync", mock.Anything, mock.Anything)
}

func TestTrigger_RetriggerAllowedAfterCompletion(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Times(2)
	tenants.On("TouchLastSync", mock.Anything, int64(5)).Return(nil).Times(2)

	syncer := newBlockingSyncer(&ingest.Result{})
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	first, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)
	close(syncer.release)

	assert.Eventually(t, func() bool {
		got, ok := svc.Attempt(5, first.ID)
		return ok && got.State == AttemptSucceeded
	}, time.Second, 5*time.Millisecond)

	syncer.release = make(chan struct{})
	second, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Eventually(t, func() bool {
		return syncer.callCount() == 2
	}, time.Second, 5*time.Millisecond)

	close(syncer.release)
	assert.Eventually(t, func() bool {
		got, ok := svc.Attempt(5, second.ID)
		return ok && got.State == AttemptSucceeded
	}, time.Second, 5*time.Millisecond)
}

func TestAttempt_WrongTenantHidesAttempt(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Once()
	tenants.On("TouchLastSync", mock.Anything, int64(5)).Return(nil).Maybe()

	syncer := newBlockingSyncer(&ingest.Result{})
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	attempt, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)

	_, ok := svc.Attempt(6, attempt.ID)
	assert.False(t, ok)

	close(syncer.release)
}

func TestLatest(t *testing.T) {
	tenants := new(MockTenantStore)
	tenants.On("GetByID", mock.Anything, int64(5)).Return(syncTestTenant(), nil).Once()
	tenants.On("TouchLastSync", mock.Anything, int64(5)).Return(nil).Maybe()

	syncer := newBlockingSyncer(&ingest.Result{})
	svc := NewSyncService(tenants, syncer, zap.NewNop())

	_, ok := svc.Latest(5)
	assert.False(t, ok)

	attempt, err := svc.Trigger(context.Background(), 5)
	assert.NoError(t, err)

	latest, ok := svc.Latest(5)
	assert.True(t, ok)
	assert.Equal(t, attempt.ID, latest.ID)

	close(syncer.release)
}
