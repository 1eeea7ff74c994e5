package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/ingest"
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

// MockTenantSyncer is a mock implementation of TenantSyncer
type MockTenantSyncer struct {
	mock.Mock
}

func (m *MockTenantSyncer) SyncTenant(ctx context.Context, tenant *domain.Tenant) *ingest.Result {
	args := m.Called(ctx, tenant)
	return args.Get(0).(*ingest.Result)
}

func activeTenants() []*domain.Tenant {
	return []*domain.Tenant{
		{ID: 1, ShopDomain: "one.myshopify.com", IsActive: true},
		{ID: 2, ShopDomain: "two.myshopify.com", IsActive: true},
		{ID: 3, ShopDomain: "three.myshopify.com", IsActive: true},
	}
}

func TestSweep_SyncsEveryActiveTenant(t *testing.T) {
	tenants := new(MockTenantStore)
	syncer := new(MockTenantSyncer)

	tenants.On("ListActive", mock.Anything).Return(activeTenants(), nil).Once()
	syncer.On("SyncTenant", mock.Anything, mock.Anything).Return(&ingest.Result{}).Times(3)
	tenants.On("TouchLastSync", mock.Anything, mock.Anything).Return(nil).Times(3)

	New(tenants, syncer, time.Hour, zap.NewNop()).Sweep(context.Background())

	syncer.AssertExpectations(t)
	tenants.AssertExpectations(t)
}

func TestSweep_FailureDoesNotStopSweep(t *testing.T) {
	tenants := new(MockTenantStore)
	syncer := new(MockTenantSyncer)

	failed := &ingest.Result{
		Customers: ingest.ResourceOutcome{Err: errors.New("status 503")},
	}

	tenants.On("ListActive", mock.Anything).Return(activeTenants(), nil).Once()
	syncer.On("SyncTenant", mock.Anything,
		mock.MatchedBy(func(tenant *domain.Tenant) bool { return tenant.ID == 1 })).
		Return(&ingest.Result{}).Once()
	syncer.On("SyncTenant", mock.Anything,
		mock.MatchedBy(func(tenant *domain.Tenant) bool { return tenant.ID == 2 })).
		Return(failed).Once()
	syncer.On("SyncTenant", mock.Anything,
		mock.MatchedBy(func(tenant *domain.Tenant) bool { return tenant.ID == 3 })).
		Return(&ingest.Result{}).Once()

	tenants.On("TouchLastSync", mock.Anything, int64(1)).Return(nil).Once()
	tenants.On("TouchLastSync", mock.Anything, int64(3)).Return(nil).Once()

	New(tenants, syncer, time.Hour, zap.NewNop()).Sweep(context.Background())

	syncer.AssertExpectations(t)
	tenants.AssertNotCalled(t, "TouchLastSync", mock.Anything, int64(2))
}

func TestSweep_ListFailureSkipsSweep(t *testing.T) {
	tenants := new(MockTenantStore)
	syncer := new(MockTenantSyncer)

	tenants.On("ListActive", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	New(tenants, syncer, time.Hour, zap.NewNop()).Sweep(context.Background())

	syncer.AssertNotCalled(t, "SyncTenant", mock.Anything, mock.Anything)
}

func TestSweep_StopsOnCancelledContext(t *testing.T) {
	tenants := new(MockTenantStore)
	syncer := new(MockTenantSyncer)

	ctx, cancel := context.WithCancel(context.Background())

	tenants.On("ListActive", mock.Anything).Return(activeTenants(), nil).Once()
	syncer.On("SyncTenant", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(&ingest.Result{}).Once()
	tenants.On("TouchLastSync", mock.Anything, int64(1)).Return(nil).Once()

	New(tenants, syncer, time.Hour, zap.NewNop()).Sweep(ctx)

	syncer.AssertNumberOfCalls(t, "SyncTenant", 1)
}

func TestRun_StopsWhenContextCancelled(t *testing.T) {
	tenants := new(MockTenantStore)
	syncer := new(MockTenantSyncer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		New(tenants, syncer, time.Hour, zap.NewNop()).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}
