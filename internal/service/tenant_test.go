package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/aretelabs/storesync/internal/domain"
	"github.com/aretelabs/storesync/internal/secrets"
	"github.com/aretelabs/storesync/internal/shopify"
	"github.com/aretelabs/storesync/internal/store"
)

// MockStoreAPI is a mock implementation of StoreAPI
type MockStoreAPI struct {
	mock.Mock
}

func (m *MockStoreAPI) GetShopInfo(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockStoreAPI) ListWebhooks(ctx context.Context) ([]map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func (m *MockStoreAPI) RegisterWebhook(ctx context.Context, topic, address string) error {
	args := m.Called(ctx, topic, address)
	return args.Error(0)
}

// MockSyncServicer is a mock implementation of SyncServicer
type MockSyncServicer struct {
	mock.Mock
}

func (m *MockSyncServicer) Trigger(ctx context.Context, tenantID int64) (Attempt, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(Attempt), args.Error(1)
}

func (m *MockSyncServicer) Attempt(tenantID int64, attemptID uuid.UUID) (Attempt, bool) {
	args := m.Called(tenantID, attemptID)
	return args.Get(0).(Attempt), args.Bool(1)
}

func (m *MockSyncServicer) Latest(tenantID int64) (Attempt, bool) {
	args := m.Called(tenantID)
	return args.Get(0).(Attempt), args.Bool(1)
}

const testEncryptionKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func onboardParams() OnboardParams {
	return OnboardParams{
		ShopDomain:  "acme-store.myshopify.com",
		AccessToken: "shpat_test",
	}
}

func newOnboardService(api *MockStoreAPI, tenants *MockTenantStore, sync SyncServicer) *TenantService {
	encryptor, _ := secrets.NewEncryptor(testEncryptionKey)
	factory := func(creds shopify.Credentials) StoreAPI { return api }
	return NewTenantService(tenants, factory, sync, encryptor,
		"whsec", "https://app.example.com", zap.NewNop())
}

func TestOnboard_Success(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)
	syncSvc := new(MockSyncServicer)

	api.On("GetShopInfo", mock.Anything).
		Return(map[string]any{"name": "Acme Store"}, nil).Once()
	api.On("ListWebhooks", mock.Anything).
		Return([]map[string]any{}, nil).Once()
	api.On("RegisterWebhook", mock.Anything, mock.Anything, "https://app.example.com/webhooks/shopify").
		Return(nil)

	tenants.On("GetByDomain", mock.Anything, "acme-store.myshopify.com").
		Return(nil, store.ErrNotFound).Once()
	tenants.On("Create", mock.Anything, mock.MatchedBy(func(tenant *domain.Tenant) bool {
		return tenant.ShopDomain == "acme-store.myshopify.com" &&
			tenant.ShopName == "Acme Store" &&
			tenant.IsActive
	})).Return(int64(12), nil).Once()
	tenants.On("SetWebhookSecret", mock.Anything, int64(12), mock.AnythingOfType("string")).
		Return(nil).Once()

	syncSvc.On("Trigger", mock.Anything, int64(12)).Return(Attempt{}, nil).Once()

	tenant, err := newOnboardService(api, tenants, syncSvc).Onboard(context.Background(), onboardParams())

	assert.NoError(t, err)
	assert.Equal(t, int64(12), tenant.ID)
	assert.Equal(t, "Acme Store", tenant.ShopName)
	tenants.AssertExpectations(t)
	syncSvc.AssertExpectations(t)
}

func TestOnboard_ExplicitShopNameWins(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)
	syncSvc := new(MockSyncServicer)

	api.On("GetShopInfo", mock.Anything).
		Return(map[string]any{"name": "Upstream Name"}, nil).Once()
	api.On("ListWebhooks", mock.Anything).Return([]map[string]any{}, nil).Once()
	api.On("RegisterWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	tenants.On("GetByDomain", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound).Once()
	tenants.On("Create", mock.Anything, mock.MatchedBy(func(tenant *domain.Tenant) bool {
		return tenant.ShopName == "My Name"
	})).Return(int64(1), nil).Once()
	tenants.On("SetWebhookSecret", mock.Anything, int64(1), mock.Anything).Return(nil).Once()
	syncSvc.On("Trigger", mock.Anything, int64(1)).Return(Attempt{}, nil).Once()

	params := onboardParams()
	params.ShopName = "My Name"

	_, err := newOnboardService(api, tenants, syncSvc).Onboard(context.Background(), params)

	assert.NoError(t, err)
	tenants.AssertExpectations(t)
}

func TestOnboard_RejectedCredentials(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)

	api.On("GetShopInfo", mock.Anything).
		Return(nil, &shopify.FetchError{
			Resource:   "shop",
			StatusCode: 401,
			Err:        shopify.ErrCredentialRejected,
		}).Once()

	_, err := newOnboardService(api, tenants, nil).Onboard(context.Background(), onboardParams())

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tenants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOnboard_DuplicateDomain(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)

	api.On("GetShopInfo", mock.Anything).
		Return(map[string]any{"name": "Acme Store"}, nil).Once()
	tenants.On("GetByDomain", mock.Anything, "acme-store.myshopify.com").
		Return(&domain.Tenant{ID: 1}, nil).Once()

	_, err := newOnboardService(api, tenants, nil).Onboard(context.Background(), onboardParams())

	assert.ErrorIs(t, err, ErrTenantExists)
	tenants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOnboard_WebhookFailureIsNonFatal(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)
	syncSvc := new(MockSyncServicer)

	api.On("GetShopInfo", mock.Anything).
		Return(map[string]any{"name": "Acme Store"}, nil).Once()
	api.On("ListWebhooks", mock.Anything).
		Return(nil, errors.New("status 500")).Once()

	tenants.On("GetByDomain", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound).Once()
	tenants.On("Create", mock.Anything, mock.Anything).Return(int64(12), nil).Once()
	syncSvc.On("Trigger", mock.Anything, int64(12)).Return(Attempt{}, nil).Once()

	tenant, err := newOnboardService(api, tenants, syncSvc).Onboard(context.Background(), onboardParams())

	assert.NoError(t, err)
	assert.Equal(t, int64(12), tenant.ID)
	api.AssertNotCalled(t, "RegisterWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboard_SkipsAlreadyRegisteredTopics(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)
	syncSvc := new(MockSyncServicer)

	api.On("GetShopInfo", mock.Anything).
		Return(map[string]any{"name": "Acme Store"}, nil).Once()
	api.On("ListWebhooks", mock.Anything).
		Return([]map[string]any{{"topic": "orders/create"}}, nil).Once()
	api.On("RegisterWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	tenants.On("GetByDomain", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound).Once()
	tenants.On("Create", mock.Anything, mock.Anything).Return(int64(12), nil).Once()
	tenants.On("SetWebhookSecret", mock.Anything, int64(12), mock.Anything).Return(nil).Once()
	syncSvc.On("Trigger", mock.Anything, int64(12)).Return(Attempt{}, nil).Once()

	_, err := newOnboardService(api, tenants, syncSvc).Onboard(context.Background(), onboardParams())

	assert.NoError(t, err)
	api.AssertNotCalled(t, "RegisterWebhook", mock.Anything, "orders/create", mock.Anything)
}

func TestOnboard_InitialSyncFailureIsNonFatal(t *testing.T) {
	api := new(MockStoreAPI)
	tenants := new(MockTenantStore)
	syncSvc := new(MockSyncServicer)

	api.On("GetShopInfo", mock.Anything).
		Return(map[string]any{"name": "Acme Store"}, nil).Once()
	api.On("ListWebhooks", mock.Anything).Return([]map[string]any{}, nil).Once()
	api.On("RegisterWebhook", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	tenants.On("GetByDomain", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound).Once()
	tenants.On("Create", mock.Anything, mock.Anything).Return(int64(12), nil).Once()
	tenants.On("SetWebhookSecret", mock.Anything, int64(12), mock.Anything).Return(nil).Once()
	syncSvc.On("Trigger", mock.Anything, int64(12)).
		Return(Attempt{}, errors.New("store down")).Once()

	tenant, err := newOnboardService(api, tenants, syncSvc).Onboard(context.Background(), onboardParams())

	assert.NoError(t, err)
	assert.Equal(t, int64(12), tenant.ID)
}
