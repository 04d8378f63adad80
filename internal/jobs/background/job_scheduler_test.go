package background

import (
	"context"
	"errors"
	"testing"

	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) GetLatestByTenantForUpdate(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) ExpireDue(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockSubscriptionCache struct {
	mock.Mock
}

func (m *mockSubscriptionCache) InvalidateSubscription(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func TestExpireSubscriptions_InvalidatesCachePerTenant(t *testing.T) {
	tenant1 := uuid.New()
	tenant2 := uuid.New()
	subs := &mockSubscriptionRepo{}
	cache := &mockSubscriptionCache{}
	subs.On("ExpireDue", mock.Anything).Return([]uuid.UUID{tenant1, tenant2}, nil).Once()
	cache.On("InvalidateSubscription", mock.Anything, tenant1).Return(nil).Once()
	cache.On("InvalidateSubscription", mock.Anything, tenant2).Return(nil).Once()

	s := &Scheduler{subs: subs, cache: cache}
	s.expireSubscriptions()

	subs.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestExpireSubscriptions_NoCacheConfigured(t *testing.T) {
	subs := &mockSubscriptionRepo{}
	subs.On("ExpireDue", mock.Anything).Return([]uuid.UUID{uuid.New()}, nil).Once()

	s := &Scheduler{subs: subs}
	s.expireSubscriptions()

	subs.AssertExpectations(t)
}

func TestExpireSubscriptions_SweepFailureSkipsInvalidation(t *testing.T) {
	subs := &mockSubscriptionRepo{}
	cache := &mockSubscriptionCache{}
	subs.On("ExpireDue", mock.Anything).Return(nil, errors.New("database connection failed")).Once()

	s := &Scheduler{subs: subs, cache: cache}
	s.expireSubscriptions()

	subs.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestExpireSubscriptions_InvalidationFailureDoesNotAbort(t *testing.T) {
	tenant1 := uuid.New()
	tenant2 := uuid.New()
	subs := &mockSubscriptionRepo{}
	cache := &mockSubscriptionCache{}
	subs.On("ExpireDue", mock.Anything).Return([]uuid.UUID{tenant1, tenant2}, nil).Once()
	cache.On("InvalidateSubscription", mock.Anything, tenant1).Return(errors.New("redis down")).Once()
	cache.On("InvalidateSubscription", mock.Anything, tenant2).Return(nil).Once()

	s := &Scheduler{subs: subs, cache: cache}
	s.expireSubscriptions()

	subs.AssertExpectations(t)
	cache.AssertExpectations(t)
}
