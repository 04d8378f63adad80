package services

import (
	"context"
	"time"

	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// Mock repositories shared by the service suites.

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTenantRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	args := m.Called(ctx, id, plan)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetLatestByTenantForUpdate(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ExpireDue(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, mustReset bool) error {
	args := m.Called(ctx, id, passwordHash, mustReset)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) GetByTokenForUpdate(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordResetToken), args.Error(1)
}

func (m *MockResetTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResetTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*models.Lead), args.Error(1)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Contact, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockContactRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Contact, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Contact), args.Error(1)
}

func (m *MockContactRepository) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*models.Contact, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Get(0).([]*models.Contact), args.Error(1)
}

func (m *MockContactRepository) DetachAccount(ctx context.Context, tenantID, accountID uuid.UUID) error {
	args := m.Called(ctx, tenantID, accountID)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Account), args.Error(1)
}

type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) Create(ctx context.Context, deal *models.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Deal, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *MockDealRepository) Update(ctx context.Context, deal *models.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockDealRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Deal, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Deal), args.Error(1)
}

func (m *MockDealRepository) ListByStage(ctx context.Context, tenantID uuid.UUID, stage string, limit, offset int) ([]*models.Deal, error) {
	args := m.Called(ctx, tenantID, stage, limit, offset)
	return args.Get(0).([]*models.Deal), args.Error(1)
}

func (m *MockDealRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	args := m.Called(ctx, tenantID, contactID)
	return args.Error(0)
}

func (m *MockDealRepository) DetachAccount(ctx context.Context, tenantID, accountID uuid.UUID) error {
	args := m.Called(ctx, tenantID, accountID)
	return args.Error(0)
}

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Update(ctx context.Context, quote *models.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockQuoteRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Quote, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Quote), args.Error(1)
}

func (m *MockQuoteRepository) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []*models.QuoteItem) error {
	args := m.Called(ctx, quoteID, items)
	return args.Error(0)
}

func (m *MockQuoteRepository) ListItems(ctx context.Context, quoteID uuid.UUID) ([]*models.QuoteItem, error) {
	args := m.Called(ctx, quoteID)
	return args.Get(0).([]*models.QuoteItem), args.Error(1)
}

func (m *MockQuoteRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	args := m.Called(ctx, tenantID, contactID)
	return args.Error(0)
}

func (m *MockQuoteRepository) DetachDeal(ctx context.Context, tenantID, dealID uuid.UUID) error {
	args := m.Called(ctx, tenantID, dealID)
	return args.Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) MarkOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	args := m.Called(ctx, tenantID, contactID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DetachQuote(ctx context.Context, tenantID, quoteID uuid.UUID) error {
	args := m.Called(ctx, tenantID, quoteID)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTaskRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByAssignee(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	args := m.Called(ctx, tenantID, userID, limit, offset)
	return args.Get(0).([]*models.Task), args.Error(1)
}

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCampaignRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Campaign), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Get(ctx context.Context, plan string) (*models.Plan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) List(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) Seed(ctx context.Context, planRows []*models.Plan) error {
	args := m.Called(ctx, planRows)
	return args.Error(0)
}

// MockSubscriptionService stands in for the plan gate in entity service tests.
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) GetActive(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) HasFeature(ctx context.Context, tenantID uuid.UUID, feature string) (bool, error) {
	args := m.Called(ctx, tenantID, feature)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionService) RequireFeature(ctx context.Context, tenantID uuid.UUID, feature string) error {
	args := m.Called(ctx, tenantID, feature)
	return args.Error(0)
}

func (m *MockSubscriptionService) IsExpired(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionService) EnforceSeatLimit(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	args := m.Called(ctx, tx, tenantID)
	return args.Error(0)
}

func (m *MockSubscriptionService) ChangePlan(ctx context.Context, tenantID uuid.UUID, newPlan string) (*PlanChangeResult, error) {
	args := m.Called(ctx, tenantID, newPlan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlanChangeResult), args.Error(1)
}

func (m *MockSubscriptionService) ExtendExpiry(ctx context.Context, tenantID uuid.UUID, until time.Time) error {
	args := m.Called(ctx, tenantID, until)
	return args.Error(0)
}
