package services

import (
	"context"
	"testing"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TenantServiceTestSuite struct {
	suite.Suite
	db         pgxmock.PgxPoolIface
	tenantRepo *MockTenantRepository
	subRepo    *MockSubscriptionRepository
	service    TenantService
	ctx        context.Context
}

func (suite *TenantServiceTestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.db = db
	suite.tenantRepo = &MockTenantRepository{}
	suite.subRepo = &MockSubscriptionRepository{}
	suite.service = NewTenantService(db, suite.tenantRepo, suite.subRepo, testCatalog(suite.T()), nil)
	suite.ctx = context.Background()
}

func (suite *TenantServiceTestSuite) TearDownTest() {
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.subRepo.AssertExpectations(suite.T())
	suite.db.Close()
}

func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (suite *TenantServiceTestSuite) TestCreate_ProvisionsSubscriptionInSameTransaction() {
	suite.db.ExpectBegin()
	suite.db.ExpectExec(`INSERT INTO tenants`).
		WithArgs(pgxmock.AnyArg(), "Acme", "acme.example.com", "pro", "active", "", "#6366f1", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.db.ExpectExec(`INSERT INTO subscriptions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "pro", "active", 25, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.db.ExpectCommit()

	tenant, err := suite.service.Create(suite.ctx, CreateTenantRequest{
		Name:   "Acme",
		Domain: "acme.example.com",
		Plan:   "pro",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "active", tenant.Status)
	assert.Equal(suite.T(), "pro", tenant.Plan)
	assert.Equal(suite.T(), "#6366f1", tenant.PrimaryColor)
}

func (suite *TenantServiceTestSuite) TestCreate_DefaultsToBasicPlan() {
	suite.db.ExpectBegin()
	suite.db.ExpectExec(`INSERT INTO tenants`).
		WithArgs(pgxmock.AnyArg(), "Acme", "", "basic", "active", "", "#6366f1", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.db.ExpectExec(`INSERT INTO subscriptions`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "basic", "active", 5, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.db.ExpectCommit()

	tenant, err := suite.service.Create(suite.ctx, CreateTenantRequest{Name: "Acme"})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "basic", tenant.Plan)
}

func (suite *TenantServiceTestSuite) TestCreate_UnknownPlan() {
	_, err := suite.service.Create(suite.ctx, CreateTenantRequest{Name: "Acme", Plan: "platinum"})
	assert.ErrorIs(suite.T(), err, common.ErrInvalidEnum)
}

func (suite *TenantServiceTestSuite) TestCreate_MissingName() {
	_, err := suite.service.Create(suite.ctx, CreateTenantRequest{Plan: "basic"})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "name is required")
}

func (suite *TenantServiceTestSuite) tenantWithStatus(status string) *models.Tenant {
	return &models.Tenant{ID: uuid.New(), Name: "Acme", Plan: "basic", Status: status}
}

func (suite *TenantServiceTestSuite) TestSuspend_FromActive() {
	tenant := suite.tenantWithStatus("active")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, tenant.ID, "suspended").Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Suspend(suite.ctx, tenant.ID))
}

func (suite *TenantServiceTestSuite) TestActivate_FromSuspended() {
	tenant := suite.tenantWithStatus("suspended")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, tenant.ID, "active").Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Activate(suite.ctx, tenant.ID))
}

func (suite *TenantServiceTestSuite) TestActivate_CancelledIsTerminal() {
	tenant := suite.tenantWithStatus("cancelled")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()

	err := suite.service.Activate(suite.ctx, tenant.ID)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidStatus)
}

func (suite *TenantServiceTestSuite) TestSuspend_CancelledIsTerminal() {
	tenant := suite.tenantWithStatus("cancelled")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()

	err := suite.service.Suspend(suite.ctx, tenant.ID)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidStatus)
}

func (suite *TenantServiceTestSuite) TestSuspend_AlreadySuspendedNoOp() {
	tenant := suite.tenantWithStatus("suspended")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()

	// Same-status transition is a no-op, not an error.
	assert.NoError(suite.T(), suite.service.Suspend(suite.ctx, tenant.ID))
}

func (suite *TenantServiceTestSuite) TestCancel_AlsoCancelsSubscription() {
	tenant := suite.tenantWithStatus("active")
	sub := &models.Subscription{ID: uuid.New(), TenantID: tenant.ID, Plan: "basic", Status: "active"}
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, tenant.ID, "cancelled").Return(nil).Once()
	suite.subRepo.On("GetLatestByTenant", mock.Anything, tenant.ID).Return(sub, nil).Once()
	suite.subRepo.On("UpdateStatus", mock.Anything, sub.ID, "cancelled").Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Cancel(suite.ctx, tenant.ID))
}

func (suite *TenantServiceTestSuite) TestCancel_ToleratesMissingSubscription() {
	tenant := suite.tenantWithStatus("active")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()
	suite.tenantRepo.On("UpdateStatus", mock.Anything, tenant.ID, "cancelled").Return(nil).Once()
	suite.subRepo.On("GetLatestByTenant", mock.Anything, tenant.ID).Return(nil, common.ErrNotFound).Once()

	assert.NoError(suite.T(), suite.service.Cancel(suite.ctx, tenant.ID))
}

func (suite *TenantServiceTestSuite) TestUpdate_CancelledTenantRejected() {
	tenant := suite.tenantWithStatus("cancelled")
	suite.tenantRepo.On("GetByID", mock.Anything, tenant.ID).Return(tenant, nil).Once()

	_, err := suite.service.Update(suite.ctx, UpdateTenantRequest{ID: tenant.ID, Name: "Renamed"})
	assert.ErrorIs(suite.T(), err, common.ErrTenantCancelled)
}

func (suite *TenantServiceTestSuite) TestDelete_SingleCascadingStatement() {
	id := uuid.New()
	suite.tenantRepo.On("Delete", mock.Anything, id).Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Delete(suite.ctx, id))
}
