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

type DealServiceTestSuite struct {
	suite.Suite
	db          pgxmock.PgxPoolIface
	dealRepo    *MockDealRepository
	contactRepo *MockContactRepository
	accountRepo *MockAccountRepository
	tenantRepo  *MockTenantRepository
	service     DealService
	tenantID    uuid.UUID
	ctx         context.Context
}

func (suite *DealServiceTestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.db = db
	suite.dealRepo = &MockDealRepository{}
	suite.contactRepo = &MockContactRepository{}
	suite.accountRepo = &MockAccountRepository{}
	suite.tenantRepo = &MockTenantRepository{}
	suite.service = NewDealService(db, suite.dealRepo, suite.contactRepo, suite.accountRepo,
		suite.tenantRepo, nil)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *DealServiceTestSuite) TearDownTest() {
	suite.dealRepo.AssertExpectations(suite.T())
	suite.contactRepo.AssertExpectations(suite.T())
	suite.accountRepo.AssertExpectations(suite.T())
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.db.Close()
}

func TestDealServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DealServiceTestSuite))
}

func (suite *DealServiceTestSuite) allowTenant() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).
		Return(&models.Tenant{ID: suite.tenantID, Status: "active"}, nil).Once()
}

func (suite *DealServiceTestSuite) TestCreate_DefaultsToDiscoveryAndActive() {
	suite.allowTenant()
	suite.dealRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Deal")).Return(nil).Once()

	deal, err := suite.service.Create(suite.ctx, CreateDealRequest{
		TenantID: suite.tenantID,
		Title:    "Enterprise rollout",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "discovery", deal.Stage)
	assert.Equal(suite.T(), "active", deal.Status)
}

func (suite *DealServiceTestSuite) TestCreate_ClosedWonSettlesStatus() {
	suite.allowTenant()
	suite.dealRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Deal")).Return(nil).Once()

	deal, err := suite.service.Create(suite.ctx, CreateDealRequest{
		TenantID: suite.tenantID,
		Title:    "Enterprise rollout",
		Stage:    "closed_won",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "won", deal.Status)
}

func (suite *DealServiceTestSuite) TestUpdate_ClosedLostSettlesStatus() {
	suite.allowTenant()
	existing := &models.Deal{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		Title:    "Enterprise rollout",
		Stage:    "negotiation",
		Status:   "active",
	}
	suite.dealRepo.On("GetByID", mock.Anything, suite.tenantID, existing.ID).Return(existing, nil).Once()
	suite.dealRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Deal")).Return(nil).Once()

	deal, err := suite.service.Update(suite.ctx, UpdateDealRequest{
		TenantID: suite.tenantID,
		ID:       existing.ID,
		Title:    "Enterprise rollout",
		Stage:    "closed_lost",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "lost", deal.Status)
}

func (suite *DealServiceTestSuite) TestCreate_InvalidStage() {
	suite.allowTenant()

	_, err := suite.service.Create(suite.ctx, CreateDealRequest{
		TenantID: suite.tenantID,
		Title:    "Enterprise rollout",
		Stage:    "haggling",
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvalidEnum)
}

func (suite *DealServiceTestSuite) TestCreate_ProbabilityOutOfRange() {
	suite.allowTenant()

	_, err := suite.service.Create(suite.ctx, CreateDealRequest{
		TenantID:    suite.tenantID,
		Title:       "Enterprise rollout",
		Probability: 101,
	})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "probability must be between 0 and 100")
}

func (suite *DealServiceTestSuite) TestCreate_CrossTenantContact() {
	suite.allowTenant()
	contactID := uuid.New()
	suite.contactRepo.On("GetByID", mock.Anything, suite.tenantID, contactID).
		Return(nil, common.ErrNotFound).Once()

	_, err := suite.service.Create(suite.ctx, CreateDealRequest{
		TenantID:  suite.tenantID,
		Title:     "Enterprise rollout",
		ContactID: &contactID,
	})

	assert.ErrorIs(suite.T(), err, common.ErrTenantMismatch)
}

func (suite *DealServiceTestSuite) TestCreate_CrossTenantAccount() {
	suite.allowTenant()
	accountID := uuid.New()
	suite.accountRepo.On("GetByID", mock.Anything, suite.tenantID, accountID).
		Return(nil, common.ErrNotFound).Once()

	_, err := suite.service.Create(suite.ctx, CreateDealRequest{
		TenantID:  suite.tenantID,
		Title:     "Enterprise rollout",
		AccountID: &accountID,
	})

	assert.ErrorIs(suite.T(), err, common.ErrTenantMismatch)
}

func (suite *DealServiceTestSuite) TestDelete_DetachesQuotesFirst() {
	suite.allowTenant()
	dealID := uuid.New()
	suite.db.ExpectBegin()
	suite.db.ExpectExec(`UPDATE quotes SET deal_id = NULL`).
		WithArgs(suite.tenantID, dealID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	suite.db.ExpectExec(`DELETE FROM deals`).
		WithArgs(dealID, suite.tenantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.db.ExpectCommit()

	assert.NoError(suite.T(), suite.service.Delete(suite.ctx, suite.tenantID, dealID))
}

func (suite *DealServiceTestSuite) TestListByStage_Validated() {
	_, err := suite.service.ListByStage(suite.ctx, suite.tenantID, "haggling", 10, 0)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidEnum)
}
