package services

import (
	"context"
	"testing"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CampaignServiceTestSuite struct {
	suite.Suite
	campaignRepo *MockCampaignRepository
	tenantRepo   *MockTenantRepository
	subs         *MockSubscriptionService
	service      CampaignService
	tenantID     uuid.UUID
	ctx          context.Context
}

func (suite *CampaignServiceTestSuite) SetupTest() {
	suite.campaignRepo = &MockCampaignRepository{}
	suite.tenantRepo = &MockTenantRepository{}
	suite.subs = &MockSubscriptionService{}
	suite.service = NewCampaignService(suite.campaignRepo, suite.tenantRepo, suite.subs, nil)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *CampaignServiceTestSuite) TearDownTest() {
	suite.campaignRepo.AssertExpectations(suite.T())
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.subs.AssertExpectations(suite.T())
}

func TestCampaignServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceTestSuite))
}

func (suite *CampaignServiceTestSuite) allowTenantAndFeature() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).
		Return(&models.Tenant{ID: suite.tenantID, Status: "active"}, nil).Once()
	suite.subs.On("RequireFeature", mock.Anything, suite.tenantID, plans.FeatureCampaigns).Return(nil).Once()
}

func (suite *CampaignServiceTestSuite) TestCreate_Defaults() {
	suite.allowTenantAndFeature()
	suite.campaignRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Campaign")).Return(nil).Once()

	campaign, err := suite.service.Create(suite.ctx, CreateCampaignRequest{
		TenantID: suite.tenantID,
		Name:     "Spring Outreach",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Email", campaign.Type)
	assert.Equal(suite.T(), "draft", campaign.Status)
}

func (suite *CampaignServiceTestSuite) TestCreate_ConvertedExceedsLeads() {
	suite.allowTenantAndFeature()

	_, err := suite.service.Create(suite.ctx, CreateCampaignRequest{
		TenantID:  suite.tenantID,
		Name:      "Spring Outreach",
		Leads:     10,
		Converted: 11,
	})

	assert.ErrorIs(suite.T(), err, common.ErrConstraintViolation)
}

func (suite *CampaignServiceTestSuite) TestCreate_ConvertedEqualToLeadsAllowed() {
	suite.allowTenantAndFeature()
	suite.campaignRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Campaign")).Return(nil).Once()

	_, err := suite.service.Create(suite.ctx, CreateCampaignRequest{
		TenantID:  suite.tenantID,
		Name:      "Spring Outreach",
		Leads:     10,
		Converted: 10,
	})

	assert.NoError(suite.T(), err)
}

func (suite *CampaignServiceTestSuite) TestCreate_FeatureGated() {
	suite.tenantRepo.On("GetByID", mock.Anything, suite.tenantID).
		Return(&models.Tenant{ID: suite.tenantID, Status: "active"}, nil).Once()
	suite.subs.On("RequireFeature", mock.Anything, suite.tenantID, plans.FeatureCampaigns).
		Return(common.ErrFeatureNotInPlan).Once()

	_, err := suite.service.Create(suite.ctx, CreateCampaignRequest{
		TenantID: suite.tenantID,
		Name:     "Spring Outreach",
	})

	assert.ErrorIs(suite.T(), err, common.ErrFeatureNotInPlan)
}

func (suite *CampaignServiceTestSuite) TestCreate_InvalidType() {
	suite.allowTenantAndFeature()

	_, err := suite.service.Create(suite.ctx, CreateCampaignRequest{
		TenantID: suite.tenantID,
		Name:     "Spring Outreach",
		Type:     "Billboard",
	})

	assert.ErrorIs(suite.T(), err, common.ErrInvalidEnum)
}

func (suite *CampaignServiceTestSuite) TestUpdate_ConvertedExceedsLeads() {
	suite.allowTenantAndFeature()

	_, err := suite.service.Update(suite.ctx, UpdateCampaignRequest{
		TenantID:  suite.tenantID,
		ID:        uuid.New(),
		Name:      "Spring Outreach",
		Type:      "Email",
		Status:    "active",
		Leads:     5,
		Converted: 6,
	})

	assert.ErrorIs(suite.T(), err, common.ErrConstraintViolation)
}
