package services

import (
	"context"
	"testing"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// testCatalog builds a catalogue snapshot from the default plans without a
// database round trip.
func testCatalog(t *testing.T) *plans.Catalog {
	planRepo := &MockPlanRepository{}
	planRepo.On("List", mock.Anything).Return(plans.Defaults(), nil).Once()
	catalog := plans.NewCatalog(planRepo)
	assert.NoError(t, catalog.Reload(context.Background()))
	return catalog
}

type SubscriptionServiceTestSuite struct {
	suite.Suite
	db       pgxmock.PgxPoolIface
	subRepo  *MockSubscriptionRepository
	service  SubscriptionService
	tenantID uuid.UUID
	ctx      context.Context
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.db = db
	suite.subRepo = &MockSubscriptionRepository{}
	suite.service = NewSubscriptionService(db, suite.subRepo, testCatalog(suite.T()), nil)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *SubscriptionServiceTestSuite) TearDownTest() {
	suite.subRepo.AssertExpectations(suite.T())
	suite.db.Close()
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}

func (suite *SubscriptionServiceTestSuite) subscription(plan, status string, features []string) *models.Subscription {
	expiry := time.Now().Add(720 * time.Hour)
	return &models.Subscription{
		ID:         uuid.New(),
		TenantID:   suite.tenantID,
		Plan:       plan,
		Status:     status,
		MaxUsers:   25,
		ExpiryDate: &expiry,
		Features:   features,
	}
}

func (suite *SubscriptionServiceTestSuite) TestRequireFeature_Granted() {
	sub := suite.subscription("pro", "active", []string{plans.FeatureLeads, plans.FeatureCampaigns})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	err := suite.service.RequireFeature(suite.ctx, suite.tenantID, plans.FeatureCampaigns)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestRequireFeature_NotInPlan() {
	sub := suite.subscription("basic", "active", []string{plans.FeatureLeads})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	err := suite.service.RequireFeature(suite.ctx, suite.tenantID, plans.FeatureCampaigns)
	assert.ErrorIs(suite.T(), err, common.ErrFeatureNotInPlan)
}

func (suite *SubscriptionServiceTestSuite) TestRequireFeature_ExpiredStatus() {
	sub := suite.subscription("pro", "expired", []string{plans.FeatureCampaigns})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	err := suite.service.RequireFeature(suite.ctx, suite.tenantID, plans.FeatureCampaigns)
	assert.ErrorIs(suite.T(), err, common.ErrSubscriptionExpired)
}

func (suite *SubscriptionServiceTestSuite) TestRequireFeature_PastExpiryDate() {
	sub := suite.subscription("pro", "active", []string{plans.FeatureCampaigns})
	past := time.Now().Add(-time.Hour)
	sub.ExpiryDate = &past
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	err := suite.service.RequireFeature(suite.ctx, suite.tenantID, plans.FeatureCampaigns)
	assert.ErrorIs(suite.T(), err, common.ErrSubscriptionExpired)
}

func (suite *SubscriptionServiceTestSuite) TestRequireFeature_WarningStatusStillGrants() {
	sub := suite.subscription("pro", "warning", []string{plans.FeatureCampaigns})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	err := suite.service.RequireFeature(suite.ctx, suite.tenantID, plans.FeatureCampaigns)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestIsExpired_ExpiredStatus() {
	sub := suite.subscription("pro", "expired", []string{plans.FeatureLeads})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	expired, err := suite.service.IsExpired(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), expired)
}

func (suite *SubscriptionServiceTestSuite) TestIsExpired_ActiveWithFutureExpiry() {
	sub := suite.subscription("pro", "active", []string{plans.FeatureLeads})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	expired, err := suite.service.IsExpired(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), expired)
}

func (suite *SubscriptionServiceTestSuite) TestIsExpired_PastExpiryBeforeSweep() {
	// The sweep has not flipped the status yet, but the date already lapsed.
	sub := suite.subscription("pro", "active", []string{plans.FeatureLeads})
	past := time.Now().Add(-time.Hour)
	sub.ExpiryDate = &past
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	expired, err := suite.service.IsExpired(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), expired)
}

func (suite *SubscriptionServiceTestSuite) TestEnforceSeatLimit_UnderLimit() {
	suite.db.ExpectBegin()
	suite.expectSubscriptionLockRow("basic", "active", 5, []string{plans.FeatureLeads})
	suite.db.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))
	suite.db.ExpectRollback()

	tx, err := suite.db.Begin(suite.ctx)
	assert.NoError(suite.T(), err)
	defer tx.Rollback(suite.ctx)

	assert.NoError(suite.T(), suite.service.EnforceSeatLimit(suite.ctx, tx, suite.tenantID))
}

func (suite *SubscriptionServiceTestSuite) TestEnforceSeatLimit_AtLimit() {
	suite.db.ExpectBegin()
	suite.expectSubscriptionLockRow("basic", "active", 5, []string{plans.FeatureLeads})
	suite.db.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	suite.db.ExpectRollback()

	tx, err := suite.db.Begin(suite.ctx)
	assert.NoError(suite.T(), err)
	defer tx.Rollback(suite.ctx)

	err = suite.service.EnforceSeatLimit(suite.ctx, tx, suite.tenantID)
	assert.ErrorIs(suite.T(), err, common.ErrSeatLimitExceeded)
}

func (suite *SubscriptionServiceTestSuite) TestChangePlan_UnknownPlan() {
	_, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, "platinum")
	assert.ErrorIs(suite.T(), err, common.ErrUnknownPlan)
}

func (suite *SubscriptionServiceTestSuite) expectSubscriptionLockRow(plan, status string, maxUsers int, features []string) {
	expiry := time.Now().Add(720 * time.Hour)
	rows := pgxmock.NewRows(subscriptionColumnNames()).
		AddRow(uuid.New(), suite.tenantID, plan, status, maxUsers, &expiry, features, time.Now(), time.Now())
	suite.db.ExpectQuery(`(?s)FROM subscriptions.*FOR UPDATE`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)
}

func (suite *SubscriptionServiceTestSuite) TestChangePlan_Upgrade() {
	suite.db.ExpectBegin()
	suite.expectSubscriptionLockRow("basic", "active", 5, []string{plans.FeatureLeads})
	suite.db.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	suite.db.ExpectExec(`UPDATE subscriptions`).
		WithArgs("pro", "active", 25, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.db.ExpectExec(`UPDATE tenants SET plan`).
		WithArgs("pro", suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.db.ExpectCommit()

	result, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, "pro")

	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), result.Warnings)
	assert.Equal(suite.T(), "pro", result.Subscription.Plan)
	assert.Equal(suite.T(), "active", result.Subscription.Status)
	assert.Equal(suite.T(), 25, result.Subscription.MaxUsers)
}

func (suite *SubscriptionServiceTestSuite) TestChangePlan_DowngradeBelowUsage() {
	suite.db.ExpectBegin()
	suite.expectSubscriptionLockRow("pro", "active", 25, []string{plans.FeatureLeads, plans.FeatureCampaigns})
	suite.db.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(suite.tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	suite.db.ExpectExec(`UPDATE subscriptions`).
		WithArgs("basic", "warning", 5, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.db.ExpectExec(`UPDATE tenants SET plan`).
		WithArgs("basic", suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.db.ExpectCommit()

	result, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, "basic")

	// The downgrade succeeds with warnings; nothing is deleted to fit the
	// smaller plan.
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "warning", result.Subscription.Status)
	assert.NotEmpty(suite.T(), result.Warnings)
}

func (suite *SubscriptionServiceTestSuite) TestChangePlan_CancelledSubscription() {
	suite.db.ExpectBegin()
	suite.expectSubscriptionLockRow("pro", "cancelled", 25, []string{plans.FeatureLeads})
	suite.db.ExpectRollback()

	_, err := suite.service.ChangePlan(suite.ctx, suite.tenantID, "basic")
	assert.ErrorIs(suite.T(), err, common.ErrTenantCancelled)
}

func (suite *SubscriptionServiceTestSuite) TestExtendExpiry_RevivesExpired() {
	sub := suite.subscription("pro", "expired", []string{plans.FeatureLeads})
	until := time.Now().AddDate(0, 1, 0)
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()
	suite.subRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Subscription")).Return(nil).Run(func(args mock.Arguments) {
		updated := args.Get(1).(*models.Subscription)
		assert.Equal(suite.T(), "active", updated.Status)
		assert.Equal(suite.T(), until, *updated.ExpiryDate)
	}).Once()

	err := suite.service.ExtendExpiry(suite.ctx, suite.tenantID, until)
	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestExtendExpiry_CancelledStaysDead() {
	sub := suite.subscription("pro", "cancelled", []string{plans.FeatureLeads})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	err := suite.service.ExtendExpiry(suite.ctx, suite.tenantID, time.Now().AddDate(0, 1, 0))
	assert.ErrorIs(suite.T(), err, common.ErrTenantCancelled)
}

func (suite *SubscriptionServiceTestSuite) TestGetActive_NewestRowWins() {
	sub := suite.subscription("pro", "active", []string{plans.FeatureLeads})
	suite.subRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).Return(sub, nil).Once()

	got, err := suite.service.GetActive(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), sub, got)
}
