package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SubscriptionRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo SubscriptionRepository
	ctx  context.Context
}

func (suite *SubscriptionRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewSubscriptionRepo(mock)
	suite.ctx = context.Background()
}

func (suite *SubscriptionRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestSubscriptionRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionRepoTestSuite))
}

func (suite *SubscriptionRepoTestSuite) TestExpireDue_FlipsActiveAndWarningRows() {
	tenant1 := uuid.New()
	tenant2 := uuid.New()
	rows := pgxmock.NewRows([]string{"tenant_id"}).
		AddRow(tenant1).
		AddRow(tenant2)

	suite.mock.ExpectQuery(`
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW\(\)
		WHERE status IN \('active', 'warning'\) AND expiry_date IS NOT NULL AND expiry_date < NOW\(\)
		RETURNING tenant_id
	`).WillReturnRows(rows)

	tenantIDs, err := suite.repo.ExpireDue(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []uuid.UUID{tenant1, tenant2}, tenantIDs)
}

func (suite *SubscriptionRepoTestSuite) TestExpireDue_NothingDue() {
	suite.mock.ExpectQuery(`
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW\(\)
		WHERE status IN \('active', 'warning'\) AND expiry_date IS NOT NULL AND expiry_date < NOW\(\)
		RETURNING tenant_id
	`).WillReturnRows(pgxmock.NewRows([]string{"tenant_id"}))

	tenantIDs, err := suite.repo.ExpireDue(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), tenantIDs)
}

func (suite *SubscriptionRepoTestSuite) TestGetLatestByTenant_NewestRowWins() {
	tenantID := uuid.New()
	expiry := time.Now().Add(720 * time.Hour)
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "plan", "status", "max_users",
		"expiry_date", "features", "created_at", "updated_at"}).
		AddRow(uuid.New(), tenantID, "pro", "active", 25, &expiry, []string{"leads"}, time.Now(), time.Now())

	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, plan, status, max_users, expiry_date, features, created_at, updated_at
		FROM subscriptions
		WHERE tenant_id = \$1
		ORDER BY created_at DESC
		LIMIT 1
	`).WithArgs(tenantID).
		WillReturnRows(rows)

	sub, err := suite.repo.GetLatestByTenant(suite.ctx, tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "pro", sub.Plan)
	assert.Equal(suite.T(), 25, sub.MaxUsers)
}
