package repositories

import (
	"context"
	"errors"
	"testing"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type QuoteRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     QuoteRepository
	tenantID uuid.UUID
	quoteID  uuid.UUID
	ctx      context.Context
}

func (suite *QuoteRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewQuoteRepo(mock)
	suite.tenantID = uuid.New()
	suite.quoteID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *QuoteRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestQuoteRepoTestSuite(t *testing.T) {
	suite.Run(t, new(QuoteRepoTestSuite))
}

func (suite *QuoteRepoTestSuite) TestReplaceItems_DeletesThenInserts() {
	items := []*models.QuoteItem{
		{ID: uuid.New(), QuoteID: suite.quoteID, Name: "Widget", Qty: 3, Price: decimal.RequireFromString("10.00")},
		{ID: uuid.New(), QuoteID: suite.quoteID, Name: "Gadget", Qty: 1, Price: decimal.RequireFromString("25.50")},
	}

	suite.mock.ExpectExec(`DELETE FROM quote_items WHERE quote_id = \$1`).
		WithArgs(suite.quoteID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectExec(`
		INSERT INTO quote_items \(id, quote_id, product_id, name, qty, price\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
	`).WithArgs(items[0].ID, suite.quoteID, items[0].ProductID, "Widget", 3, items[0].Price).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`
		INSERT INTO quote_items \(id, quote_id, product_id, name, qty, price\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
	`).WithArgs(items[1].ID, suite.quoteID, items[1].ProductID, "Gadget", 1, items[1].Price).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.ReplaceItems(suite.ctx, suite.quoteID, items)
	assert.NoError(suite.T(), err)
}

func (suite *QuoteRepoTestSuite) TestReplaceItems_EmptySetClearsItems() {
	suite.mock.ExpectExec(`DELETE FROM quote_items WHERE quote_id = \$1`).
		WithArgs(suite.quoteID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := suite.repo.ReplaceItems(suite.ctx, suite.quoteID, nil)
	assert.NoError(suite.T(), err)
}

func (suite *QuoteRepoTestSuite) TestReplaceItems_InsertFailureSurfaces() {
	items := []*models.QuoteItem{
		{ID: uuid.New(), QuoteID: suite.quoteID, Name: "Widget", Qty: 1, Price: decimal.RequireFromString("10.00")},
	}

	suite.mock.ExpectExec(`DELETE FROM quote_items WHERE quote_id = \$1`).
		WithArgs(suite.quoteID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectExec(`
		INSERT INTO quote_items \(id, quote_id, product_id, name, qty, price\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
	`).WithArgs(items[0].ID, suite.quoteID, items[0].ProductID, "Widget", 1, items[0].Price).
		WillReturnError(errors.New("database connection failed"))

	err := suite.repo.ReplaceItems(suite.ctx, suite.quoteID, items)
	assert.Error(suite.T(), err)
}

func (suite *QuoteRepoTestSuite) TestDelete_WrongTenant() {
	suite.mock.ExpectExec(`DELETE FROM quotes WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs(suite.quoteID, suite.tenantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.repo.Delete(suite.ctx, suite.tenantID, suite.quoteID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *QuoteRepoTestSuite) TestDetachDeal_ClearsReferences() {
	dealID := uuid.New()
	suite.mock.ExpectExec(`UPDATE quotes SET deal_id = NULL, updated_at = NOW\(\) WHERE tenant_id = \$1 AND deal_id = \$2`).
		WithArgs(suite.tenantID, dealID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	err := suite.repo.DetachDeal(suite.ctx, suite.tenantID, dealID)
	assert.NoError(suite.T(), err)
}

func (suite *QuoteRepoTestSuite) TestListItems_OrderedByName() {
	rows := pgxmock.NewRows([]string{"id", "quote_id", "product_id", "name", "qty", "price"}).
		AddRow(uuid.New(), suite.quoteID, (*uuid.UUID)(nil), "Gadget", 1, decimal.RequireFromString("25.50")).
		AddRow(uuid.New(), suite.quoteID, (*uuid.UUID)(nil), "Widget", 3, decimal.RequireFromString("10.00"))

	suite.mock.ExpectQuery(`
		SELECT id, quote_id, product_id, name, qty, price
		FROM quote_items
		WHERE quote_id = \$1
		ORDER BY name
	`).WithArgs(suite.quoteID).
		WillReturnRows(rows)

	items, err := suite.repo.ListItems(suite.ctx, suite.quoteID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 2)
	assert.Equal(suite.T(), "Gadget", items[0].Name)
	assert.Equal(suite.T(), "Widget", items[1].Name)
}
