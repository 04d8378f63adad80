package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error)
	Update(ctx context.Context, quote *models.Quote) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Quote, error)
	ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []*models.QuoteItem) error
	ListItems(ctx context.Context, quoteID uuid.UUID) ([]*models.QuoteItem, error)
	DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error
	DetachDeal(ctx context.Context, tenantID, dealID uuid.UUID) error
}

type quoteRepo struct {
	db Database
}

func NewQuoteRepo(db Database) QuoteRepository {
	return &quoteRepo{db: db}
}

const quoteColumns = "id, tenant_id, number, contact_id, contact_name, deal_id, amount, status, valid_until, created_by, created_at, updated_at"

func scanQuote(row pgx.Row) (*models.Quote, error) {
	quote := &models.Quote{}
	err := row.Scan(&quote.ID, &quote.TenantID, &quote.Number, &quote.ContactID, &quote.ContactName,
		&quote.DealID, &quote.Amount, &quote.Status, &quote.ValidUntil, &quote.CreatedBy,
		&quote.CreatedAt, &quote.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *quoteRepo) Create(ctx context.Context, quote *models.Quote) error {
	query := `
		INSERT INTO quotes (id, tenant_id, number, contact_id, contact_name, deal_id, amount, status, valid_until, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, quote.ID, quote.TenantID, quote.Number, quote.ContactID,
		quote.ContactName, quote.DealID, quote.Amount, quote.Status, quote.ValidUntil, quote.CreatedBy)
	return common.MapPgError(err)
}

func (r *quoteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1 AND tenant_id = $2`
	return scanQuote(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *quoteRepo) Update(ctx context.Context, quote *models.Quote) error {
	query := `
		UPDATE quotes
		SET number = $1, contact_id = $2, contact_name = $3, deal_id = $4, amount = $5, status = $6, valid_until = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9
	`
	tag, err := r.db.Exec(ctx, query, quote.Number, quote.ContactID, quote.ContactName, quote.DealID,
		quote.Amount, quote.Status, quote.ValidUntil, quote.ID, quote.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes the quote; its items go with it via the FK cascade.
func (r *quoteRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM quotes WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *quoteRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Quote, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		quote := &models.Quote{}
		if err := rows.Scan(&quote.ID, &quote.TenantID, &quote.Number, &quote.ContactID, &quote.ContactName,
			&quote.DealID, &quote.Amount, &quote.Status, &quote.ValidUntil, &quote.CreatedBy,
			&quote.CreatedAt, &quote.UpdatedAt); err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

// ReplaceItems rewrites the full item set of a quote: delete then insert, in
// the caller's transaction, so items always match the submitted list exactly.
func (r *quoteRepo) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []*models.QuoteItem) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quoteID); err != nil {
		return common.MapPgError(err)
	}
	query := `
		INSERT INTO quote_items (id, quote_id, product_id, name, qty, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range items {
		if _, err := r.db.Exec(ctx, query, item.ID, quoteID, item.ProductID, item.Name, item.Qty, item.Price); err != nil {
			return common.MapPgError(err)
		}
	}
	return nil
}

func (r *quoteRepo) ListItems(ctx context.Context, quoteID uuid.UUID) ([]*models.QuoteItem, error) {
	query := `
		SELECT id, quote_id, product_id, name, qty, price
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.QuoteItem
	for rows.Next() {
		item := &models.QuoteItem{}
		if err := rows.Scan(&item.ID, &item.QuoteID, &item.ProductID, &item.Name, &item.Qty, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *quoteRepo) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	query := `UPDATE quotes SET contact_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND contact_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, contactID)
	return common.MapPgError(err)
}

func (r *quoteRepo) DetachDeal(ctx context.Context, tenantID, dealID uuid.UUID) error {
	query := `UPDATE quotes SET deal_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND deal_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, dealID)
	return common.MapPgError(err)
}
