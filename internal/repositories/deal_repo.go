package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Deal, error)
	Update(ctx context.Context, deal *models.Deal) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Deal, error)
	ListByStage(ctx context.Context, tenantID uuid.UUID, stage string, limit, offset int) ([]*models.Deal, error)
	DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error
	DetachAccount(ctx context.Context, tenantID, accountID uuid.UUID) error
}

type dealRepo struct {
	db Database
}

func NewDealRepo(db Database) DealRepository {
	return &dealRepo{db: db}
}

const dealColumns = "id, tenant_id, title, contact_id, account_id, stage, value, margin, cost, revenue, probability, close_date, status, created_by, created_at, updated_at"

func scanDeal(row pgx.Row) (*models.Deal, error) {
	deal := &models.Deal{}
	err := row.Scan(&deal.ID, &deal.TenantID, &deal.Title, &deal.ContactID, &deal.AccountID, &deal.Stage,
		&deal.Value, &deal.Margin, &deal.Cost, &deal.Revenue, &deal.Probability, &deal.CloseDate,
		&deal.Status, &deal.CreatedBy, &deal.CreatedAt, &deal.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *dealRepo) Create(ctx context.Context, deal *models.Deal) error {
	query := `
		INSERT INTO deals (id, tenant_id, title, contact_id, account_id, stage, value, margin, cost, revenue, probability, close_date, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, deal.ID, deal.TenantID, deal.Title, deal.ContactID, deal.AccountID,
		deal.Stage, deal.Value, deal.Margin, deal.Cost, deal.Revenue, deal.Probability,
		deal.CloseDate, deal.Status, deal.CreatedBy)
	return common.MapPgError(err)
}

func (r *dealRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 AND tenant_id = $2`
	return scanDeal(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *dealRepo) Update(ctx context.Context, deal *models.Deal) error {
	query := `
		UPDATE deals
		SET title = $1, contact_id = $2, account_id = $3, stage = $4, value = $5, margin = $6, cost = $7, revenue = $8, probability = $9, close_date = $10, status = $11, updated_at = NOW()
		WHERE id = $12 AND tenant_id = $13
	`
	tag, err := r.db.Exec(ctx, query, deal.Title, deal.ContactID, deal.AccountID, deal.Stage,
		deal.Value, deal.Margin, deal.Cost, deal.Revenue, deal.Probability, deal.CloseDate,
		deal.Status, deal.ID, deal.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *dealRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM deals WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *dealRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryDeals(ctx, query, tenantID, limit, offset)
}

func (r *dealRepo) ListByStage(ctx context.Context, tenantID uuid.UUID, stage string, limit, offset int) ([]*models.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE tenant_id = $1 AND stage = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryDeals(ctx, query, tenantID, stage, limit, offset)
}

func (r *dealRepo) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	query := `UPDATE deals SET contact_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND contact_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, contactID)
	return common.MapPgError(err)
}

func (r *dealRepo) DetachAccount(ctx context.Context, tenantID, accountID uuid.UUID) error {
	query := `UPDATE deals SET account_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND account_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, accountID)
	return common.MapPgError(err)
}

func (r *dealRepo) queryDeals(ctx context.Context, query string, args ...any) ([]*models.Deal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		deal := &models.Deal{}
		if err := rows.Scan(&deal.ID, &deal.TenantID, &deal.Title, &deal.ContactID, &deal.AccountID, &deal.Stage,
			&deal.Value, &deal.Margin, &deal.Cost, &deal.Revenue, &deal.Probability, &deal.CloseDate,
			&deal.Status, &deal.CreatedBy, &deal.CreatedAt, &deal.UpdatedAt); err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}
