package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error)
}

type campaignRepo struct {
	db Database
}

func NewCampaignRepo(db Database) CampaignRepository {
	return &campaignRepo{db: db}
}

const campaignColumns = "id, tenant_id, name, type, status, leads, converted, budget, spent, start_date, end_date, created_by, created_at, updated_at"

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	err := row.Scan(&campaign.ID, &campaign.TenantID, &campaign.Name, &campaign.Type, &campaign.Status,
		&campaign.Leads, &campaign.Converted, &campaign.Budget, &campaign.Spent,
		&campaign.StartDate, &campaign.EndDate, &campaign.CreatedBy, &campaign.CreatedAt, &campaign.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, tenant_id, name, type, status, leads, converted, budget, spent, start_date, end_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, campaign.ID, campaign.TenantID, campaign.Name, campaign.Type,
		campaign.Status, campaign.Leads, campaign.Converted, campaign.Budget, campaign.Spent,
		campaign.StartDate, campaign.EndDate, campaign.CreatedBy)
	return common.MapPgError(err)
}

func (r *campaignRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 AND tenant_id = $2`
	return scanCampaign(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *campaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1, type = $2, status = $3, leads = $4, converted = $5, budget = $6, spent = $7, start_date = $8, end_date = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11
	`
	tag, err := r.db.Exec(ctx, query, campaign.Name, campaign.Type, campaign.Status, campaign.Leads,
		campaign.Converted, campaign.Budget, campaign.Spent, campaign.StartDate, campaign.EndDate,
		campaign.ID, campaign.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *campaignRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM campaigns WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *campaignRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign := &models.Campaign{}
		if err := rows.Scan(&campaign.ID, &campaign.TenantID, &campaign.Name, &campaign.Type, &campaign.Status,
			&campaign.Leads, &campaign.Converted, &campaign.Budget, &campaign.Spent,
			&campaign.StartDate, &campaign.EndDate, &campaign.CreatedBy, &campaign.CreatedAt, &campaign.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}
