package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Lead, error)
}

type leadRepo struct {
	db Database
}

func NewLeadRepo(db Database) LeadRepository {
	return &leadRepo{db: db}
}

const leadColumns = "id, tenant_id, name, email, phone, company, status, source, score, created_by, created_at, updated_at"

func scanLead(row pgx.Row) (*models.Lead, error) {
	lead := &models.Lead{}
	err := row.Scan(&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Status, &lead.Source, &lead.Score, &lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *leadRepo) Create(ctx context.Context, lead *models.Lead) error {
	query := `
		INSERT INTO leads (id, tenant_id, name, email, phone, company, status, source, score, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone,
		lead.Company, lead.Status, lead.Source, lead.Score, lead.CreatedBy)
	return common.MapPgError(err)
}

func (r *leadRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND tenant_id = $2`
	return scanLead(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *leadRepo) Update(ctx context.Context, lead *models.Lead) error {
	query := `
		UPDATE leads
		SET name = $1, email = $2, phone = $3, company = $4, status = $5, source = $6, score = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9
	`
	tag, err := r.db.Exec(ctx, query, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Status, lead.Source, lead.Score, lead.ID, lead.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *leadRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM leads WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *leadRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryLeads(ctx, query, tenantID, limit, offset)
}

func (r *leadRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE tenant_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryLeads(ctx, query, tenantID, status, limit, offset)
}

func (r *leadRepo) queryLeads(ctx context.Context, query string, args ...any) ([]*models.Lead, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead := &models.Lead{}
		if err := rows.Scan(&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
			&lead.Status, &lead.Source, &lead.Score, &lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
