package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error)
}

type accountRepo struct {
	db Database
}

func NewAccountRepo(db Database) AccountRepository {
	return &accountRepo{db: db}
}

const accountColumns = "id, tenant_id, name, industry, website, phone, email, revenue, employees, status, owner_id, created_by, created_at, updated_at"

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.TenantID, &account.Name, &account.Industry, &account.Website,
		&account.Phone, &account.Email, &account.Revenue, &account.Employees, &account.Status,
		&account.OwnerID, &account.CreatedBy, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, tenant_id, name, industry, website, phone, email, revenue, employees, status, owner_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, account.ID, account.TenantID, account.Name, account.Industry,
		account.Website, account.Phone, account.Email, account.Revenue, account.Employees,
		account.Status, account.OwnerID, account.CreatedBy)
	return common.MapPgError(err)
}

func (r *accountRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND tenant_id = $2`
	return scanAccount(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *accountRepo) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, industry = $2, website = $3, phone = $4, email = $5, revenue = $6, employees = $7, status = $8, owner_id = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11
	`
	tag, err := r.db.Exec(ctx, query, account.Name, account.Industry, account.Website, account.Phone,
		account.Email, account.Revenue, account.Employees, account.Status, account.OwnerID,
		account.ID, account.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *accountRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *accountRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(&account.ID, &account.TenantID, &account.Name, &account.Industry, &account.Website,
			&account.Phone, &account.Email, &account.Revenue, &account.Employees, &account.Status,
			&account.OwnerID, &account.CreatedBy, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
