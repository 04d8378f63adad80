package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Contact, error)
	ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*models.Contact, error)
	DetachAccount(ctx context.Context, tenantID, accountID uuid.UUID) error
}

type contactRepo struct {
	db Database
}

func NewContactRepo(db Database) ContactRepository {
	return &contactRepo{db: db}
}

const contactColumns = "id, tenant_id, first_name, last_name, email, phone, company, account_id, status, created_by, created_at, updated_at"

func scanContact(row pgx.Row) (*models.Contact, error) {
	contact := &models.Contact{}
	err := row.Scan(&contact.ID, &contact.TenantID, &contact.FirstName, &contact.LastName, &contact.Email,
		&contact.Phone, &contact.Company, &contact.AccountID, &contact.Status, &contact.CreatedBy,
		&contact.CreatedAt, &contact.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRepo) Create(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (id, tenant_id, first_name, last_name, email, phone, company, account_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, contact.ID, contact.TenantID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.Company, contact.AccountID, contact.Status, contact.CreatedBy)
	return common.MapPgError(err)
}

func (r *contactRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND tenant_id = $2`
	return scanContact(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *contactRepo) Update(ctx context.Context, contact *models.Contact) error {
	query := `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone = $4, company = $5, account_id = $6, status = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9
	`
	tag, err := r.db.Exec(ctx, query, contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Company, contact.AccountID, contact.Status, contact.ID, contact.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *contactRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *contactRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryContacts(ctx, query, tenantID, limit, offset)
}

func (r *contactRepo) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE tenant_id = $1 AND account_id = $2
		ORDER BY created_at DESC
	`
	return r.queryContacts(ctx, query, tenantID, accountID)
}

// DetachAccount nulls account_id on every contact of the account. Run inside
// the account-delete transaction so the contacts survive the account.
func (r *contactRepo) DetachAccount(ctx context.Context, tenantID, accountID uuid.UUID) error {
	query := `UPDATE contacts SET account_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND account_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, accountID)
	return common.MapPgError(err)
}

func (r *contactRepo) queryContacts(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact := &models.Contact{}
		if err := rows.Scan(&contact.ID, &contact.TenantID, &contact.FirstName, &contact.LastName, &contact.Email,
			&contact.Phone, &contact.Company, &contact.AccountID, &contact.Status, &contact.CreatedBy,
			&contact.CreatedAt, &contact.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
