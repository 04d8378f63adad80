package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	MarkOverdue(ctx context.Context) (int64, error)
	DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error
	DetachQuote(ctx context.Context, tenantID, quoteID uuid.UUID) error
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepo(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = "id, tenant_id, number, contact_id, client, amount, tax, total, due_date, status, quote_id, created_by, created_at, updated_at"

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(&invoice.ID, &invoice.TenantID, &invoice.Number, &invoice.ContactID, &invoice.Client,
		&invoice.Amount, &invoice.Tax, &invoice.Total, &invoice.DueDate, &invoice.Status,
		&invoice.QuoteID, &invoice.CreatedBy, &invoice.CreatedAt, &invoice.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, tenant_id, number, contact_id, client, amount, tax, total, due_date, status, quote_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, invoice.ID, invoice.TenantID, invoice.Number, invoice.ContactID,
		invoice.Client, invoice.Amount, invoice.Tax, invoice.Total, invoice.DueDate, invoice.Status,
		invoice.QuoteID, invoice.CreatedBy)
	return common.MapPgError(err)
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND tenant_id = $2`
	return scanInvoice(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET number = $1, contact_id = $2, client = $3, amount = $4, tax = $5, total = $6, due_date = $7, status = $8, quote_id = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11
	`
	tag, err := r.db.Exec(ctx, query, invoice.Number, invoice.ContactID, invoice.Client, invoice.Amount,
		invoice.Tax, invoice.Total, invoice.DueDate, invoice.Status, invoice.QuoteID,
		invoice.ID, invoice.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryInvoices(ctx, query, tenantID, limit, offset)
}

func (r *invoiceRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryInvoices(ctx, query, tenantID, status, limit, offset)
}

// MarkOverdue flips sent or pending invoices past their due date to overdue.
// Run across all tenants by the background sweep.
func (r *invoiceRepo) MarkOverdue(ctx context.Context) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status IN ('sent', 'pending') AND due_date IS NOT NULL AND due_date < NOW()
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, common.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *invoiceRepo) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	query := `UPDATE invoices SET contact_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND contact_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, contactID)
	return common.MapPgError(err)
}

func (r *invoiceRepo) DetachQuote(ctx context.Context, tenantID, quoteID uuid.UUID) error {
	query := `UPDATE invoices SET quote_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND quote_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, quoteID)
	return common.MapPgError(err)
}

func (r *invoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		if err := rows.Scan(&invoice.ID, &invoice.TenantID, &invoice.Number, &invoice.ContactID, &invoice.Client,
			&invoice.Amount, &invoice.Tax, &invoice.Total, &invoice.DueDate, &invoice.Status,
			&invoice.QuoteID, &invoice.CreatedBy, &invoice.CreatedAt, &invoice.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}
