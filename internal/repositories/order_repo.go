package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
	DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = "id, tenant_id, number, contact_id, client, items, subtotal, tax, total, status, order_date, delivery_date, created_by, created_at, updated_at"

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.TenantID, &order.Number, &order.ContactID, &order.Client,
		&order.Items, &order.Subtotal, &order.Tax, &order.Total, &order.Status,
		&order.OrderDate, &order.DeliveryDate, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, tenant_id, number, contact_id, client, items, subtotal, tax, total, status, order_date, delivery_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.TenantID, order.Number, order.ContactID, order.Client,
		order.Items, order.Subtotal, order.Tax, order.Total, order.Status,
		order.OrderDate, order.DeliveryDate, order.CreatedBy)
	return common.MapPgError(err)
}

func (r *orderRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND tenant_id = $2`
	return scanOrder(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET number = $1, contact_id = $2, client = $3, items = $4, subtotal = $5, tax = $6, total = $7, status = $8, order_date = $9, delivery_date = $10, updated_at = NOW()
		WHERE id = $11 AND tenant_id = $12
	`
	tag, err := r.db.Exec(ctx, query, order.Number, order.ContactID, order.Client, order.Items,
		order.Subtotal, order.Tax, order.Total, order.Status, order.OrderDate, order.DeliveryDate,
		order.ID, order.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.TenantID, &order.Number, &order.ContactID, &order.Client,
			&order.Items, &order.Subtotal, &order.Tax, &order.Total, &order.Status,
			&order.OrderDate, &order.DeliveryDate, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	query := `UPDATE orders SET contact_id = NULL, updated_at = NOW() WHERE tenant_id = $1 AND contact_id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, contactID)
	return common.MapPgError(err)
}
