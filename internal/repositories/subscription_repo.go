package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	GetLatestByTenantForUpdate(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Subscription, error)
	ExpireDue(ctx context.Context) ([]uuid.UUID, error)
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = "id, tenant_id, plan, status, max_users, expiry_date, features, created_at, updated_at"

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := row.Scan(&sub.ID, &sub.TenantID, &sub.Plan, &sub.Status, &sub.MaxUsers,
		&sub.ExpiryDate, &sub.Features, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, tenant_id, plan, status, max_users, expiry_date, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, sub.ID, sub.TenantID, sub.Plan, sub.Status, sub.MaxUsers,
		sub.ExpiryDate, sub.Features)
	return common.MapPgError(err)
}

func (r *subscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, id))
}

func (r *subscriptionRepo) GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanSubscription(r.db.QueryRow(ctx, query, tenantID))
}

// GetLatestByTenantForUpdate locks the subscription row for the length of the
// surrounding transaction so concurrent seat-limit checks serialize.
func (r *subscriptionRepo) GetLatestByTenantForUpdate(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`
	return scanSubscription(r.db.QueryRow(ctx, query, tenantID))
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan = $1, status = $2, max_users = $3, expiry_date = $4, features = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, sub.Plan, sub.Status, sub.MaxUsers, sub.ExpiryDate, sub.Features, sub.ID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE subscriptions SET status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		if err := rows.Scan(&sub.ID, &sub.TenantID, &sub.Plan, &sub.Status, &sub.MaxUsers,
			&sub.ExpiryDate, &sub.Features, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ExpireDue flips subscriptions whose expiry date has passed to expired,
// warning rows included, and returns the affected tenant ids so the caller
// can drop their cache entries. Run by the background sweep.
func (r *subscriptionRepo) ExpireDue(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE status IN ('active', 'warning') AND expiry_date IS NOT NULL AND expiry_date < NOW()
		RETURNING tenant_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, common.MapPgError(err)
	}
	defer rows.Close()

	var tenantIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenantIDs = append(tenantIDs, id)
	}
	return tenantIDs, rows.Err()
}
