package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/jackc/pgx/v5"
)

type PlanRepository interface {
	Get(ctx context.Context, plan string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
	Seed(ctx context.Context, plans []*models.Plan) error
}

type planRepo struct {
	db Database
}

func NewPlanRepo(db Database) PlanRepository {
	return &planRepo{db: db}
}

const planColumns = "plan, label, subtitle, max_users, monthly_price, features, feature_labels"

func (r *planRepo) Get(ctx context.Context, plan string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE plan = $1`
	p := &models.Plan{}
	err := r.db.QueryRow(ctx, query, plan).Scan(&p.Plan, &p.Label, &p.Subtitle, &p.MaxUsers,
		&p.MonthlyPrice, &p.Features, &p.FeatureLabels)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUnknownPlan
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *planRepo) List(ctx context.Context) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY monthly_price`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		if err := rows.Scan(&p.Plan, &p.Label, &p.Subtitle, &p.MaxUsers,
			&p.MonthlyPrice, &p.Features, &p.FeatureLabels); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Seed inserts the catalogue rows, skipping any plan already present so
// repeated startups never duplicate or overwrite the catalogue.
func (r *planRepo) Seed(ctx context.Context, plans []*models.Plan) error {
	query := `
		INSERT INTO plans (plan, label, subtitle, max_users, monthly_price, features, feature_labels)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (plan) DO NOTHING
	`
	for _, p := range plans {
		if _, err := r.db.Exec(ctx, query, p.Plan, p.Label, p.Subtitle, p.MaxUsers,
			p.MonthlyPrice, p.Features, p.FeatureLabels); err != nil {
			return common.MapPgError(err)
		}
	}
	return nil
}
