package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PlanChangeResult carries the updated subscription plus any usage warnings.
// A downgrade below current usage succeeds with warnings; data is never
// deleted to fit a smaller plan.
type PlanChangeResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Warnings     []string             `json:"warnings"`
}

type SubscriptionService interface {
	GetActive(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	HasFeature(ctx context.Context, tenantID uuid.UUID, feature string) (bool, error)
	RequireFeature(ctx context.Context, tenantID uuid.UUID, feature string) error
	IsExpired(ctx context.Context, tenantID uuid.UUID) (bool, error)
	EnforceSeatLimit(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error
	ChangePlan(ctx context.Context, tenantID uuid.UUID, newPlan string) (*PlanChangeResult, error)
	ExtendExpiry(ctx context.Context, tenantID uuid.UUID, until time.Time) error
}

type subscriptionService struct {
	db      Store
	subRepo repositories.SubscriptionRepository
	catalog *plans.Catalog
	cache   TenantCache
}

func NewSubscriptionService(db Store, subRepo repositories.SubscriptionRepository,
	catalog *plans.Catalog, cache TenantCache) SubscriptionService {
	return &subscriptionService{db: db, subRepo: subRepo, catalog: catalog, cache: cache}
}

// GetActive returns the tenant's current subscription: the newest row wins
// when history has accumulated.
func (s *subscriptionService) GetActive(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	if s.cache != nil {
		sub, err := s.cache.GetSubscription(ctx, tenantID)
		if err != nil {
			log.Printf("subscription cache read failed: %v", err)
		} else if sub != nil {
			return sub, nil
		}
	}
	sub, err := s.subRepo.GetLatestByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSubscription(ctx, sub); err != nil {
			log.Printf("subscription cache write failed: %v", err)
		}
	}
	return sub, nil
}

func (s *subscriptionService) HasFeature(ctx context.Context, tenantID uuid.UUID, feature string) (bool, error) {
	sub, err := s.GetActive(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return sub.HasFeature(feature), nil
}

// RequireFeature gates plan-restricted operations. Warning status still
// grants access; only expiry or cancellation locks the feature set out.
func (s *subscriptionService) RequireFeature(ctx context.Context, tenantID uuid.UUID, feature string) error {
	sub, err := s.GetActive(ctx, tenantID)
	if err != nil {
		return err
	}
	now := time.Now()
	if sub.Status == "expired" || sub.Status == "cancelled" || sub.Expired(now) {
		return fmt.Errorf("tenant %s: %w", tenantID, common.ErrSubscriptionExpired)
	}
	if !sub.HasFeature(feature) {
		return fmt.Errorf("%w: %s requires an upgraded plan", common.ErrFeatureNotInPlan, feature)
	}
	return nil
}

// IsExpired reports whether the tenant's subscription has lapsed, either by
// status or by a past expiry date the sweep has not flipped yet.
func (s *subscriptionService) IsExpired(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	sub, err := s.GetActive(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return sub.Status == "expired" || sub.Expired(time.Now()), nil
}

// EnforceSeatLimit locks the subscription row inside the caller's transaction
// and counts active users, so two concurrent admissions at limit-1 cannot
// both pass. The caller commits or rolls back.
func (s *subscriptionService) EnforceSeatLimit(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	sub, err := repositories.NewSubscriptionRepo(tx).GetLatestByTenantForUpdate(ctx, tenantID)
	if err != nil {
		return err
	}
	activeUsers, err := repositories.NewUserRepo(tx).CountActiveByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if activeUsers >= sub.MaxUsers {
		return fmt.Errorf("%w: %d of %d seats in use", common.ErrSeatLimitExceeded, activeUsers, sub.MaxUsers)
	}
	return nil
}

// ChangePlan switches the tenant to a new plan in one transaction. The
// subscription row is locked so a concurrent seat-limit check cannot admit a
// user against the old limit mid-change.
func (s *subscriptionService) ChangePlan(ctx context.Context, tenantID uuid.UUID, newPlan string) (*PlanChangeResult, error) {
	plan, err := s.catalog.Get(newPlan)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	subs := repositories.NewSubscriptionRepo(tx)
	sub, err := subs.GetLatestByTenantForUpdate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub.Status == "cancelled" {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, common.ErrTenantCancelled)
	}

	activeUsers, err := repositories.NewUserRepo(tx).CountActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var warnings []string
	status := "active"
	if activeUsers > plan.MaxUsers {
		status = "warning"
		warnings = append(warnings, fmt.Sprintf(
			"%d active users exceed the %s plan limit of %d; deactivate users to clear the warning",
			activeUsers, plan.Plan, plan.MaxUsers))
	}
	for _, feature := range sub.Features {
		if !contains(plan.Features, feature) {
			warnings = append(warnings, fmt.Sprintf("feature %q is not included in the %s plan", feature, plan.Plan))
		}
	}

	sub.Plan = plan.Plan
	sub.Status = status
	sub.MaxUsers = plan.MaxUsers
	sub.Features = plan.Features
	if err := subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	if err := repositories.NewTenantRepo(tx).UpdatePlan(ctx, tenantID, plan.Plan); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	return &PlanChangeResult{Subscription: sub, Warnings: warnings}, nil
}

func (s *subscriptionService) ExtendExpiry(ctx context.Context, tenantID uuid.UUID, until time.Time) error {
	sub, err := s.subRepo.GetLatestByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if sub.Status == "cancelled" {
		return fmt.Errorf("tenant %s: %w", tenantID, common.ErrTenantCancelled)
	}
	sub.ExpiryDate = &until
	if sub.Status == "expired" {
		sub.Status = "active"
	}
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *subscriptionService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenantScope(ctx, tenantID); err != nil {
		log.Printf("subscription cache invalidation failed: %v", err)
	}
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
