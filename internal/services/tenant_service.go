package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
)

type CreateTenantRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Plan   string `json:"plan"`
}

type UpdateTenantRequest struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Domain string    `json:"domain"`
}

type TenantService interface {
	Create(ctx context.Context, req CreateTenantRequest) (*models.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	Update(ctx context.Context, req UpdateTenantRequest) (*models.Tenant, error)
	Suspend(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	db         Store
	tenantRepo repositories.TenantRepository
	subRepo    repositories.SubscriptionRepository
	catalog    *plans.Catalog
	cache      TenantCache
}

func NewTenantService(db Store, tenantRepo repositories.TenantRepository,
	subRepo repositories.SubscriptionRepository, catalog *plans.Catalog, cache TenantCache) TenantService {
	return &tenantService{db: db, tenantRepo: tenantRepo, subRepo: subRepo, catalog: catalog, cache: cache}
}

// Create provisions the tenant together with its initial subscription in one
// transaction; a tenant without a subscription never becomes visible.
func (s *tenantService) Create(ctx context.Context, req CreateTenantRequest) (*models.Tenant, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if req.Plan == "" {
		req.Plan = "basic"
	}
	if err := common.ValidateEnum(req.Plan, common.TenantPlans, "plan"); err != nil {
		return nil, err
	}
	plan, err := s.catalog.Get(req.Plan)
	if err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         req.Name,
		Domain:       req.Domain,
		Plan:         req.Plan,
		Status:       "active",
		PrimaryColor: "#6366f1",
	}
	expiry := time.Now().AddDate(0, 1, 0)
	sub := &models.Subscription{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		Plan:       plan.Plan,
		Status:     "active",
		MaxUsers:   plan.MaxUsers,
		ExpiryDate: &expiry,
		Features:   plan.Features,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := repositories.NewTenantRepo(tx).Create(ctx, tenant); err != nil {
		return nil, err
	}
	if err := repositories.NewSubscriptionRepo(tx).Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	guard := tenantGuard{tenantRepo: s.tenantRepo, cache: s.cache}
	return guard.resolveTenant(ctx, id)
}

func (s *tenantService) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	if err := common.ValidateRequiredString(domain, "domain"); err != nil {
		return nil, err
	}
	return s.tenantRepo.GetByDomain(ctx, domain)
}

func (s *tenantService) Update(ctx context.Context, req UpdateTenantRequest) (*models.Tenant, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == "cancelled" {
		return nil, fmt.Errorf("tenant %s: %w", req.ID, common.ErrTenantCancelled)
	}
	tenant.Name = req.Name
	tenant.Domain = req.Domain
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant.ID)
	return tenant, nil
}

// Lifecycle transitions. Cancelled is terminal; every other move between
// active and suspended is allowed.
var tenantTransitions = map[string]map[string]bool{
	"active":    {"suspended": true, "cancelled": true},
	"suspended": {"active": true, "cancelled": true},
	"cancelled": {},
}

func (s *tenantService) Suspend(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, "suspended")
}

func (s *tenantService) Activate(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, "active")
}

// Cancel freezes the tenant and its subscription. Data stays in place until
// an explicit Delete.
func (s *tenantService) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.transition(ctx, id, "cancelled"); err != nil {
		return err
	}
	sub, err := s.subRepo.GetLatestByTenant(ctx, id)
	if err == nil {
		if err := s.subRepo.UpdateStatus(ctx, sub.ID, "cancelled"); err != nil {
			return err
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *tenantService) transition(ctx context.Context, id uuid.UUID, target string) error {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant.Status == target {
		return nil
	}
	if !tenantTransitions[tenant.Status][target] {
		return fmt.Errorf("%w: cannot move tenant from %s to %s",
			common.ErrInvalidStatus, tenant.Status, target)
	}
	if err := s.tenantRepo.UpdateStatus(ctx, id, target); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the tenant and everything it owns. The schema cascades
// subscriptions, users (and their reset tokens) and every funnel entity, so
// the single statement is atomic.
func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.tenantRepo.List(ctx, limit, offset)
}

func (s *tenantService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenantScope(ctx, id); err != nil {
		log.Printf("tenant cache invalidation failed: %v", err)
	}
}
