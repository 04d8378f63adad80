package services

import (
	"context"
	"fmt"
	"log"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the transactional store services run on. *pgxpool.Pool satisfies
// it in production, pgxmock in tests.
type Store interface {
	repositories.Database
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TenantCache is the read-through cache for tenant and subscription rows,
// implemented by caching.CacheService. Services tolerate a nil cache.
type TenantCache interface {
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	SetTenant(ctx context.Context, tenant *models.Tenant) error
	InvalidateTenant(ctx context.Context, id uuid.UUID) error
	GetSubscription(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	SetSubscription(ctx context.Context, sub *models.Subscription) error
	InvalidateSubscription(ctx context.Context, tenantID uuid.UUID) error
	InvalidateTenantScope(ctx context.Context, tenantID uuid.UUID) error
}

// tenantGuard resolves a tenant and rejects operations against cancelled
// tenants. Every tenant-scoped write goes through it.
type tenantGuard struct {
	tenantRepo repositories.TenantRepository
	cache      TenantCache
}

func (g *tenantGuard) resolveTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	if g.cache != nil {
		tenant, err := g.cache.GetTenant(ctx, tenantID)
		if err != nil {
			log.Printf("tenant cache read failed: %v", err)
		} else if tenant != nil {
			return tenant, nil
		}
	}
	tenant, err := g.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if g.cache != nil {
		if err := g.cache.SetTenant(ctx, tenant); err != nil {
			log.Printf("tenant cache write failed: %v", err)
		}
	}
	return tenant, nil
}

// requireLiveTenant resolves the tenant and rejects cancelled ones. Suspended
// tenants keep their data writable; only cancellation freezes the workspace.
func (g *tenantGuard) requireLiveTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := g.resolveTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == "cancelled" {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, common.ErrTenantCancelled)
	}
	return tenant, nil
}
