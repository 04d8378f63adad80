package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"funnelcrm/internal/common"
	"funnelcrm/internal/services"
)

const (
	demoDomain = "demo.funnelcrm.local"
	demoName   = "Demo Workspace"
	demoAdmin  = "admin@demo.funnelcrm.local"
)

// Demo provisions a demo workspace with an admin user when none exists yet.
// Re-running is a no-op keyed on the workspace domain.
func Demo(ctx context.Context, tenants services.TenantService,
	identity services.IdentityService, adminPassword string) error {
	if adminPassword == "" {
		return fmt.Errorf("demo admin password is required")
	}

	if _, err := tenants.GetByDomain(ctx, demoDomain); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	tenant, err := tenants.Create(ctx, services.CreateTenantRequest{
		Name:   demoName,
		Domain: demoDomain,
		Plan:   "pro",
	})
	if err != nil {
		return fmt.Errorf("seed demo tenant: %w", err)
	}
	if _, err := identity.CreateUser(ctx, services.CreateUserRequest{
		TenantID: tenant.ID,
		Name:     "Demo Admin",
		Email:    demoAdmin,
		Password: adminPassword,
		Role:     "ADMIN",
	}); err != nil {
		return fmt.Errorf("seed demo admin: %w", err)
	}
	log.Printf("Seeded demo workspace %s (%s)", demoName, tenant.ID)
	return nil
}
