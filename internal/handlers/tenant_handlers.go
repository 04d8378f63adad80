package handlers

import (
	"net/http"

	"funnelcrm/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers covers public workspace signup and the admin-only tenant
// lifecycle operations.
type TenantHandlers struct {
	tenants  services.TenantService
	identity services.IdentityService
}

func NewTenantHandlers(tenants services.TenantService, identity services.IdentityService) *TenantHandlers {
	return &TenantHandlers{tenants: tenants, identity: identity}
}

type signupRequest struct {
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	Plan          string `json:"plan"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type signupResponse struct {
	Tenant any `json:"tenant"`
	Admin  any `json:"admin"`
}

// Signup provisions a workspace with its first admin user. A user creation
// failure leaves an empty tenant behind rather than rolling it back; the
// admin can retry through the login flow's error message.
func (h *TenantHandlers) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tenant, err := h.tenants.Create(c.Request().Context(), services.CreateTenantRequest{
		Name:   req.Name,
		Domain: req.Domain,
		Plan:   req.Plan,
	})
	if err != nil {
		return httpError(err)
	}
	admin, err := h.identity.CreateUser(c.Request().Context(), services.CreateUserRequest{
		TenantID: tenant.ID,
		Name:     req.AdminName,
		Email:    req.AdminEmail,
		Password: req.AdminPassword,
		Role:     "ADMIN",
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, signupResponse{Tenant: tenant, Admin: admin})
}

func (h *TenantHandlers) GetTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	tenant, err := h.tenants.Get(c.Request().Context(), tenantID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.ID = tenantID
	tenant, err := h.tenants.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) SuspendTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	if err := h.tenants.Suspend(c.Request().Context(), tenantID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TenantHandlers) ActivateTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	if err := h.tenants.Activate(c.Request().Context(), tenantID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TenantHandlers) CancelTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	if err := h.tenants.Cancel(c.Request().Context(), tenantID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TenantHandlers) DeleteTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	if err := h.tenants.Delete(c.Request().Context(), tenantID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
