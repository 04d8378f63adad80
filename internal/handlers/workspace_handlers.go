package handlers

import (
	"net/http"

	"funnelcrm/internal/common"
	"funnelcrm/internal/plans"
	"funnelcrm/internal/services"

	"github.com/labstack/echo/v4"
)

// WorkspaceHandlers serves tenant-internal administration: tasks, campaigns,
// users, the plan catalogue, subscription management and branding.
type WorkspaceHandlers struct {
	tasks         services.TaskService
	campaigns     services.CampaignService
	identity      services.IdentityService
	subscriptions services.SubscriptionService
	branding      services.BrandingService
	catalog       *plans.Catalog
}

func NewWorkspaceHandlers(tasks services.TaskService, campaigns services.CampaignService,
	identity services.IdentityService, subscriptions services.SubscriptionService,
	branding services.BrandingService, catalog *plans.Catalog) *WorkspaceHandlers {
	return &WorkspaceHandlers{
		tasks:         tasks,
		campaigns:     campaigns,
		identity:      identity,
		subscriptions: subscriptions,
		branding:      branding,
		catalog:       catalog,
	}
}

func (h *WorkspaceHandlers) CreateTask(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.CreatedBy = userFromContext(c)
	task, err := h.tasks.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *WorkspaceHandlers) GetTask(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	task, err := h.tasks.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *WorkspaceHandlers) UpdateTask(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	task, err := h.tasks.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *WorkspaceHandlers) DeleteTask(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WorkspaceHandlers) ListTasks(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	if assignee := c.QueryParam("assigned_to"); assignee != "" {
		userID, err := common.ValidateUUID(assignee, "assigned_to")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		tasks, err := h.tasks.ListByAssignee(c.Request().Context(), tenantID, userID, limit, offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, tasks)
	}
	tasks, err := h.tasks.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *WorkspaceHandlers) CreateCampaign(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.CreatedBy = userFromContext(c)
	campaign, err := h.campaigns.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, campaign)
}

func (h *WorkspaceHandlers) GetCampaign(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	campaign, err := h.campaigns.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, campaign)
}

func (h *WorkspaceHandlers) UpdateCampaign(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	campaign, err := h.campaigns.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, campaign)
}

func (h *WorkspaceHandlers) DeleteCampaign(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.campaigns.Delete(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WorkspaceHandlers) ListCampaigns(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	campaigns, err := h.campaigns.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, campaigns)
}

func (h *WorkspaceHandlers) CreateUser(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	user, err := h.identity.CreateUser(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *WorkspaceHandlers) GetUser(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.identity.GetUser(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *WorkspaceHandlers) UpdateUser(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	user, err := h.identity.UpdateUser(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *WorkspaceHandlers) DeactivateUser(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.identity.DeactivateUser(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WorkspaceHandlers) DeleteUser(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.identity.DeleteUser(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WorkspaceHandlers) ListUsers(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	users, err := h.identity.ListUsers(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListPlans is public catalogue data; no tenant scope.
func (h *WorkspaceHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.List())
}

func (h *WorkspaceHandlers) GetSubscription(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	sub, err := h.subscriptions.GetActive(c.Request().Context(), tenantID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sub)
}

type changePlanRequest struct {
	Plan string `json:"plan"`
}

func (h *WorkspaceHandlers) ChangePlan(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req changePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.subscriptions.ChangePlan(c.Request().Context(), tenantID, req.Plan)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type themeRequest struct {
	PrimaryColor string `json:"primary_color"`
	DarkMode     bool   `json:"dark_mode"`
}

func (h *WorkspaceHandlers) UpdateTheme(c echo.Context) error {
	if h.branding == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "branding is not configured")
	}
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req themeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tenant, err := h.branding.UpdateTheme(c.Request().Context(), tenantID, req.PrimaryColor, req.DarkMode)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *WorkspaceHandlers) UploadLogo(c echo.Context) error {
	if h.branding == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "branding is not configured")
	}
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	file, err := c.FormFile("logo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read logo file")
	}
	defer src.Close()

	tenant, err := h.branding.UploadLogo(c.Request().Context(), tenantID, src,
		file.Size, file.Header.Get("Content-Type"), file.Filename)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenant)
}
