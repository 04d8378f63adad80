package handlers

import (
	"net/http"

	"funnelcrm/internal/common"
	"funnelcrm/internal/services"

	"github.com/labstack/echo/v4"
)

// CRMHandlers serves the sales funnel entities: leads, accounts, contacts
// and deals. Tenant scope always comes from the authenticated context.
type CRMHandlers struct {
	leads    services.LeadService
	accounts services.AccountService
	contacts services.ContactService
	deals    services.DealService
}

func NewCRMHandlers(leads services.LeadService, accounts services.AccountService,
	contacts services.ContactService, deals services.DealService) *CRMHandlers {
	return &CRMHandlers{leads: leads, accounts: accounts, contacts: contacts, deals: deals}
}

func (h *CRMHandlers) CreateLead(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.CreatedBy = userFromContext(c)
	lead, err := h.leads.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, lead)
}

func (h *CRMHandlers) GetLead(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	lead, err := h.leads.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *CRMHandlers) UpdateLead(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	lead, err := h.leads.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *CRMHandlers) DeleteLead(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.leads.Delete(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CRMHandlers) ListLeads(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	if status := c.QueryParam("status"); status != "" {
		leads, err := h.leads.ListByStatus(c.Request().Context(), tenantID, status, limit, offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, leads)
	}
	leads, err := h.leads.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, leads)
}

func (h *CRMHandlers) CreateAccount(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.CreatedBy = userFromContext(c)
	account, err := h.accounts.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *CRMHandlers) GetAccount(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	account, err := h.accounts.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *CRMHandlers) UpdateAccount(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	account, err := h.accounts.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *CRMHandlers) DeleteAccount(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.accounts.Delete(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CRMHandlers) ListAccounts(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	accounts, err := h.accounts.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *CRMHandlers) CreateContact(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.CreatedBy = userFromContext(c)
	contact, err := h.contacts.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *CRMHandlers) GetContact(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	contact, err := h.contacts.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *CRMHandlers) UpdateContact(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	contact, err := h.contacts.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *CRMHandlers) DeleteContact(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.contacts.Delete(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CRMHandlers) ListContacts(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	if accountParam := c.QueryParam("account_id"); accountParam != "" {
		accountID, err := common.ValidateUUID(accountParam, "account_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		contacts, err := h.contacts.ListByAccount(c.Request().Context(), tenantID, accountID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, contacts)
	}
	limit, offset := pagination(c)
	contacts, err := h.contacts.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *CRMHandlers) CreateDeal(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	var req services.CreateDealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.CreatedBy = userFromContext(c)
	deal, err := h.deals.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, deal)
}

func (h *CRMHandlers) GetDeal(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	deal, err := h.deals.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deal)
}

func (h *CRMHandlers) UpdateDeal(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req services.UpdateDealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.TenantID = tenantID
	req.ID = id
	deal, err := h.deals.Update(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deal)
}

func (h *CRMHandlers) DeleteDeal(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.deals.Delete(c.Request().Context(), tenantID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CRMHandlers) ListDeals(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	if stage := c.QueryParam("stage"); stage != "" {
		deals, err := h.deals.ListByStage(c.Request().Context(), tenantID, stage, limit, offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, deals)
	}
	deals, err := h.deals.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deals)
}
