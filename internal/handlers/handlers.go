package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"funnelcrm/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// httpError maps the service error taxonomy onto HTTP status codes. Unknown
// errors are logged and masked.
func httpError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrTenantMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrTenantCancelled):
		return echo.NewHTTPError(http.StatusForbidden, "workspace is cancelled")
	case errors.Is(err, common.ErrTenantSuspended):
		return echo.NewHTTPError(http.StatusForbidden, "workspace is suspended")
	case errors.Is(err, common.ErrFeatureNotInPlan):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrSubscriptionExpired):
		return echo.NewHTTPError(http.StatusPaymentRequired, "subscription expired")
	case errors.Is(err, common.ErrSeatLimitExceeded):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	case errors.Is(err, common.ErrInvalidStatus),
		errors.Is(err, common.ErrInvalidEnum),
		errors.Is(err, common.ErrConstraintViolation),
		errors.Is(err, common.ErrUnknownPlan):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	log.Printf("internal error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func tenantFromContext(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return tenantID, nil
}

func userFromContext(c echo.Context) *uuid.UUID {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return nil
	}
	return &userID
}

func idParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func pagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return common.ValidatePaginationParams(limit, offset)
}
