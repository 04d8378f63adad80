package handlers

import (
	"errors"
	"log"
	"net/http"

	"funnelcrm/internal/common"
	"funnelcrm/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	identity services.IdentityService
}

func NewAuthHandlers(identity services.IdentityService) *AuthHandlers {
	return &AuthHandlers{identity: identity}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.identity.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, common.ErrTenantSuspended):
			return echo.NewHTTPError(http.StatusForbidden, "workspace is suspended")
		case errors.Is(err, common.ErrTenantCancelled):
			return echo.NewHTTPError(http.StatusForbidden, "workspace is cancelled")
		}
		log.Printf("login failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	return c.JSON(http.StatusOK, result)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword always answers 200 so the endpoint cannot be used to probe
// for registered emails. The token is logged for delivery; mail transport is
// outside this service.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	token, err := h.identity.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.Printf("password reset request failed: %v", err)
		}
	} else {
		log.Printf("Password reset token issued for user %s", token.UserID)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	err := h.identity.RedeemResetToken(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenInvalid),
			errors.Is(err, common.ErrTokenExpired),
			errors.Is(err, common.ErrTokenAlreadyUsed):
			return echo.NewHTTPError(http.StatusBadRequest, "reset token is invalid or expired")
		}
		log.Printf("password reset failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "password reset failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword serves the authenticated flow; identity comes from the JWT
// middleware, never from the body.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	err := h.identity.ChangePassword(ctx, tenantID, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "current password is incorrect")
		}
		log.Printf("password change failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "password change failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}
