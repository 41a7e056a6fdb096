package handler

import (
	"net/http"

	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	sessionService service.SessionService
}

func NewAccountHandler(sessionService service.SessionService) *AccountHandler {
	return &AccountHandler{
		sessionService: sessionService,
	}
}

type passwordResetRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *AccountHandler) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	msg, err := h.sessionService.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}

func (h *AccountHandler) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	msg, err := h.sessionService.ConfirmPasswordReset(ctx, req.Token, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}
