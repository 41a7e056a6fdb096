package handler

import (
	"net/http"

	"books-storefront/internal/model"
	"books-storefront/internal/page"
	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type StorefrontHandler struct {
	controller *page.Controller
}

func NewStorefrontHandler(controller *page.Controller) *StorefrontHandler {
	return &StorefrontHandler{
		controller: controller,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *StorefrontHandler) View(c echo.Context) error {
	return c.JSON(http.StatusOK, h.controller.View())
}

func (h *StorefrontHandler) ListResources(c echo.Context) error {
	ctx := c.Request().Context()

	var filter model.Filter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}

	listing, err := h.controller.Refresh(ctx, filter)
	if err != nil && listing == nil {
		return err
	}
	if err != nil {
		return c.JSON(statusFor(service.ErrBackend), listing)
	}

	return c.JSON(http.StatusOK, listing)
}

func (h *StorefrontHandler) Classes(c echo.Context) error {
	return c.JSON(http.StatusOK, model.Classes)
}

func (h *StorefrontHandler) Subjects(c echo.Context) error {
	subjects := model.SubjectsFor(c.Param("class"))
	if subjects == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown class")
	}
	return c.JSON(http.StatusOK, subjects)
}

func (h *StorefrontHandler) FindResources(c echo.Context) error {
	var req model.Filter
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	filter, err := h.controller.FindResources(req.ClassGrade, req.Subject)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, filter)
}

func (h *StorefrontHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"user":     h.controller.Session(),
		"greeting": h.controller.Greeting(),
	})
}

func (h *StorefrontHandler) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	session, err := h.controller.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Successfully signed in!",
		"user":    session,
	})
}

func (h *StorefrontHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	msg, err := h.controller.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}

func (h *StorefrontHandler) SignOut(c echo.Context) error {
	if err := h.controller.SignOut(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Signed out successfully!"})
}

func (h *StorefrontHandler) OpenModal(c echo.Context) error {
	if err := h.controller.OpenModal(page.ModalName(c.Param("name"))); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, h.controller.Modals().Snapshot())
}

func (h *StorefrontHandler) CloseModal(c echo.Context) error {
	if err := h.controller.CloseModal(page.ModalName(c.Param("name"))); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, h.controller.Modals().Snapshot())
}

func (h *StorefrontHandler) SwitchModal(c echo.Context) error {
	var err error
	switch page.ModalName(c.Param("name")) {
	case page.ModalRegister:
		err = h.controller.SwitchToRegister()
	case page.ModalSignIn:
		err = h.controller.SwitchToSignIn()
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown modal")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.controller.Modals().Snapshot())
}

func (h *StorefrontHandler) StartDownload(c echo.Context) error {
	intent, err := h.controller.DownloadClicked(model.ResourceID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, intent)
}

func (h *StorefrontHandler) SubmitDownload(c echo.Context) error {
	ctx := c.Request().Context()

	var form model.DownloadForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	outcome, err := h.controller.SubmitDownload(ctx, form)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, outcome)
}

func (h *StorefrontHandler) FollowDownload(c echo.Context) error {
	outcome, err := h.controller.FollowDownloadLink(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outcome)
}

func (h *StorefrontHandler) CloseDownload(c echo.Context) error {
	if err := h.controller.CloseModal(page.ModalDownload); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
