package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"books-storefront/internal/dto"
	"books-storefront/internal/model"
	"books-storefront/internal/page"
	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// maxCoverSize bounds uploaded cover images.
const maxCoverSize = 10 << 20

type AdminHandler struct {
	adminService service.AdminService
	modals       *page.Modals
}

func NewAdminHandler(adminService service.AdminService, modals *page.Modals) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		modals:       modals,
	}
}

type adminPasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *AdminHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.adminService.Login(ctx, req.Username, req.Password); err != nil {
		h.modals.Open(page.ModalAdminLogin)
		return err
	}
	h.modals.Close(page.ModalAdminLogin)

	return c.JSON(http.StatusOK, messageResponse{Success: true})
}

func (h *AdminHandler) Logout(c echo.Context) error {
	h.adminService.Lock()
	h.modals.Open(page.ModalAdminLogin)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminService.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) List(c echo.Context) error {
	resources, err := h.adminService.List(c.Request().Context(), model.ResourceType(c.Param("type")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resources)
}

func (h *AdminHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	req := dto.UploadRequest{
		ResourceType: model.ResourceType(c.FormValue("resourceType")),
		ClassGrade:   c.FormValue("classGrade"),
		Subject:      c.FormValue("subject"),
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
	}

	fh, err := c.FormFile("cover")
	switch {
	case err == nil:
		if fh.Size > maxCoverSize {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "cover image too large")
		}
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open cover: %w", err)
		}
		defer f.Close()
		cover, err := io.ReadAll(io.LimitReader(f, maxCoverSize))
		if err != nil {
			return fmt.Errorf("read cover: %w", err)
		}
		req.Cover = cover
		req.CoverName = fh.Filename
	case errors.Is(err, http.ErrMissingFile):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	msg, err := h.adminService.Upload(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}

func (h *AdminHandler) Delete(c echo.Context) error {
	msg, err := h.adminService.Delete(c.Request().Context(), model.ResourceID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}

func (h *AdminHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req adminPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	msg, err := h.adminService.ChangePassword(ctx, req.Username, req.OldPassword, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}
