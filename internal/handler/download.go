package handler

import (
	"net/http"

	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type DownloadHandler struct {
	downloadService service.DownloadService
}

func NewDownloadHandler(downloadService service.DownloadService) *DownloadHandler {
	return &DownloadHandler{
		downloadService: downloadService,
	}
}

// Success is the download-success page: it forwards the user to the backend, which verifies the order.
func (h *DownloadHandler) Success(c echo.Context) error {
	target, _, err := h.downloadService.Resolve(c.Request().Context(), c.QueryParams())
	if err != nil {
		return c.String(http.StatusBadRequest, service.Message(err))
	}
	return c.Redirect(http.StatusFound, target)
}
