package server

import (
	"embed"
	"io/fs"

	"github.com/labstack/echo/v4"
)

// web holds the storefront page. It drives the /api routes and opens payment_url itself.
//
//go:embed web
var web embed.FS

func webAssets() fs.FS {
	return echo.MustSubFS(web, "web")
}
