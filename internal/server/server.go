package server

import (
	"context"
	"net/http"

	"books-storefront/internal/handler"
	appmiddleware "books-storefront/internal/middleware"
	"books-storefront/internal/page"
	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	echo              *echo.Echo
	storefrontHandler *handler.StorefrontHandler
	accountHandler    *handler.AccountHandler
	adminHandler      *handler.AdminHandler
	downloadHandler   *handler.DownloadHandler
	adminService      service.AdminService
}

func NewServer(
	controller *page.Controller,
	sessionService service.SessionService,
	adminService service.AdminService,
	downloadService service.DownloadService,
	logger *log.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:              e,
		storefrontHandler: handler.NewStorefrontHandler(controller),
		accountHandler:    handler.NewAccountHandler(sessionService),
		adminHandler:      handler.NewAdminHandler(adminService, controller.Modals()),
		downloadHandler:   handler.NewDownloadHandler(downloadService),
		adminService:      adminService,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/download-success", s.downloadHandler.Success)
	s.echo.GET("/download-success.html", s.downloadHandler.Success)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.StaticFS("/", webAssets())

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/view", s.storefrontHandler.View)
	api.GET("/resources", s.storefrontHandler.ListResources)
	api.POST("/find", s.storefrontHandler.FindResources)
	api.GET("/classes", s.storefrontHandler.Classes)
	api.GET("/classes/:class/subjects", s.storefrontHandler.Subjects)

	// -------- session --------
	session := api.Group("/session")
	session.GET("", s.storefrontHandler.Session)
	session.POST("/signin", s.storefrontHandler.SignIn)
	session.POST("/register", s.storefrontHandler.Register)
	session.POST("/signout", s.storefrontHandler.SignOut)

	api.POST("/password-reset/request", s.accountHandler.RequestPasswordReset)
	api.POST("/password-reset/confirm", s.accountHandler.ConfirmPasswordReset)

	// -------- modals --------
	modals := api.Group("/modals")
	modals.POST("/:name/open", s.storefrontHandler.OpenModal)
	modals.POST("/:name/close", s.storefrontHandler.CloseModal)
	modals.POST("/:name/switch", s.storefrontHandler.SwitchModal)

	// -------- download flow --------
	download := api.Group("/download")
	download.POST("/submit", s.storefrontHandler.SubmitDownload)
	download.POST("/follow", s.storefrontHandler.FollowDownload)
	download.DELETE("", s.storefrontHandler.CloseDownload)
	download.POST("/:id", s.storefrontHandler.StartDownload)

	// -------- admin dashboard --------
	admin := api.Group("/admin")
	admin.POST("/login", s.adminHandler.Login)
	admin.POST("/logout", s.adminHandler.Logout)

	dashboard := admin.Group("", appmiddleware.RequireAdmin(s.adminService))
	dashboard.GET("/stats", s.adminHandler.Stats)
	dashboard.GET("/resources/:type", s.adminHandler.List)
	dashboard.POST("/upload", s.adminHandler.Upload)
	dashboard.DELETE("/resource/:id", s.adminHandler.Delete)
	dashboard.POST("/password", s.adminHandler.ChangePassword)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
