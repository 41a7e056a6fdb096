package middleware

import (
	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// AdminKey is set on the request context once the admin dashboard is unlocked.
const AdminKey = "admin"

// RequireAdmin rejects dashboard requests until the admin password has been accepted.
func RequireAdmin(admin service.AdminService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !admin.Unlocked() {
				return &service.UserError{Kind: service.ErrUnauthenticated, Message: "Please sign in as admin."}
			}
			c.Set(AdminKey, true)
			return next(c)
		}
	}
}
