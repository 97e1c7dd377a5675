package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireStaff ensures the caller belongs to an office or is a superuser.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil || !principal.User.IsStaff() {
			return fiber.NewError(http.StatusForbidden, "staff role required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
