package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

// RequireAuthenticated ensures Authenticate ran and admitted the caller.
func (g *Gate) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimsFromFiber(c); !ok {
			g.reject(ReasonMissingToken)
			return apperrors.NewUnauthorized("Missing token")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller's token carries the admin claim.
func (g *Gate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromFiber(c)
		if !ok {
			g.reject(ReasonMissingToken)
			return apperrors.NewUnauthorized("Missing token")
		}
		if !claims.IsAdmin {
			g.reject(ReasonNotAdmin)
			return apperrors.NewUnauthorized("Admin privileges required")
		}
		return c.Next()
	}
}
