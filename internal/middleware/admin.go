package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

// RequireAdmin must run after Auth. The services re-check the role against
// the database; this guard only keeps non-admin traffic off the admin routes.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetRole(c) != model.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "administrator role required",
			})
		}
		return c.Next()
	}
}
