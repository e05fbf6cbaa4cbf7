package middleware

import (
	icuser "github.com/ManuelReschke/TaskFox/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin must run after APIKeyAuthMiddleware; non-admins get a JSON 403.
func RequireAdmin(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !icuser.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin access required",
		})
	}
	return c.Next()
}
