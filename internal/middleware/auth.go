package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sadanews/sada/internal/logger"
)

const apiKeyHeader = "X-API-Key"

// AdminOnly guards the admin route group with a shared API key carried in
// the X-API-Key header.
func AdminOnly(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(apiKeyHeader)
		if key == "" {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin access attempt without API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key is required",
			})
		}

		if key != adminKey {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Unauthorized admin access attempt")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		return c.Next()
	}
}
