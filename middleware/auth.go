package middleware

import (
	"strings"

	"chore-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired validates the Bearer token and attaches the principal's
// account id to the request context as "principal_id". Every guarded route
// reads the principal from there and threads it explicitly into the engine.
func AuthRequired(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — try the raw value
			token = authHeader
		}

		principalID, err := auth.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("principal_id", principalID)
		return c.Next()
	}
}
