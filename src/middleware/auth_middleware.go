package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jumuiya/community-backend/src/lib"
)

// LocalsUserKey is where the resolved identity lives on the request context.
const LocalsUserKey = "user"

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[len("Bearer "):]
	}
	return ""
}

// Protect rejects requests without a valid bearer token and attaches the
// caller identity to the request context.
func Protect(cfg lib.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("No token provided"))
		}

		user, err := lib.VerifyAccessToken(cfg, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Invalid token"))
		}

		c.Locals(LocalsUserKey, user)
		return c.Next()
	}
}

// Identify attaches the caller identity when a valid token is present and
// lets the request through anonymously otherwise. Used by read endpoints
// whose behavior differs for authenticated callers (view dedup recording).
func Identify(cfg lib.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if user, err := lib.VerifyAccessToken(cfg, token); err == nil {
				c.Locals(LocalsUserKey, user)
			}
		}
		return c.Next()
	}
}
