package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// LocalUserID is the fiber local holding the authenticated user id.
	LocalUserID = "userId"
	localEmail  = "email"
)

// Middleware returns a fiber handler that requires a valid bearer session token.
// On success it stores the subject in c.Locals("userId").
func Middleware(i *Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearer(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing Authorization header"})
		}
		claims, err := i.Verify(tokenStr)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("auth: rejected token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrInvalidToken.Error()})
		}
		c.Locals(LocalUserID, claims.Subject)
		if claims.Email != "" {
			c.Locals(localEmail, claims.Email)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside Middleware.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(LocalUserID).(string)
	return uid
}

// bearer accepts both "Bearer <token>" and a bare token.
func bearer(header string) string {
	header = strings.TrimSpace(header)
	if scheme, rest, ok := strings.Cut(header, " "); ok {
		if strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
		return ""
	}
	return header
}
