package middlewares

import (
	"strings"

	"freight-billing-backend/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	principalKey = "principal"
)

// TokenVerifier is the part of auth.Gate the middleware needs.
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// RequireBearer validates the Bearer token and populates c.Locals("principal").
func RequireBearer(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(authHeader)
		if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			return auth.ErrRejected
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return auth.ErrRejected
		}

		p, err := v.Verify(raw)
		if err != nil {
			return auth.ErrRejected
		}

		c.Locals(principalKey, p)
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequireBearer.
func PrincipalFrom(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(principalKey).(auth.Principal)
	return p, ok
}
