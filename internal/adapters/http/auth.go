package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safeyatra/geomark/internal/core/domain"
	"github.com/safeyatra/geomark/internal/core/ports"
)

const ownerIDKey = "owner_id"

// IdentityMiddleware resolves a bearer token to an owner identity and
// stores it in request locals. Requests without a token proceed as the
// anonymous owner; a token that fails to resolve is rejected.
func IdentityMiddleware(resolver ports.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || resolver == nil {
			c.Locals(ownerIDKey, domain.AnonymousOwner)
			return c.Next()
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return newError(c, 401, "unauthorized", "malformed authorization header")
		}

		ownerID, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return newError(c, 401, "unauthorized", "invalid or expired token")
		}

		c.Locals(ownerIDKey, ownerID)
		return c.Next()
	}
}

// OwnerID returns the resolved owner identity for the request, falling
// back to the anonymous sentinel.
func OwnerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(ownerIDKey).(string); ok && id != "" {
		return id
	}
	return domain.AnonymousOwner
}
