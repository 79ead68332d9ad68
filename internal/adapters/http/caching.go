package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/health" || path == "/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case path == "/nearby" || path == "/intersecting":
			ttl = "public, max-age=60" // Spatial queries: 1 min

		case path == "/stats" || path == "/my-areas":
			ttl = "private, max-age=30" // Owner-scoped data

		case path == "/areas":
			ttl = "public, max-age=60" // Dashboard map listing

		case strings.HasPrefix(path, "/area/"):
			ttl = "public, max-age=60" // Single area

		case strings.HasPrefix(path, "/admin/"):
			ttl = "no-store" // Review queues must be live
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
