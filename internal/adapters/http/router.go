package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/safeyatra/geomark/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Bearer token → owner identity (anonymous fallback)
	app.Use(IdentityMiddleware(deps.Identity))

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	// Fence API — 15s per-request timeout
	wrap := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, 15*time.Second)
	}

	app.Get("/areas", wrap(ListAreasHandler(deps)))
	app.Post("/mark-area", wrap(CreateAreaHandler(deps)))
	app.Get("/nearby", wrap(NearbyHandler(deps)))
	app.Get("/intersecting", wrap(IntersectingHandler(deps)))
	app.Get("/my-areas", wrap(MyAreasHandler(deps)))
	app.Get("/stats", wrap(StatsHandler(deps)))
	app.Get("/area/:id", wrap(GetAreaHandler(deps)))
	app.Put("/area/:id", wrap(UpdateAreaHandler(deps)))
	app.Delete("/area/:id", wrap(DeleteAreaHandler(deps)))
	app.Post("/area/:id/alert", wrap(AlertAreaHandler(deps)))
	app.Post("/area/:id/touch", wrap(TouchAreaHandler(deps)))

	// Authority onboarding and KYC review
	admin := app.Group("/admin")
	admin.Post("/authorities", wrap(SubmitAuthorityHandler(deps)))
	admin.Get("/authorities", wrap(ListAuthoritiesHandler(deps)))
	admin.Post("/authorities/:id/status", wrap(SetAuthorityStatusHandler(deps)))
	admin.Post("/kyc", wrap(SubmitKYCHandler(deps)))
	admin.Get("/kyc", wrap(ListKYCHandler(deps)))
	admin.Post("/kyc/:id/status", wrap(SetKYCStatusHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			return newError(c, 503, "service_unavailable", "event stream unavailable")
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
