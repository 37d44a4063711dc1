package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/samirrijal/saferoute/internal/pkg/metrics"
)

// SetupRoutes registers the map page, the JSON API and operational endpoints.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Every /route call costs up to two provider requests.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/ready" || c.Path() == "/metrics"
		},
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	routeTimeout := time.Duration(deps.RouteTimeout) * time.Second
	if routeTimeout <= 0 {
		routeTimeout = 25 * time.Second
	}

	app.Get("/", IndexHandler(deps))
	app.Get("/suggest", timeout.NewWithContext(SuggestHandler(deps), 15*time.Second))
	app.Get("/route", timeout.NewWithContext(RouteHandler(deps), routeTimeout))
	app.Get("/zones", ZonesHandler(deps))
	app.Post("/report", ReportHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)
}
