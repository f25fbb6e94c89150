package server

import (
	"time"

	"freight-billing-backend/config"
	"freight-billing-backend/middlewares"
	"freight-billing-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// New builds the Fiber app with the global middleware stack and all routes.
func New(cfg config.ServerConfig, deps routes.Deps) *fiber.App {
	bodyLimit := cfg.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		AppName:               "freight-billing",
		ErrorHandler:          middlewares.NewErrorHandler(deps.Log),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middlewares.RequestLogger(deps.Log))

	// ---- CORS
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false, // bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
	}))

	// ---- Global rate limiter
	if cfg.RateLimitMax > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = 60
		}
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: time.Duration(window) * time.Second,
		}))
	}

	routes.Register(app, deps)
	return app
}
