package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"freight-billing-backend/controllers"
	"freight-billing-backend/middlewares"
)

// Deps carries the handlers and guards the routes are wired to.
type Deps struct {
	Auth      *controllers.AuthController
	Invoices  *controllers.InvoiceController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController

	Verifier        middlewares.TokenVerifier
	IdempotencyDB   *gorm.DB
	SignInRateLimit int
	Log             zerolog.Logger
}

// Register wires all HTTP routes.
func Register(app *fiber.App, d Deps) {
	api := app.Group("/api")

	// Public endpoints
	api.Get("/health", d.Health.Health)

	signInMax := d.SignInRateLimit
	if signInMax <= 0 {
		signInMax = 10
	}
	api.Post("/auth/sign-in", limiter.New(limiter.Config{
		Max:        signInMax,
		Expiration: time.Minute,
	}), d.Auth.SignIn)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.RequireBearer(d.Verifier))

	// Invoices
	createGuards := []fiber.Handler{}
	if d.IdempotencyDB != nil {
		createGuards = append(createGuards, middlewares.Idempotency(d.IdempotencyDB, d.Log))
	}
	protected.Post("/invoices", append(createGuards, d.Invoices.CreateInvoice)...)
	protected.Get("/invoices", d.Invoices.GetInvoices)
	protected.Get("/invoices/:id", d.Invoices.GetInvoice)
	protected.Get("/invoices/:id/pdf", d.Invoices.GetInvoicePDF)

	// Dashboard
	protected.Get("/dashboard/summary", d.Dashboard.GetSummary)
	protected.Get("/dashboard/daily", d.Dashboard.GetDaily)
}
