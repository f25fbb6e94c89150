package server

import (
	"context"
	"fmt"

	"freight-billing-backend/auth"
	"freight-billing-backend/config"
	"freight-billing-backend/controllers"
	"freight-billing-backend/database"
	"freight-billing-backend/pdf"
	"freight-billing-backend/reports"
	"freight-billing-backend/routes"
	"freight-billing-backend/store"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Build assembles the store, gate, renderer and report engine from cfg and
// returns the ready app. Extra gate options are used by tests.
func Build(cfg *config.Config, db *gorm.DB, log zerolog.Logger, gateOpts ...auth.Option) (*fiber.App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := append([]auth.Option{auth.WithTTL(cfg.Auth.TokenTTL)}, gateOpts...)
	gate, err := auth.NewGate(cfg.Auth.JWTSecret, cfg.Auth.AccessCodes, cfg.Auth.AccessCodeHashes, opts...)
	if err != nil {
		return nil, fmt.Errorf("access gate: %w", err)
	}

	invoices := store.New(db,
		store.WithLocation(loc),
		store.WithNumberPrefix(cfg.Billing.InvoicePrefix),
		store.WithLogger(log.With().Str("component", "store").Logger()),
	)
	// day buckets, report dates and PDF dates all follow the store's zone
	zone := invoices.Location()
	engine := reports.NewEngine(invoices, zone)
	renderer := pdf.NewRenderer(cfg.Billing.IssuerName, cfg.Billing.Currency, zone)

	deps := routes.Deps{
		Auth:      &controllers.AuthController{Gate: gate},
		Invoices:  &controllers.InvoiceController{Store: invoices, Renderer: renderer},
		Dashboard: &controllers.DashboardController{Reports: engine, Location: zone},
		Health: &controllers.HealthController{Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}},
		Verifier:        gate,
		IdempotencyDB:   db,
		SignInRateLimit: cfg.Server.SignInRateLimit,
		Log:             log,
	}
	return New(cfg.Server, deps), nil
}
