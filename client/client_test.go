package client

import (
	"bytes"
	"context"
	"net"
	"net/url"
	"testing"

	"freight-billing-backend/auth"
	"freight-billing-backend/billing"
	"freight-billing-backend/config"
	"freight-billing-backend/database"
	"freight-billing-backend/server"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// serve starts app on a random local port and returns its /api base url.
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String() + "/api"
}

func newBackend(t *testing.T) string {
	t.Helper()
	db, err := database.OpenSQLite("file:client_backend?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Auth.JWTSecret = "client-test-secret"
	cfg.Auth.AccessCodes = []string{"open-sesame"}
	cfg.Server.RateLimitMax = 0
	app, err := server.Build(cfg, db, zerolog.Nop(), auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return serve(t, app)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost"})
	assert.Error(t, err)
	c, err := New(Config{BaseURL: "http://localhost:4000/api/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/api", c.cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
}

func TestClientRoundTrip(t *testing.T) {
	base := newBackend(t)
	anon, err := New(Config{BaseURL: base})
	require.NoError(t, err)

	require.NoError(t, anon.Health())

	_, _, err = anon.SignIn("wrong")
	assert.True(t, IsUnauthorized(err))
	_, err = anon.ListInvoices(1, 20)
	assert.True(t, IsUnauthorized(err))

	c, tok, err := anon.SignIn("open-sesame")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)

	inv, err := c.CreateInvoice(billing.InvoiceDraft{CompanyName: "Acme", RatePerTon: 1500, Trucks: 3}, "client-key-1")
	require.NoError(t, err)
	assert.Equal(t, 4500.0, inv.Total)

	again, err := c.CreateInvoice(billing.InvoiceDraft{CompanyName: "Acme", RatePerTon: 1500, Trucks: 3}, "client-key-1")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, again.ID)

	_, err = c.CreateInvoice(billing.InvoiceDraft{CompanyName: "Acme", RatePerTon: 1500, Trucks: 0}, "")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, fiber.StatusUnprocessableEntity, ae.Status)
	assert.Equal(t, "validation failed: trucks", ae.Message)

	page, err := c.ListInvoices(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	got, err := c.GetInvoice(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)

	doc, err := c.InvoicePDF(inv.ID, true)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	s, err := c.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Invoices)
	assert.Equal(t, 4500.0, s.TotalRevenue)

	totals, source, err := c.DashboardTotals("")
	require.NoError(t, err)
	assert.Equal(t, SourceOverall, source)
	assert.Equal(t, s, totals)
}

func TestDashboardTotalsFallsBackToDaily(t *testing.T) {
	app := fiber.New()
	app.Get("/api/dashboard/summary", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "storage unavailable, retry later"})
	})
	app.Get("/api/dashboard/daily", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"date":     c.Query("date"),
			"totals":   fiber.Map{"invoices": 2, "totalRevenue": 3000, "totalTrucks": 3, "avgRatePerTon": 1000},
			"invoices": []any{},
		})
	})
	c, err := New(Config{BaseURL: serve(t, app), Token: "t"})
	require.NoError(t, err)

	totals, source, err := c.DashboardTotals("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, SourceDaily, source)
	assert.Equal(t, int64(2), totals.Invoices)
	assert.Equal(t, 3000.0, totals.TotalRevenue)
}

func TestDashboardTotalsDoesNotMaskUnauthorized(t *testing.T) {
	app := fiber.New()
	app.Get("/api/dashboard/summary", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	})
	c, err := New(Config{BaseURL: serve(t, app)})
	require.NoError(t, err)

	_, _, err = c.DashboardTotals("")
	assert.True(t, IsUnauthorized(err))
}

func TestCacheKey(t *testing.T) {
	a, err := New(Config{BaseURL: "http://x/api", Token: "token-a"})
	require.NoError(t, err)
	b := a.WithToken("token-b")

	p1 := url.Values{"page": {"1"}, "limit": {"20"}}
	p2 := url.Values{"limit": {"20"}, "page": {"1"}}
	assert.Equal(t, a.CacheKey("/invoices", p1), a.CacheKey("/invoices", p2))
	assert.NotEqual(t, a.CacheKey("/invoices", p1), b.CacheKey("/invoices", p1))
	assert.NotEqual(t, a.CacheKey("/invoices", p1), a.CacheKey("/invoices", url.Values{"page": {"2"}}))
	assert.NotContains(t, a.CacheKey("/invoices", p1), "token-a")
}
