package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_CODES", "alpha, beta ,")
	t.Setenv("PORT", "9090")
	t.Setenv("BODY_LIMIT_MB", "2")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:billing.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*1024*1024, cfg.Server.BodyLimitBytes)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Auth.AccessCodes)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "file:billing.db", cfg.PostgresDSN())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yaml")
	yml := `
server:
  port: "5000"
auth:
  jwt_secret: from-file
  token_ttl: 30m
  access_codes: ["yard"]
billing:
  timezone: UTC
  invoice_prefix: TRK
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("PORT", "6000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "6000", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "TRK", cfg.Billing.InvoicePrefix)
	assert.Equal(t, "INR", cfg.Billing.Currency)
}

func TestValidateReportsMissingSettings(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mongo"
	cfg.Billing.TimeZone = "Mars/Olympus"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret not configured")
	assert.Contains(t, err.Error(), "no access code configured")
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "mongo"`)
	assert.Contains(t, err.Error(), "invalid BILLING_TIMEZONE")
}

func TestPostgresDSNFromParts(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "billing"
	cfg.Database.Password = "pw"
	assert.Equal(t,
		"host=localhost user=billing password=pw dbname=billing port=5432 sslmode=disable TimeZone=UTC",
		cfg.PostgresDSN())
}
