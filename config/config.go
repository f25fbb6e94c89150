package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // reference zones must resolve on minimal images

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Billing  BillingConfig  `yaml:"billing"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port              string `yaml:"port"`
	AllowedOrigins    string `yaml:"allowed_origins"`
	BodyLimitBytes    int    `yaml:"body_limit_bytes"`
	RateLimitMax      int    `yaml:"rate_limit_max"`
	RateLimitWindow   int    `yaml:"rate_limit_window_seconds"`
	SignInRateLimit   int    `yaml:"sign_in_rate_limit"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres | sqlite
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Debug    bool   `yaml:"debug"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	AccessCodes      []string      `yaml:"access_codes"`
	AccessCodeHashes []string      `yaml:"access_code_hashes"`
}

type BillingConfig struct {
	TimeZone      string `yaml:"timezone"`
	InvoicePrefix string `yaml:"invoice_prefix"`
	IssuerName    string `yaml:"issuer_name"`
	Currency      string `yaml:"currency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:              "4000",
			AllowedOrigins:    "*",
			BodyLimitBytes:    4 * 1024 * 1024,
			RateLimitMax:      60,
			RateLimitWindow:   60,
			SignInRateLimit:   10,
			ShutdownTimeoutMs: 10000,
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Host:   "localhost",
			Port:   "5432",
			Name:   "billing",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Billing: BillingConfig{
			TimeZone:      "Asia/Kolkata",
			InvoicePrefix: "INV",
			IssuerName:    "Freight Billing",
			Currency:      "INR",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// Load builds the configuration. Precedence: environment (including a .env
// file in the working directory) > YAML file at path (optional) > defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = envString("APP_ENV", c.Env)

	c.Server.Port = envString("PORT", c.Server.Port)
	c.Server.AllowedOrigins = envString("ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	// BODY_LIMIT_BYTES wins over BODY_LIMIT_MB.
	if mb := envInt("BODY_LIMIT_MB", 0); mb > 0 {
		c.Server.BodyLimitBytes = mb * 1024 * 1024
	}
	if b := envInt("BODY_LIMIT_BYTES", 0); b > 0 {
		c.Server.BodyLimitBytes = b
	}
	c.Server.RateLimitMax = envInt("RATE_LIMIT_MAX", c.Server.RateLimitMax)
	c.Server.RateLimitWindow = envInt("RATE_LIMIT_WINDOW_SECONDS", c.Server.RateLimitWindow)
	c.Server.SignInRateLimit = envInt("SIGN_IN_RATE_LIMIT", c.Server.SignInRateLimit)

	c.Database.Driver = envString("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = envString("DATABASE_DSN", c.Database.DSN)
	c.Database.Host = envString("DB_HOST", c.Database.Host)
	c.Database.Port = envString("DB_PORT", c.Database.Port)
	c.Database.User = envString("DB_USER", c.Database.User)
	c.Database.Password = envString("DB_PASSWORD", c.Database.Password)
	c.Database.Name = envString("DB_NAME", c.Database.Name)
	c.Database.Debug = envBool("DB_DEBUG", c.Database.Debug)

	// Prefer JWT_SECRET_KEY, fallback to JWT_SECRET
	c.Auth.JWTSecret = envString("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWTSecret = envString("JWT_SECRET_KEY", c.Auth.JWTSecret)
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.TokenTTL = d
		}
	}
	c.Auth.AccessCodes = envList("ACCESS_CODES", c.Auth.AccessCodes)
	c.Auth.AccessCodeHashes = envList("ACCESS_CODE_HASHES", c.Auth.AccessCodeHashes)

	c.Billing.TimeZone = envString("BILLING_TIMEZONE", c.Billing.TimeZone)
	c.Billing.InvoicePrefix = envString("INVOICE_PREFIX", c.Billing.InvoicePrefix)
	c.Billing.IssuerName = envString("BILLING_ISSUER_NAME", c.Billing.IssuerName)
	c.Billing.Currency = envString("BILLING_CURRENCY", c.Billing.Currency)

	c.Log.Level = envString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envString("LOG_FORMAT", c.Log.Format)
	c.Log.Output = envString("LOG_OUTPUT", c.Log.Output)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		problems = append(problems, "JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")
	}
	if len(c.Auth.AccessCodes) == 0 && len(c.Auth.AccessCodeHashes) == 0 {
		problems = append(problems, "no access code configured (set ACCESS_CODES or ACCESS_CODE_HASHES)")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("invalid BILLING_TIMEZONE %q", c.Billing.TimeZone))
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Location is the reference time zone used for day buckets.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Billing.TimeZone)
}

// PostgresDSN returns DATABASE_DSN when set, otherwise a key=value DSN built from the parts.
func (c *Config) PostgresDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Database.Host, c.Database.User, c.Database.Password, c.Database.Name, c.Database.Port)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
