package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"freight-billing-backend/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// Connect opens the database selected by cfg.Driver. Postgres is retried while
// the server comes up; SQLite is limited to one connection so writers serialize.
func Connect(cfg config.DatabaseConfig, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(dsn, gormCfg)
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("retrying database connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info().Str("dsn", MaskDSN(dsn)).Msg("connected to postgres")
	return db, nil
}

// OpenSQLite opens a SQLite database (file or in-memory DSN).
func OpenSQLite(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// MaskDSN hides the password of a key=value or URL style DSN.
func MaskDSN(dsn string) string {
	masked := passwordRe.ReplaceAllString(dsn, `${1}***`)
	if i := strings.Index(masked, "://"); i >= 0 {
		if at := strings.LastIndex(masked, "@"); at > i {
			creds := masked[i+3 : at]
			if colon := strings.Index(creds, ":"); colon >= 0 {
				masked = masked[:i+3] + creds[:colon] + ":***" + masked[at:]
			}
		}
	}
	return masked
}

// Ping checks that the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
