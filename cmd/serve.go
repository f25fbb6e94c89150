package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight-billing-backend/database"
	"freight-billing-backend/logger"
	"freight-billing-backend/server"

	"github.com/spf13/cobra"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Example: `  # Start on the port from PORT (default 4000)
  freight-billing serve

  # Use a YAML config and a local SQLite file
  DB_DRIVER=sqlite DATABASE_DSN=billing.db freight-billing serve -c billing.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on start")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	db, err := database.Connect(cfg.Database, databaseDSN(cfg), logger.WithComponent("database"))
	if err != nil {
		return err
	}
	if !skipMigrate {
		if err := database.Migrate(cmd.Context(), db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	app, err := server.Build(cfg, db, logger.WithComponent("http"))
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Env).Msg("API server starting")
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	timeout := time.Duration(cfg.Server.ShutdownTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("API server stopped")
	return nil
}
