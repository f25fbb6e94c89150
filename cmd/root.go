package cmd

import (
	"fmt"
	"os"

	"freight-billing-backend/config"
	"freight-billing-backend/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "freight-billing",
	Short: "Freight billing backend - invoices, PDFs and dashboard totals",
	Long: `freight-billing serves the invoice API used by the billing dashboard.

Invoices are numbered from a database sequence, totals are computed as
rate per ton times trucks, and every invoice can be downloaded as a PDF.
Configuration comes from a .env file, an optional YAML file (--config)
and environment variables, in increasing order of precedence.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

// loadConfig reads the configuration and initializes the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(logger.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// databaseDSN picks the DSN for the configured driver.
func databaseDSN(cfg *config.Config) string {
	if cfg.Database.Driver == "sqlite" {
		if cfg.Database.DSN != "" {
			return cfg.Database.DSN
		}
		return "billing.db"
	}
	return cfg.PostgresDSN()
}
