package cmd

import (
	"freight-billing-backend/database"
	"freight-billing-backend/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.WithComponent("migrate")

		db, err := database.Connect(cfg.Database, databaseDSN(cfg), logger.WithComponent("database"))
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
