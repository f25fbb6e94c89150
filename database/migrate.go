package database

import (
	"context"
	"fmt"

	"freight-billing-backend/billing"
	"freight-billing-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/indexes)
// - the invoice sequence row
// - CHECK constraints (postgres only)
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Invoice{},
		&models.InvoiceSequence{},
		&models.IdempotencyKey{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := models.InvoiceSequence{Name: billing.InvoiceSequenceName}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return fmt.Errorf("seed invoice sequence: %w", err)
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		checks := []struct{ table, name, expr string }{
			{"invoices", "chk_invoices_trucks_min", "trucks >= 1"},
			{"invoices", "chk_invoices_rate_nonneg", "rate_per_ton >= 0"},
			{"invoices", "chk_invoices_company_name", "length(trim(company_name)) > 0"},
			{"invoice_sequences", "chk_invoice_sequences_nonneg", "last_value >= 0"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s
		ADD CONSTRAINT %[2]s
		CHECK (%[3]s);
	END IF;
END $$;`, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", c.name, err)
			}
		}
		return nil
	})
}
