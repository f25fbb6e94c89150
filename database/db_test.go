package database

import (
	"context"
	"testing"

	"freight-billing-backend/billing"
	"freight-billing-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := OpenSQLite("file:"+t.Name()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, Migrate(context.Background(), db))

	for _, table := range []string{"invoices", "invoice_sequences", "idempotency_keys"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var seqs []models.InvoiceSequence
	require.NoError(t, db.Find(&seqs).Error)
	require.Len(t, seqs, 1)
	assert.Equal(t, billing.InvoiceSequenceName, seqs[0].Name)
	assert.Equal(t, int64(0), seqs[0].LastValue)
	require.NoError(t, Ping(context.Background(), db))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=db user=u password=*** dbname=b", MaskDSN("host=db user=u password=hunter2 dbname=b"))
	assert.Equal(t, "postgres://u:***@db:5432/b", MaskDSN("postgres://u:hunter2@db:5432/b"))
	assert.Equal(t, "file:billing.db", MaskDSN("file:billing.db"))
}
