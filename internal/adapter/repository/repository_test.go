package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clearbridge-dev/payments/internal/domain/model"
)

// newTestDB opens an isolated in-memory database with the production schema,
// including the partial unique index backing the single-active-config
// invariant.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.GatewayConfig{},
		&model.PaymentTransaction{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_active_gateway_config ON gateway_configs (is_active) WHERE is_active`).Error)

	return db
}
