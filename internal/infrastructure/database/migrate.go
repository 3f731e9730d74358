package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clearbridge-dev/payments/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.GatewayConfig{},
		&model.PaymentTransaction{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle
// automatically. The partial unique index backs the single-active-config
// invariant at the database level, on top of the transactional save.
func createCustomIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_active_gateway_config ON gateway_configs (is_active) WHERE is_active`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_transactions_pending ON payment_transactions (created_at) WHERE status = 'pending'`).Error; err != nil {
		return err
	}

	return nil
}
