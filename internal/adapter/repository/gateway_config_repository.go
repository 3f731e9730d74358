package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/clearbridge-dev/payments/internal/domain/errors"
	"github.com/clearbridge-dev/payments/internal/domain/model"
	domainRepo "github.com/clearbridge-dev/payments/internal/domain/repository"
)

const (
	publicKeyPrefix = "pk_"
	secretKeyPrefix = "sk_"
)

type gatewayConfigRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGatewayConfigRepository creates a new gateway config repository
func NewGatewayConfigRepository(db *gorm.DB, logger *zap.Logger) domainRepo.GatewayConfigRepository {
	return &gatewayConfigRepository{db: db, logger: logger}
}

func (r *gatewayConfigRepository) GetActive(ctx context.Context) (*model.GatewayConfig, error) {
	var cfg model.GatewayConfig
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get active gateway config", zap.Error(err))
		return nil, fmt.Errorf("failed to get gateway config: %w", err)
	}
	return &cfg, nil
}

// Save deactivates every row and upserts the new credentials inside one
// database transaction, so a concurrent GetActive never observes two active
// rows. The existing row for the same public key is updated in place rather
// than replaced.
func (r *gatewayConfigRepository) Save(ctx context.Context, publicKey, secretKey string, active bool) (*model.GatewayConfig, error) {
	if err := validateKeys(publicKey, secretKey); err != nil {
		return nil, err
	}

	var saved model.GatewayConfig
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.GatewayConfig{}).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		var existing model.GatewayConfig
		err := tx.Where("public_key = ?", publicKey).First(&existing).Error
		switch {
		case err == nil:
			existing.SecretKey = secretKey
			existing.IsActive = active
			existing.UpdatedAt = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			saved = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = model.GatewayConfig{
				PublicKey: publicKey,
				SecretKey: secretKey,
				IsActive:  active,
			}
			if err := tx.Create(&saved).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save gateway config",
			zap.String("public_key", publicKey),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save gateway config: %w", err)
	}

	r.logger.Info("gateway config saved",
		zap.String("public_key", saved.PublicKey),
		zap.Bool("is_active", saved.IsActive))

	return &saved, nil
}

// validateKeys rejects empty or malformed keys up front, rather than
// persisting them and failing later at the gateway.
func validateKeys(publicKey, secretKey string) error {
	if publicKey == "" {
		return domainErrors.NewValidationError("public_key", "public key is required")
	}
	if secretKey == "" {
		return domainErrors.NewValidationError("secret_key", "secret key is required")
	}
	if !strings.HasPrefix(publicKey, publicKeyPrefix) {
		return domainErrors.NewValidationError("public_key",
			fmt.Sprintf("public key must start with %q", publicKeyPrefix))
	}
	if !strings.HasPrefix(secretKey, secretKeyPrefix) {
		return domainErrors.NewValidationError("secret_key",
			fmt.Sprintf("secret key must start with %q", secretKeyPrefix))
	}
	return nil
}
