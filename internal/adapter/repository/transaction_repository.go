package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/clearbridge-dev/payments/internal/domain/errors"
	"github.com/clearbridge-dev/payments/internal/domain/model"
	domainRepo "github.com/clearbridge-dev/payments/internal/domain/repository"
)

type transactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.TransactionRepository {
	return &transactionRepository{db: db, logger: logger}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.PaymentTransaction) error {
	txn.Status = model.TransactionStatusPending
	txn.PaidAt = nil

	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.logger.Error("transaction reference collision",
				zap.String("reference", txn.Reference),
				zap.String("user_id", txn.UserID.String()))
			return domainErrors.NewDuplicateReferenceError(txn.Reference)
		}
		r.logger.Error("failed to create transaction",
			zap.String("reference", txn.Reference),
			zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get transaction by reference",
			zap.String("reference", reference),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.PaymentTransaction, error) {
	var txns []*model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		r.logger.Error("failed to list user transactions",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func (r *transactionRepository) ListAll(ctx context.Context, limit, offset int) ([]*model.PaymentTransaction, error) {
	var txns []*model.PaymentTransaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		r.logger.Error("failed to list transactions",
			zap.Int("limit", limit),
			zap.Int("offset", offset),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func (r *transactionRepository) SetAuthorization(ctx context.Context, reference, authorizationURL, accessCode string) error {
	result := r.db.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(map[string]interface{}{
			"authorization_url": authorizationURL,
			"access_code":       accessCode,
		})
	if result.Error != nil {
		r.logger.Error("failed to store authorization data",
			zap.String("reference", reference),
			zap.Error(result.Error))
		return fmt.Errorf("failed to store authorization data: %w", result.Error)
	}
	return nil
}

// markTerminal performs the status-guarded row update that serializes
// concurrent terminal transitions. RowsAffected == 0 means another caller won
// the race (or the row never existed); the stored record is re-read and
// returned either way.
func (r *transactionRepository) markTerminal(ctx context.Context, reference string, status model.TransactionStatus, updates map[string]interface{}) (*model.PaymentTransaction, bool, error) {
	updates["status"] = status

	result := r.db.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("failed to transition transaction",
			zap.String("reference", reference),
			zap.String("target_status", string(status)),
			zap.Error(result.Error))
		return nil, false, fmt.Errorf("failed to transition transaction: %w", result.Error)
	}

	txn, err := r.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	if txn == nil {
		return nil, false, domainErrors.NewNotFoundError(reference)
	}

	return txn, result.RowsAffected > 0, nil
}

func (r *transactionRepository) MarkSuccess(ctx context.Context, reference string, fields domainRepo.SuccessFields) (*model.PaymentTransaction, bool, error) {
	updates := map[string]interface{}{
		"paid_at": fields.PaidAt,
	}
	if fields.GatewayData != nil {
		updates["gateway_data"] = fields.GatewayData
	}
	return r.markTerminal(ctx, reference, model.TransactionStatusSuccess, updates)
}

func (r *transactionRepository) MarkFailed(ctx context.Context, reference string, fields domainRepo.FailureFields) (*model.PaymentTransaction, bool, error) {
	updates := map[string]interface{}{}
	if fields.Code != "" {
		updates["failure_code"] = fields.Code
	}
	if fields.Message != "" {
		updates["failure_message"] = fields.Message
	}
	if fields.GatewayData != nil {
		updates["gateway_data"] = fields.GatewayData
	}
	return r.markTerminal(ctx, reference, model.TransactionStatusFailed, updates)
}
