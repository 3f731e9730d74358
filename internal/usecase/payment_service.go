package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/clearbridge-dev/payments/internal/domain/errors"
	"github.com/clearbridge-dev/payments/internal/domain/model"
	"github.com/clearbridge-dev/payments/internal/domain/money"
	"github.com/clearbridge-dev/payments/internal/domain/provider"
	"github.com/clearbridge-dev/payments/internal/domain/repository"
	"github.com/clearbridge-dev/payments/internal/infrastructure/reference"
)

// PaymentService orchestrates the payment transaction lifecycle: it validates
// amounts, creates the durable pending record before any gateway contact, and
// reconciles terminal state through caller-driven verification.
type PaymentService struct {
	txnRepo     repository.TransactionRepository
	configRepo  repository.GatewayConfigRepository
	gateway     provider.Gateway
	refGen      reference.Generator
	fixedAmount *decimal.Decimal
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service. fixedAmount, when non-nil,
// enforces a fixed fee: initialize requests with any other amount are
// rejected.
func NewPaymentService(
	txnRepo repository.TransactionRepository,
	configRepo repository.GatewayConfigRepository,
	gateway provider.Gateway,
	refGen reference.Generator,
	fixedAmount *decimal.Decimal,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		txnRepo:     txnRepo,
		configRepo:  configRepo,
		gateway:     gateway,
		refGen:      refGen,
		fixedAmount: fixedAmount,
		logger:      logger,
	}
}

// InitializeResult is returned to the caller after a successful initialize.
type InitializeResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// VerifyResult is the outcome of a verification call.
type VerifyResult struct {
	Status      model.TransactionStatus  `json:"status"`
	Transaction *model.PaymentTransaction `json:"transaction"`
}

// InitializePayment validates the amount, persists a pending transaction, and
// registers it with the gateway. The pending row is written before the
// external call so a crash mid-flight still leaves a traceable local record;
// on gateway failure the row stays pending for later reconciliation.
func (s *PaymentService) InitializePayment(ctx context.Context, userID uuid.UUID, email string, amount decimal.Decimal, currency, callbackURL string) (*InitializeResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domainErrors.NewValidationError("amount", "amount must be greater than zero")
	}
	if s.fixedAmount != nil && !amount.Equal(*s.fixedAmount) {
		return nil, domainErrors.NewAmountMismatchError(*s.fixedAmount, amount)
	}

	amountMinor, err := money.ToMinorUnits(amount)
	if err != nil {
		return nil, domainErrors.NewValidationError("amount", err.Error())
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := s.refGen.Generate()
	if err != nil {
		s.logger.Error("reference generation failed", zap.Error(err))
		return nil, fmt.Errorf("failed to generate reference: %w", err)
	}

	txn := &model.PaymentTransaction{
		Reference: ref,
		UserID:    userID,
		Email:     email,
		Amount:    amount,
		Currency:  currency,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info("pending transaction created",
		zap.String("reference", ref),
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()),
		zap.String("currency", currency))

	resp, err := s.gateway.Initialize(ctx, cfg.SecretKey, &provider.InitializeRequest{
		Email:       email,
		AmountMinor: amountMinor,
		Currency:    currency,
		Reference:   ref,
		CallbackURL: callbackURL,
	})
	if err != nil {
		// The local record stays pending: the caller may retry and an
		// operator can reconcile against the gateway later.
		s.logger.Error("gateway initialize failed, transaction left pending",
			zap.String("reference", ref),
			zap.Error(err))
		return nil, err
	}

	// Best effort: the caller already holds the authorization URL, so a
	// failed enrichment write must not fail the operation.
	if err := s.txnRepo.SetAuthorization(ctx, ref, resp.AuthorizationURL, resp.AccessCode); err != nil {
		s.logger.Warn("failed to store authorization data",
			zap.String("reference", ref),
			zap.Error(err))
	}

	return &InitializeResult{
		Reference:        ref,
		AuthorizationURL: resp.AuthorizationURL,
		AccessCode:       resp.AccessCode,
	}, nil
}

// VerifyPayment reconciles a transaction against the gateway. Terminal
// records are returned as-is without contacting the gateway again. isAdmin
// bypasses the ownership check for administrative reconciliation.
func (s *PaymentService) VerifyPayment(ctx context.Context, ref string, userID uuid.UUID, isAdmin bool) (*VerifyResult, error) {
	txn, err := s.txnRepo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	// Ownership failures surface as not-found so another user's transaction
	// is never confirmed to exist.
	if txn == nil || (!isAdmin && txn.UserID != userID) {
		return nil, domainErrors.NewNotFoundError(ref)
	}

	if txn.Status.Terminal() {
		return &VerifyResult{Status: txn.Status, Transaction: txn}, nil
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Verify(ctx, cfg.SecretKey, ref)
	if err != nil {
		return nil, err
	}

	var (
		final        *model.PaymentTransaction
		transitioned bool
	)
	if resp.Status == provider.StatusSuccess {
		final, transitioned, err = s.txnRepo.MarkSuccess(ctx, ref, repository.SuccessFields{
			PaidAt:      time.Now(),
			GatewayData: resp.Raw,
		})
	} else {
		final, transitioned, err = s.txnRepo.MarkFailed(ctx, ref, repository.FailureFields{
			Code:        resp.Status,
			Message:     fmt.Sprintf("gateway reported status %q", resp.Status),
			GatewayData: resp.Raw,
		})
	}
	if err != nil {
		// Money may have moved at the gateway without the local record
		// reflecting it. Flag for manual reconciliation.
		s.logger.Error("RECONCILIATION REQUIRED: store write failed after gateway verify",
			zap.String("reference", ref),
			zap.String("gateway_status", resp.Status),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record verified status: %w", err)
	}

	if !transitioned {
		// A concurrent verify won the race; its terminal result stands.
		s.logger.Info("transaction already terminal, returning stored result",
			zap.String("reference", ref),
			zap.String("status", string(final.Status)))
	} else {
		s.logger.Info("transaction verified",
			zap.String("reference", ref),
			zap.String("gateway_status", resp.Status),
			zap.String("status", string(final.Status)))
	}

	return &VerifyResult{Status: final.Status, Transaction: final}, nil
}

// ListUserTransactions returns the caller's transactions, newest first.
func (s *PaymentService) ListUserTransactions(ctx context.Context, userID uuid.UUID) ([]*model.PaymentTransaction, error) {
	return s.txnRepo.ListByUser(ctx, userID)
}

// ListAllTransactions returns all transactions, newest first, for
// administrative callers.
func (s *PaymentService) ListAllTransactions(ctx context.Context, limit, offset int) ([]*model.PaymentTransaction, error) {
	if limit < 1 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.txnRepo.ListAll(ctx, limit, offset)
}

// activeConfig re-reads the active configuration on every call, never caching
// the secret key, so credential rotation takes effect immediately.
func (s *PaymentService) activeConfig(ctx context.Context) (*model.GatewayConfig, error) {
	cfg, err := s.configRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.IsActive {
		return nil, domainErrors.NewNotConfiguredError()
	}
	return cfg, nil
}
