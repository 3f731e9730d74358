package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clearbridge-dev/payments/internal/domain/model"
)

// SuccessFields carries the gateway data persisted when a transaction
// transitions to success.
type SuccessFields struct {
	PaidAt      time.Time
	GatewayData model.JSONB
}

// FailureFields carries the gateway data persisted when a transaction
// transitions to failed.
type FailureFields struct {
	Code        string
	Message     string
	GatewayData model.JSONB
}

// TransactionRepository owns persisted payment transaction rows. Terminal
// transitions are serialized by the store itself (status-guarded row updates),
// not by in-process locks, since multiple processes may host this service.
type TransactionRepository interface {
	// Create persists a new transaction with status forced to pending.
	// Returns a DuplicateReferenceError if the reference already exists.
	Create(ctx context.Context, txn *model.PaymentTransaction) error

	// GetByReference returns the transaction for a reference, or nil when
	// no such transaction exists.
	GetByReference(ctx context.Context, reference string) (*model.PaymentTransaction, error)

	// ListByUser returns a user's transactions, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.PaymentTransaction, error)

	// ListAll returns all transactions, newest first, for administrative
	// listings.
	ListAll(ctx context.Context, limit, offset int) ([]*model.PaymentTransaction, error)

	// SetAuthorization stores the gateway-assigned authorization URL and
	// access code on a pending transaction.
	SetAuthorization(ctx context.Context, reference, authorizationURL, accessCode string) error

	// MarkSuccess transitions a pending transaction to success. If the row is
	// already terminal the stored record is returned unchanged; transitioned
	// reports whether this call performed the transition.
	MarkSuccess(ctx context.Context, reference string, fields SuccessFields) (txn *model.PaymentTransaction, transitioned bool, err error)

	// MarkFailed transitions a pending transaction to failed, with the same
	// already-terminal semantics as MarkSuccess.
	MarkFailed(ctx context.Context, reference string, fields FailureFields) (txn *model.PaymentTransaction, transitioned bool, err error)
}
