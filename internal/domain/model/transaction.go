package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a payment transaction.
// pending is the only non-terminal state; success and failed are terminal.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Terminal reports whether no further status transition is permitted.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

// PaymentTransaction is one payment attempt, keyed by its locally generated
// reference. The reference is assigned before any gateway contact and never
// changes; the amount is immutable after creation.
type PaymentTransaction struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference        string            `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Email            string            `gorm:"size:255" json:"email"`
	Amount           decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency         string            `gorm:"size:3;default:'NGN'" json:"currency"`
	Status           TransactionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AuthorizationURL *string           `gorm:"size:512" json:"authorization_url,omitempty"`
	AccessCode       *string           `gorm:"size:100" json:"access_code,omitempty"`
	FailureCode      *string           `gorm:"size:100" json:"failure_code,omitempty"`
	FailureMessage   *string           `json:"failure_message,omitempty"`
	GatewayData      JSONB             `gorm:"column:gateway_data;type:jsonb" json:"gateway_data,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
