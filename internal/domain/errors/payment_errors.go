package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error type identifiers used by handlers to map errors to HTTP responses.
const (
	ErrTypeValidation         = "VALIDATION_ERROR"
	ErrTypeNotConfigured      = "GATEWAY_NOT_CONFIGURED"
	ErrTypeNotFound           = "TRANSACTION_NOT_FOUND"
	ErrTypeForbidden          = "FORBIDDEN"
	ErrTypeDuplicateReference = "DUPLICATE_REFERENCE"
)

// ValidationError is returned for malformed or out-of-policy input. Never
// retried; the message is surfaced verbatim to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewAmountMismatchError reports an amount that does not match the enforced
// fixed fee, naming the required value so the caller can correct it.
func NewAmountMismatchError(required, got decimal.Decimal) *ValidationError {
	return &ValidationError{
		Field:   "amount",
		Message: fmt.Sprintf("amount must be exactly %s, got %s", required.String(), got.String()),
	}
}

// NotConfiguredError is returned when no active gateway configuration exists.
// Payments are unavailable until an administrator saves credentials.
type NotConfiguredError struct{}

func (e *NotConfiguredError) Error() string {
	return "payment gateway is not configured"
}

// NewNotConfiguredError creates a new NotConfiguredError
func NewNotConfiguredError() *NotConfiguredError {
	return &NotConfiguredError{}
}

// NotFoundError is returned when a transaction lookup fails. Ownership
// failures also surface as NotFoundError so the existence of another user's
// transaction is never leaked.
type NotFoundError struct {
	Reference string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction not found: %s", e.Reference)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(reference string) *NotFoundError {
	return &NotFoundError{Reference: reference}
}

// ForbiddenError is returned when an authenticated caller lacks the role
// required for an administrative operation.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// NewForbiddenError creates a new ForbiddenError
func NewForbiddenError(action string) *ForbiddenError {
	return &ForbiddenError{Action: action}
}

// DuplicateReferenceError indicates a reference collision on create. The
// generator makes this effectively impossible, so it is treated as an
// internal consistency failure and logged loudly.
type DuplicateReferenceError struct {
	Reference string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("duplicate transaction reference: %s", e.Reference)
}

// NewDuplicateReferenceError creates a new DuplicateReferenceError
func NewDuplicateReferenceError(reference string) *DuplicateReferenceError {
	return &DuplicateReferenceError{Reference: reference}
}
