package provider

import (
	"context"
	"fmt"
)

// Gateway defines the interface to the external payment gateway. Credentials
// are passed per call so that rotated keys take effect without a restart.
type Gateway interface {
	// Initialize registers a payment attempt with the gateway and returns the
	// URL the customer is redirected to for authorization.
	Initialize(ctx context.Context, secretKey string, req *InitializeRequest) (*InitializeResponse, error)

	// Verify fetches the gateway's view of a transaction. Idempotent; safe to
	// call any number of times for the same reference.
	Verify(ctx context.Context, secretKey string, reference string) (*VerifyResponse, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// InitializeRequest represents a gateway payment initialization request.
// AmountMinor is in the smallest currency unit (e.g. kobo for NGN).
type InitializeRequest struct {
	Email       string `json:"email"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// InitializeResponse represents the response from payment initialization
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResponse represents the gateway's view of a transaction. Status is the
// gateway's own token; only StatusSuccess maps to a local success.
type VerifyResponse struct {
	Status      string                 `json:"status"`
	AmountMinor int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	PaidAt      string                 `json:"paid_at,omitempty"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// StatusSuccess is the gateway's token for a completed payment. Matched
// exactly; any other token is treated as failure.
const StatusSuccess = "success"

// ErrorKind classifies gateway failures by how the caller should react.
type ErrorKind string

const (
	// ErrKindUnavailable covers network-level failures. Safe to retry.
	ErrKindUnavailable ErrorKind = "unavailable"
	// ErrKindTimeout means the response was abandoned, not that the payment
	// failed. The gateway's state is unknown; reconcile via Verify.
	ErrKindTimeout ErrorKind = "timeout"
	// ErrKindRejected means the gateway explicitly refused the request. Not
	// retried with the same inputs.
	ErrKindRejected ErrorKind = "rejected"
)

// ProviderError is a classified error from the payment gateway
type ProviderError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s [%s]: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the same request may be safely retried.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ErrKindUnavailable || e.Kind == ErrKindTimeout
}
