package repository

import (
	"context"

	"github.com/clearbridge-dev/payments/internal/domain/model"
)

// GatewayConfigRepository owns the gateway credential rows. The store-level
// invariant is that at most one row is active at any time.
type GatewayConfigRepository interface {
	// GetActive returns the single active configuration, or nil when the
	// gateway has not been configured.
	GetActive(ctx context.Context) (*model.GatewayConfig, error)

	// Save atomically deactivates every existing row and writes the new
	// credentials as the active configuration. Existing rows are updated in
	// place rather than deleted, so a concurrent read never observes more
	// than one active row.
	Save(ctx context.Context, publicKey, secretKey string, active bool) (*model.GatewayConfig, error)
}
