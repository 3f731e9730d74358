package model

import (
	"strings"
	"time"
)

// GatewayConfig holds the payment gateway credentials. At most one row may be
// active at a time; saving a new configuration deactivates all others in the
// same database transaction.
type GatewayConfig struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicKey string    `gorm:"size:255;not null" json:"public_key"`
	SecretKey string    `gorm:"size:255;not null" json:"-"`
	IsActive  bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GatewayConfig) TableName() string {
	return "gateway_configs"
}

// MaskedGatewayConfig is the external-facing view of a configuration. The
// secret key never leaves the service unmasked.
type MaskedGatewayConfig struct {
	PublicKey       string    `json:"public_key"`
	SecretKeySuffix string    `json:"secret_key_suffix"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Masked returns the configuration with the secret key reduced to a masked
// trailing-4-character suffix. Applied at every external read path; the full
// key stays internal for gateway calls.
func (c *GatewayConfig) Masked() MaskedGatewayConfig {
	return MaskedGatewayConfig{
		PublicKey:       c.PublicKey,
		SecretKeySuffix: MaskSecret(c.SecretKey),
		IsActive:        c.IsActive,
		UpdatedAt:       c.UpdatedAt,
	}
}

// MaskSecret reduces a secret to a non-reversible suffix of at most its last
// 4 characters. Secrets of 4 characters or fewer are fully masked.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 4) + secret[len(secret)-4:]
}
