package config

import "time"

type ServiceConfig struct {
	Name        string        `yaml:"name"`
	Environment string        `yaml:"environment"`
	Version     string        `yaml:"version"`
	ClientURL   string        `yaml:"client_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	Gateway     GatewayConfig `yaml:"gateway"`
	Payment     PaymentConfig `yaml:"payment"`
}

// GatewayConfig points the client at the external payment gateway. Credentials
// are not configured here; they live in the database so administrators can
// rotate them at runtime.
type GatewayConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PaymentConfig holds payment policy settings. FixedAmount, when set to a
// non-empty decimal string, restricts initialize calls to exactly that amount
// (e.g. a registration fee deployment).
type PaymentConfig struct {
	ReferencePrefix string `yaml:"reference_prefix"`
	FixedAmount     string `yaml:"fixed_amount"`
	DefaultCurrency string `yaml:"default_currency"`
}
