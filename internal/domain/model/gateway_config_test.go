package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"empty", "", ""},
		{"short secret fully masked", "abcd", "****"},
		{"normal secret keeps last four", "sk_test_secret1234", "****1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskSecret(tt.secret))
		})
	}
}

func TestMasked_NeverContainsFullSecret(t *testing.T) {
	cfg := &GatewayConfig{
		PublicKey: "pk_live_abc",
		SecretKey: "sk_live_verysecret9876",
		IsActive:  true,
	}

	masked := cfg.Masked()
	data, err := json.Marshal(masked)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk_live_verysecret9876")
	assert.Contains(t, masked.SecretKeySuffix, "9876")
}

func TestGatewayConfig_SecretKeyExcludedFromJSON(t *testing.T) {
	cfg := &GatewayConfig{
		PublicKey: "pk_live_abc",
		SecretKey: "sk_live_verysecret9876",
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk_live_verysecret9876")
}
