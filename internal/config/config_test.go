// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Catalog.Driver)
	assert.Equal(t, "arweave", cfg.Arweave.Backend)
	assert.Equal(t, "0x6Cfa03Bc64B1a76206d0Ea10baDed31D520449F5", cfg.Story.SPGNFTContract)
	assert.False(t, cfg.Stripe.SkipSubscriptionCheck)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_DRIVER", "postgres")
	t.Setenv("DB_NAME", "manna_test")
	t.Setenv("DEV_MODE_SKIP_SUBSCRIPTION", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://manna.art,https://staging.manna.art")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Catalog.Driver)
	assert.Contains(t, cfg.Catalog.DSN(), "dbname=manna_test")
	assert.True(t, cfg.Stripe.SkipSubscriptionCheck)
	assert.Equal(t, []string{"https://manna.art", "https://staging.manna.art"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CATALOG_DRIVER", "mongodb")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProductionGuards(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")

	t.Setenv("STRIPE_SECRET_KEY", "sk_live_x")
	t.Setenv("DEV_MODE_SKIP_SUBSCRIPTION", "true")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEV_MODE_SKIP_SUBSCRIPTION")
}
