package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8761", cfg.DiscoveryURL)
	assert.Equal(t, 5*time.Second, cfg.ResolveCacheTTL)
	assert.Equal(t, "http://localhost:8081", cfg.WishlistFallback)
	assert.Equal(t, 50, cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GATEWAY_HTTP_PORT", "8000")
	t.Setenv("RESOLVE_CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "10")
	t.Setenv("RATE_LIMIT_BURST", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.ResolveCacheTTL)
	assert.Equal(t, 10, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "100")
	t.Setenv("RATE_LIMIT_BURST", "10")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rate limit")
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
