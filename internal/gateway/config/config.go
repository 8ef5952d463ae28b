package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ataraxii/wishlist/pkg/config"
)

// Config holds all configuration for the API gateway.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"GATEWAY_HTTP_PORT" envDefault:"8080"`

	// Service discovery
	DiscoveryURL     string        `env:"DISCOVERY_URL" envDefault:"http://localhost:8761"`
	ResolveCacheTTL  time.Duration `env:"RESOLVE_CACHE_TTL" envDefault:"5s"`
	WishlistFallback string        `env:"WISHLIST_SERVICE_URL" envDefault:"http://localhost:8081"`

	// JWT verification at the edge
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load gateway config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.RateLimitRPS < 1 || cfg.RateLimitBurst < cfg.RateLimitRPS {
		return nil, fmt.Errorf("invalid rate limit: rps=%d burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}
	return cfg, nil
}
