package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ataraxii/wishlist/pkg/config"
	"github.com/ataraxii/wishlist/pkg/database"
)

// Config holds all configuration for the discovery server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"DISCOVERY_HTTP_PORT" envDefault:"8761"`

	// Redis (lease store)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// LeaseTTL is how long an instance stays registered without a
	// heartbeat.
	LeaseTTL time.Duration `env:"DISCOVERY_LEASE_TTL" envDefault:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load discovery config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.LeaseTTL < time.Second {
		return nil, fmt.Errorf("lease TTL too short: %s", cfg.LeaseTTL)
	}
	return cfg, nil
}

// Redis returns the Redis connection config.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
