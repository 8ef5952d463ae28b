// Package config loads typed configuration structs from environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from environment variables using `env` struct tags.
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// New allocates a T and populates it from the environment.
func New[T any]() (*T, error) {
	cfg := new(T)
	if err := Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
