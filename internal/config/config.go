package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`

	RedisURL  string `envconfig:"REDIS_URL" default:"localhost:6379"`
	RedisPass string `envconfig:"REDIS_PASS" default:""`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// One canonical game document per deployment.
	GameID string `envconfig:"GAME_ID" default:"default"`

	// Staleness windows per sweep path. The crowdsourced window is shorter
	// on purpose: the server-side transaction re-validates with the path's
	// own threshold, so an eager client trigger is harmless.
	ClientStaleAfter time.Duration `envconfig:"CLIENT_STALE_AFTER" default:"45s"`
	SweepStaleAfter  time.Duration `envconfig:"SWEEP_STALE_AFTER" default:"60s"`
	SweepInterval    string        `envconfig:"SWEEP_INTERVAL" default:"1m"`

	TxMaxRetries int `envconfig:"TX_MAX_RETRIES" default:"16"`
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.TxMaxRetries < 1 {
		return fmt.Errorf("TX_MAX_RETRIES must be at least 1")
	}
	if c.ClientStaleAfter <= 0 || c.SweepStaleAfter <= 0 {
		return fmt.Errorf("staleness windows must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
