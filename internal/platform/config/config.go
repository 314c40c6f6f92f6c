// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, the configuration is read-only and passed to components through
their constructors. The secret key and salt in particular are loaded exactly
once per process and never mutated.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the API server, the worker and
// the management CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PublicURL is the externally reachable base URL used to build emailed links.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis), used for login sessions
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing material
	SecretKey    string `env:"SECRET_KEY,required,notEmpty"`
	PasswordSalt string `env:"SECURITY_PASSWORD_SALT" envDefault:"cryptonotify-token-salt"`

	// Token and session lifetimes
	TokenTTL       time.Duration `env:"TOKEN_TTL"        envDefault:"1h"`
	BearerTokenTTL time.Duration `env:"BEARER_TOKEN_TTL" envDefault:"1h"`
	SessionTTL     time.Duration `env:"SESSION_TTL"      envDefault:"24h"`

	// Outbound mail. An empty SMTPHost selects the logging sender.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"465"`
	SMTPUseSSL   bool   `env:"SMTP_USE_SSL"  envDefault:"true"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailSender   string `env:"MAIL_SENDER"   envDefault:"Cryptonotify Admin <noreply@cryptonotify.local>"`

	// Price ticker upstream
	TickerURL     string        `env:"TICKER_URL"     envDefault:"https://api.coinmarketcap.com/v1/ticker"`
	TickerTimeout time.Duration `env:"TICKER_TIMEOUT" envDefault:"10s"`

	// Notifications
	IFTTTKey              string  `env:"IFTTT_KEY"`
	IFTTTURL              string  `env:"IFTTT_URL"               envDefault:"https://maker.ifttt.com/trigger"`
	BitcoinPriceThreshold float64 `env:"BITCOIN_PRICE_THRESHOLD" envDefault:"10000"`
	NotifySchedule        string  `env:"NOTIFY_SCHEDULE"         envDefault:"10 * * * *"`

	// Cross-Origin Resource Sharing, comma separated
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	cfg := &Config{}

	// Fails if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects values that parse but cannot be used.
func (c *Config) validate() error {
	if c.TokenTTL < time.Second {
		return fmt.Errorf("config: TOKEN_TTL must be at least 1s, got %s", c.TokenTTL)
	}
	if c.BearerTokenTTL < time.Second {
		return fmt.Errorf("config: BEARER_TOKEN_TTL must be at least 1s, got %s", c.BearerTokenTTL)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins splits [Config.AllowedOrigins] into a clean list.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
