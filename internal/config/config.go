package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, parsed once at startup from
// environment variables and passed explicitly to the components that need it.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string `env:"PORT"        envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"tasktracker"`
}

// TokenConfig holds signing and expiry settings for session tokens and
// password-reset OTPs.
type TokenConfig struct {
	Secret       string        `env:"JWT_SECRET"`
	ExpiresIn    time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`
	OTPExpiresIn time.Duration `env:"OTP_EXPIRES_IN" envDefault:"10m"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}

	return nil
}

// IsProduction reports whether the process runs in production mode. Error
// detail is withheld from clients in this mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
