package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// JWTConfig holds configuration for session token signing.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	// Ephemeral marks a secret generated at startup; sessions do not survive a restart.
	Ephemeral bool
}

// NewJWTConfig creates a JWT configuration from JWT_SECRET (required) and
// JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours, err := expirationFromEnv()
	if err != nil {
		return nil, err
	}

	config := &JWTConfig{Secret: secret, ExpirationHours: hours}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// EphemeralJWTConfig returns a configuration with a random secret for local runs.
func EphemeralJWTConfig() *JWTConfig {
	hours, err := expirationFromEnv()
	if err != nil || hours < 1 {
		hours = 24
	}
	return &JWTConfig{
		Secret:          uuid.NewString() + uuid.NewString(),
		ExpirationHours: hours,
		Ephemeral:       true,
	}
}

func expirationFromEnv() (int, error) {
	raw := os.Getenv("JWT_EXPIRATION_HOURS")
	if raw == "" {
		return 24, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}
	return hours, nil
}

func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
