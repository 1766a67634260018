// Package config provides process bootstrap configuration for the hostdrop server.
// Configuration is loaded from environment variables with sensible defaults.
//
// Bootstrap configuration covers what the process needs before it can serve
// anything: bind address, sandbox root, the location of the persisted settings
// document, and timeouts. The settings document itself is managed by the
// settings package and can change at runtime.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the complete bootstrap configuration in a flat structure.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP server (e.g., ":8099").
	Addr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// Storage settings
	// DataDir is the sandbox root. Every folder directory is a direct child
	// of this directory and no write may land outside it.
	DataDir string

	// SettingsPath is where the persisted settings document lives.
	SettingsPath string

	// Identity settings
	// IdentityTimeout is the per-candidate timeout for probing the host's
	// identity endpoint. Candidates are tried sequentially, so the worst-case
	// validation latency is IdentityTimeout times the number of candidates.
	IdentityTimeout time.Duration

	// Scoped token settings
	// TokenTTL is the lifetime of minted folder-scoped write tokens.
	TokenTTL time.Duration

	// TokenSecret is the HMAC signing secret for scoped tokens. When empty a
	// random secret is generated at startup and issued tokens do not survive
	// a restart.
	TokenSecret string

	// LogLevel is the minimum slog level: debug, info, warn, or error.
	LogLevel string
}

// Load reads configuration from environment variables and returns a Config.
// It sets default values for optional fields and validates the configuration.
func Load() (*Config, error) {
	readTimeout, err := parseDurationWithDefault("HOSTDROP_READ_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid HOSTDROP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := parseDurationWithDefault("HOSTDROP_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid HOSTDROP_WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := parseDurationWithDefault("HOSTDROP_IDLE_TIMEOUT", "120s")
	if err != nil {
		return nil, fmt.Errorf("invalid HOSTDROP_IDLE_TIMEOUT: %w", err)
	}

	identityTimeout, err := parseDurationWithDefault("HOSTDROP_IDENTITY_TIMEOUT", "4s")
	if err != nil {
		return nil, fmt.Errorf("invalid HOSTDROP_IDENTITY_TIMEOUT: %w", err)
	}

	tokenTTL, err := parseDurationWithDefault("HOSTDROP_TOKEN_TTL", "24h")
	if err != nil {
		return nil, fmt.Errorf("invalid HOSTDROP_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Addr:            getEnvWithDefault("HOSTDROP_ADDR", ":8099"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		DataDir:         getEnvWithDefault("HOSTDROP_DATA_DIR", "data"),
		SettingsPath:    getEnvWithDefault("HOSTDROP_SETTINGS_PATH", "hostdrop.json"),
		IdentityTimeout: identityTimeout,
		TokenTTL:        tokenTTL,
		TokenSecret:     os.Getenv("HOSTDROP_TOKEN_SECRET"),
		LogLevel:        getEnvWithDefault("HOSTDROP_LOG_LEVEL", "info"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvWithDefault returns the environment variable value or the default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationWithDefault parses a duration from an environment variable.
// If the variable is not set, it uses the default value.
// Returns an error if the value is set but cannot be parsed.
func parseDurationWithDefault(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		duration, err := time.ParseDuration(defaultValue)
		if err != nil {
			return 0, fmt.Errorf("invalid default duration %q: %w", defaultValue, err)
		}
		return duration, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", value, err)
	}

	return duration, nil
}

// String returns a string representation of the configuration (for debugging).
// The token secret is redacted.
func (c *Config) String() string {
	secret := ""
	if c.TokenSecret != "" {
		secret = "[redacted]"
	}
	return fmt.Sprintf("Config{Addr: %s, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, DataDir: %s, SettingsPath: %s, IdentityTimeout: %v, TokenTTL: %v, TokenSecret: %s, LogLevel: %s}",
		c.Addr, c.ReadTimeout, c.WriteTimeout, c.IdleTimeout,
		c.DataDir, c.SettingsPath, c.IdentityTimeout, c.TokenTTL, secret, c.LogLevel)
}
