package config

import (
	"fmt"
)

// Validate checks that the bootstrap configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateStorage(cfg); err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}

	if err := validateAuth(cfg); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("HOSTDROP_ADDR is required")
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("HOSTDROP_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("HOSTDROP_WRITE_TIMEOUT must be positive")
	}

	// IdleTimeout of 0 is allowed, meaning no timeout.
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("HOSTDROP_IDLE_TIMEOUT must be non-negative")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("HOSTDROP_LOG_LEVEL must be one of debug, info, warn, error")
	}

	return nil
}

// validateStorage validates the storage-related fields.
func validateStorage(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("HOSTDROP_DATA_DIR is required")
	}

	if cfg.SettingsPath == "" {
		return fmt.Errorf("HOSTDROP_SETTINGS_PATH is required")
	}

	return nil
}

// validateAuth validates the identity and token fields.
func validateAuth(cfg *Config) error {
	if cfg.IdentityTimeout <= 0 {
		return fmt.Errorf("HOSTDROP_IDENTITY_TIMEOUT must be positive")
	}

	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("HOSTDROP_TOKEN_TTL must be positive")
	}

	return nil
}
