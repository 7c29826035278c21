// Package config provides configuration management for vizcore services.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/solatis/vizcore/internal/types"
)

// Config is the complete service configuration.
type Config struct {
	StyleAPI StyleAPIConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

// StyleAPIConfig holds configuration for the gRPC style API service.
type StyleAPIConfig struct {
	Host           string
	Port           int
	MaxConnections int
	RequestTimeout time.Duration
	MaxRows        int
	MaxRules       int
	MetricsAddr    string
}

// LogConfig selects the zap logger built by the CLI.
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig points the SQL data provider at a database.
// An empty URL disables the provider.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// AuthConfig lists the accepted API keys. Entries carry only the key's
// HMAC, never the key or the secret.
type AuthConfig struct {
	Enabled bool
	Keys    []KeyConfig
}

// KeyConfig is one accepted API key.
type KeyConfig struct {
	Workspace string `mapstructure:"workspace"`
	Hash      string `mapstructure:"hash"`
	Revoked   bool   `mapstructure:"revoked"`
}

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		StyleAPI: StyleAPIConfig{
			Host:           "0.0.0.0",
			Port:           50061,
			MaxConnections: 1000,
			RequestTimeout: 30 * time.Second,
			MaxRows:        types.MaxDatasetRows,
			MaxRules:       types.MaxRulesPerList,
			MetricsAddr:    ":9464",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatJSON,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			QueryTimeout:    15 * time.Second,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
	}
}

// HMACSecrets extracts HMAC secrets from environment variables.
// Supports VZ_HMAC_SECRET (single) and VZ_HMAC_SECRET_N (rotation).
// Returns map of secret_id -> decoded secret bytes.
// Secret IDs are UUIDv7 (32 hex chars without hyphens) matching API key format.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(envKey, val string) error {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", envKey, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id '%s' found in environment variables (check VZ_HMAC_SECRET and VZ_HMAC_SECRET_* for conflicts)", secretID)
		}
		secrets[secretID] = decoded
		return nil
	}

	// Format: <secret_id>:<base64_secret>
	if val := os.Getenv("VZ_HMAC_SECRET"); val != "" {
		if err := add("VZ_HMAC_SECRET", val); err != nil {
			return nil, err
		}
	}

	// Numbered secrets keep old and new keys valid during rotation.
	for i := 1; ; i++ {
		key := fmt.Sprintf("VZ_HMAC_SECRET_%d", i)
		val := os.Getenv(key)
		if val == "" {
			break
		}
		if err := add(key, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseHMACSecret decodes a base64-encoded HMAC secret.
func ParseHMACSecret(envValue string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(envValue))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(decoded) < 32 {
		return nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(decoded))
	}
	return decoded, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if !IsHexID(secretID) {
		return "", nil, fmt.Errorf("secret_id must be 32 lowercase hex chars (UUIDv7 without hyphens)")
	}

	secret, err = ParseHMACSecret(parts[1])
	if err != nil {
		return "", nil, err
	}
	return secretID, secret, nil
}

// IsHexID reports whether s is 32 lowercase hex chars.
func IsHexID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
