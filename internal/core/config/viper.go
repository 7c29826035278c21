package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/solatis/vizcore/internal/types"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	// VZ_STYLE_API_PORT, VZ_DATABASE_URL, ...
	v.SetEnvPrefix("VZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		StyleAPI: StyleAPIConfig{
			Host:           v.GetString("style_api.host"),
			Port:           v.GetInt("style_api.port"),
			MaxConnections: v.GetInt("style_api.max_connections"),
			RequestTimeout: v.GetDuration("style_api.request_timeout"),
			MaxRows:        v.GetInt("style_api.max_rows"),
			MaxRules:       v.GetInt("style_api.max_rules"),
			MetricsAddr:    v.GetString("style_api.metrics_addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("database.url"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			QueryTimeout:    v.GetDuration("database.query_timeout"),
		},
		Auth: AuthConfig{
			Enabled: v.GetBool("auth.enabled"),
		},
	}
	if err := v.UnmarshalKey("auth.keys", &cfg.Auth.Keys); err != nil {
		return nil, fmt.Errorf("auth.keys: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("style_api.host", d.StyleAPI.Host)
	v.SetDefault("style_api.port", d.StyleAPI.Port)
	v.SetDefault("style_api.max_connections", d.StyleAPI.MaxConnections)
	v.SetDefault("style_api.request_timeout", d.StyleAPI.RequestTimeout.String())
	v.SetDefault("style_api.max_rows", d.StyleAPI.MaxRows)
	v.SetDefault("style_api.max_rules", d.StyleAPI.MaxRules)
	v.SetDefault("style_api.metrics_addr", d.StyleAPI.MetricsAddr)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime.String())
	v.SetDefault("database.query_timeout", d.Database.QueryTimeout.String())

	v.SetDefault("auth.enabled", d.Auth.Enabled)
}

// Validate checks ranges and enumerations. LoadConfig calls it; the CLI
// calls it again after applying flag overrides.
func Validate(cfg *Config) error {
	api := cfg.StyleAPI
	if api.Port <= 0 || api.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", api.Port)
	}
	if api.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", api.MaxConnections)
	}
	if api.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", api.RequestTimeout)
	}
	if api.MaxRows <= 0 || api.MaxRows > types.MaxDatasetRows {
		return fmt.Errorf("max_rows must be between 1 and %d, got %d", types.MaxDatasetRows, api.MaxRows)
	}
	if api.MaxRules <= 0 || api.MaxRules > types.MaxRulesPerList {
		return fmt.Errorf("max_rules must be between 1 and %d, got %d", types.MaxRulesPerList, api.MaxRules)
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format != LogFormatJSON && cfg.Log.Format != LogFormatText {
		return fmt.Errorf("log.format must be %q or %q, got %q", LogFormatJSON, LogFormatText, cfg.Log.Format)
	}

	db := cfg.Database
	if db.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive, got %d", db.MaxOpenConns)
	}
	if db.MaxIdleConns < 0 || db.MaxIdleConns > db.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns, got %d", db.MaxIdleConns)
	}
	if db.QueryTimeout <= 0 {
		return fmt.Errorf("database.query_timeout must be positive, got %v", db.QueryTimeout)
	}

	for i, k := range cfg.Auth.Keys {
		if k.Workspace == "" {
			return fmt.Errorf("auth.keys[%d]: workspace is required", i)
		}
		// Sessions are named "workspace/session".
		if strings.Contains(k.Workspace, "/") {
			return fmt.Errorf("auth.keys[%d]: workspace %q must not contain '/'", i, k.Workspace)
		}
		if raw, err := hex.DecodeString(k.Hash); err != nil || len(raw) != 32 {
			return fmt.Errorf("auth.keys[%d]: hash must be 64 hex chars (HMAC-SHA256)", i)
		}
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	for _, key := range []string{"hmac_secret", "style_api.hmac_secret", "auth.hmac_secret"} {
		if v.InConfig(key) {
			return fmt.Errorf("HMAC secrets not allowed in config files (use VZ_HMAC_SECRET environment variable)")
		}
	}
	return nil
}
