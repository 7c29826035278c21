package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/solatis/vizcore/internal/types"
)

const (
	testSecretA = "0123456789abcdef0123456789abcdef:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	testSecretB = "fedcba9876543210fedcba9876543210:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	testSecretC = "0123456789abcdef0123456789abcdef:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vizcore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHMACSecrets(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    int
		wantErr bool
	}{
		{"none", nil, 0, false},
		{"single secret", map[string]string{"VZ_HMAC_SECRET": testSecretA}, 1, false},
		{"multiple numbered secrets", map[string]string{"VZ_HMAC_SECRET_1": testSecretA, "VZ_HMAC_SECRET_2": testSecretB}, 2, false},
		{"numbering stops at first gap", map[string]string{"VZ_HMAC_SECRET_1": testSecretA, "VZ_HMAC_SECRET_3": testSecretB}, 1, false},
		{"invalid format", map[string]string{"VZ_HMAC_SECRET": "invalid_format"}, 0, true},
		{"invalid secret_id length", map[string]string{"VZ_HMAC_SECRET": "short:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"}, 0, true},
		{"non-hex secret_id", map[string]string{"VZ_HMAC_SECRET": "0123456789abcdefGHIJKLMNOPQRSTUV:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"}, 0, true},
		{"duplicate secret_id in numbered secrets", map[string]string{"VZ_HMAC_SECRET_1": testSecretA, "VZ_HMAC_SECRET_2": testSecretC}, 0, true},
		{"duplicate secret_id between single and numbered", map[string]string{"VZ_HMAC_SECRET": testSecretA, "VZ_HMAC_SECRET_1": testSecretC}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"VZ_HMAC_SECRET", "VZ_HMAC_SECRET_1", "VZ_HMAC_SECRET_2", "VZ_HMAC_SECRET_3"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			secrets, err := HMACSecrets()
			if (err != nil) != tt.wantErr {
				t.Fatalf("HMACSecrets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(secrets) != tt.want {
				t.Errorf("HMACSecrets() = %d secrets, want %d", len(secrets), tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.StyleAPI.Host != "0.0.0.0" {
			t.Errorf("Host = %s, want 0.0.0.0", cfg.StyleAPI.Host)
		}
		if cfg.StyleAPI.Port != 50061 {
			t.Errorf("Port = %d, want 50061", cfg.StyleAPI.Port)
		}
		if cfg.StyleAPI.RequestTimeout != 30*time.Second {
			t.Errorf("RequestTimeout = %v, want 30s", cfg.StyleAPI.RequestTimeout)
		}
		if cfg.StyleAPI.MaxRows != types.MaxDatasetRows {
			t.Errorf("MaxRows = %d, want %d", cfg.StyleAPI.MaxRows, types.MaxDatasetRows)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != LogFormatJSON {
			t.Errorf("Log = %+v, want info/json", cfg.Log)
		}
		if cfg.Database.URL != "" {
			t.Errorf("Database.URL = %q, want empty", cfg.Database.URL)
		}
		if !cfg.Auth.Enabled {
			t.Error("Auth.Enabled = false, want true")
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("VZ_STYLE_API_PORT", "9999")
		t.Setenv("VZ_STYLE_API_HOST", "127.0.0.1")
		t.Setenv("VZ_DATABASE_URL", "sqlite://:memory:")
		t.Setenv("VZ_LOG_FORMAT", "text")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.StyleAPI.Port != 9999 {
			t.Errorf("Port = %d, want 9999", cfg.StyleAPI.Port)
		}
		if cfg.StyleAPI.Host != "127.0.0.1" {
			t.Errorf("Host = %s, want 127.0.0.1", cfg.StyleAPI.Host)
		}
		if cfg.Database.URL != "sqlite://:memory:" {
			t.Errorf("Database.URL = %q, want sqlite://:memory:", cfg.Database.URL)
		}
		if cfg.Log.Format != LogFormatText {
			t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
		}
	})

	t.Run("api keys from file", func(t *testing.T) {
		path := writeConfig(t, `auth:
  keys:
    - workspace: sales
      hash: "`+strings.Repeat("ab", 32)+`"
    - workspace: ops
      hash: "`+strings.Repeat("cd", 32)+`"
      revoked: true
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if len(cfg.Auth.Keys) != 2 {
			t.Fatalf("Keys = %d, want 2", len(cfg.Auth.Keys))
		}
		if cfg.Auth.Keys[0].Workspace != "sales" || cfg.Auth.Keys[0].Revoked {
			t.Errorf("Keys[0] = %+v, want active sales key", cfg.Auth.Keys[0])
		}
		if !cfg.Auth.Keys[1].Revoked {
			t.Errorf("Keys[1].Revoked = false, want true")
		}
	})

	invalid := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"port out of range", map[string]string{"VZ_STYLE_API_PORT": "70000"}, ""},
		{"negative max_connections", map[string]string{"VZ_STYLE_API_MAX_CONNECTIONS": "-1"}, ""},
		{"max_rows above limit", map[string]string{"VZ_STYLE_API_MAX_ROWS": "100001"}, ""},
		{"max_rules zero", map[string]string{"VZ_STYLE_API_MAX_RULES": "0"}, ""},
		{"unknown log level", map[string]string{"VZ_LOG_LEVEL": "chatty"}, ""},
		{"unknown log format", map[string]string{"VZ_LOG_FORMAT": "xml"}, ""},
		{"idle above open", map[string]string{"VZ_DATABASE_MAX_IDLE_CONNS": "50"}, ""},
		{"key without workspace", nil, "auth:\n  keys:\n    - hash: \"" + strings.Repeat("ab", 32) + "\"\n"},
		{"short key hash", nil, "auth:\n  keys:\n    - workspace: sales\n      hash: abcd\n"},
		{"workspace with slash", nil, "auth:\n  keys:\n    - workspace: sales/ops\n      hash: \"" + strings.Repeat("ab", 32) + "\"\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() error = nil, want error")
			}
		})
	}
}

func TestParseHMACSecret(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid base64", "dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w", false},
		{"invalid base64", "not-valid-base64!!!", true},
		{"secret too short", "c2hvcnQ=", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := ParseHMACSecret(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHMACSecret() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(secret) < 32 {
				t.Errorf("ParseHMACSecret() = %d bytes, want >= 32", len(secret))
			}
		})
	}
}

func TestParseHMACSecretWithID(t *testing.T) {
	t.Run("valid format", func(t *testing.T) {
		secretID, secret, err := ParseHMACSecretWithID(testSecretA)
		if err != nil {
			t.Fatalf("ParseHMACSecretWithID failed: %v", err)
		}
		if secretID != "0123456789abcdef0123456789abcdef" {
			t.Errorf("secretID = %s, want 0123456789abcdef0123456789abcdef", secretID)
		}
		if len(secret) == 0 {
			t.Error("secret should not be empty")
		}
	})

	invalid := map[string]string{
		"missing colon":            "0123456789abcdef0123456789abcdef",
		"invalid secret_id length": "tooshort:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w",
		"non-hex chars":            "0123456789abcdefGHIJKLMNOPQRSTUV:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w",
		"uppercase hex":            "0123456789ABCDEF0123456789abcdef:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w",
	}
	for name, in := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseHMACSecretWithID(in); err == nil {
				t.Errorf("ParseHMACSecretWithID(%q) error = nil, want error", in)
			}
		})
	}
}
