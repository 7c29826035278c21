package config

import (
	"testing"
)

// TestAcceptanceCriteria covers the configuration contract end to end.
func TestAcceptanceCriteria(t *testing.T) {
	t.Run("AC1: Environment variable VZ_HMAC_SECRET accessible via HMACSecrets", func(t *testing.T) {
		t.Setenv("VZ_HMAC_SECRET", testSecretA)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("AC1 FAIL: HMACSecrets error: %v", err)
		}
		if _, ok := secrets["0123456789abcdef0123456789abcdef"]; !ok {
			t.Fatal("AC1 FAIL: Secret not accessible")
		}
	})

	t.Run("AC2: Config file with hmac_secret rejected with clear error", func(t *testing.T) {
		path := writeConfig(t, `style_api:
  host: "localhost"
  port: 8080
  hmac_secret: "should_be_rejected"
`)
		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("AC2 FAIL: Expected error for secret in config file")
		}
		if err.Error() != "HMAC secrets not allowed in config files (use VZ_HMAC_SECRET environment variable)" {
			t.Fatalf("AC2 FAIL: Wrong error message: %v", err)
		}
	})

	t.Run("AC3: Secret in environment does not trip the config file check", func(t *testing.T) {
		t.Setenv("VZ_HMAC_SECRET", testSecretA)

		if _, err := LoadConfig(""); err != nil {
			t.Fatalf("AC3 FAIL: LoadConfig error: %v", err)
		}
	})

	t.Run("AC4: Environment overrides config file", func(t *testing.T) {
		t.Setenv("VZ_STYLE_API_PORT", "8080")

		path := writeConfig(t, `style_api:
  port: 9090
  request_timeout: 5s
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("AC4 FAIL: LoadConfig error: %v", err)
		}
		if cfg.StyleAPI.Port != 8080 {
			t.Fatalf("AC4 FAIL: Environment should override config file. Expected 8080, got %d", cfg.StyleAPI.Port)
		}
		if cfg.StyleAPI.RequestTimeout.String() != "5s" {
			t.Fatalf("AC4 FAIL: Config file should override defaults. Expected 5s, got %v", cfg.StyleAPI.RequestTimeout)
		}
	})
}
