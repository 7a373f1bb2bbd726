package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseURL != "data/catalog.db" {
		t.Errorf("expected default database url, got %q", cfg.DatabaseURL)
	}
	if cfg.WebhookLogPath != "logs/webhook_payloads.txt" {
		t.Errorf("expected default log path, got %q", cfg.WebhookLogPath)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "listen_addr: \":9000\"\nwhatsapp_verify_token: file-secret\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("expected listen addr from file, got %q", cfg.ListenAddr)
	}
	if cfg.VerifyToken != "file-secret" {
		t.Errorf("expected verify token from file, got %q", cfg.VerifyToken)
	}
	// Keys absent from the file keep their defaults.
	if cfg.DatabaseURL != "data/catalog.db" {
		t.Errorf("expected default database url, got %q", cfg.DatabaseURL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("whatsapp_verify_token: file-secret\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "env-secret")
	t.Setenv("WEBHOOK_LOG_PATH", "/tmp/custom.txt")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VerifyToken != "env-secret" {
		t.Errorf("expected env to win over file, got %q", cfg.VerifyToken)
	}
	if cfg.WebhookLogPath != "/tmp/custom.txt" {
		t.Errorf("expected env log path, got %q", cfg.WebhookLogPath)
	}
}

func TestGatewayConfigured_AllOrNothing(t *testing.T) {
	cases := []struct {
		name   string
		apiURL string
		token  string
		want   bool
	}{
		{"both set", "https://graph.facebook.com/v22.0/123", "tok", true},
		{"url only", "https://graph.facebook.com/v22.0/123", "", false},
		{"token only", "", "tok", false},
		{"neither", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{APIURL: tc.apiURL, Token: tc.token}
			if got := cfg.GatewayConfigured(); got != tc.want {
				t.Errorf("GatewayConfigured() = %v, want %v", got, tc.want)
			}
		})
	}
}
