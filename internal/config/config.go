package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	ListenAddr  string `koanf:"listen_addr"`
	DatabaseURL string `koanf:"database_url"`

	VerifyToken string `koanf:"whatsapp_verify_token"`
	APIURL      string `koanf:"whatsapp_api_url"`
	Token       string `koanf:"whatsapp_token"`

	WebhookLogPath string `koanf:"webhook_log_path"`
}

// defaults returns a Config with every optional field pre-filled. The
// WhatsApp credentials deliberately have no default: the gateway stays
// unconfigured until the operator provides both.
func defaults() *Config {
	return &Config{
		ListenAddr:     ":8080",
		DatabaseURL:    "data/catalog.db",
		WebhookLogPath: "logs/webhook_payloads.txt",
	}
}

// Load reads configuration in three layers: built-in defaults, then the
// YAML file at path (if it exists), then environment variable overrides
// (WHATSAPP_VERIFY_TOKEN, DATABASE_URL, ...). An empty path means
// "config.yaml" in the working directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	k := koanf.New(".")
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Environment variables map onto koanf keys by lowercasing, so
	// WHATSAPP_VERIFY_TOKEN overrides whatsapp_verify_token.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// GatewayConfigured reports whether the outbound WhatsApp gateway can be
// activated. Both the API URL and the token must be present; a single
// credential is treated the same as none.
func (c *Config) GatewayConfigured() bool {
	return c.APIURL != "" && c.Token != ""
}
