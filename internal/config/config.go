// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration, parsed from CERTHOST_*
// environment variables.
type Config struct {
	ListenAddr string `env:"CERTHOST_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`

	// AppURL is the public base URL used to build certificate links in
	// notifications.
	AppURL string `env:"CERTHOST_APP_URL" envDefault:"http://127.0.0.1:8080"`

	// RedisURL selects the backing store; when empty the service falls back
	// to the in-memory store (single instance, non-durable).
	RedisURL    string `env:"CERTHOST_REDIS_URL"`
	RedisPrefix string `env:"CERTHOST_REDIS_PREFIX"`

	// EventsPlatformURL is the events feed base URL.
	EventsPlatformURL string `env:"CERTHOST_EVENTS_PLATFORM_URL"`
	// EventsAfter/EventsBefore bound the event discovery window
	// (YYYY-MM-DD); empty leaves that side open.
	EventsAfter  string `env:"CERTHOST_EVENTS_AFTER"`
	EventsBefore string `env:"CERTHOST_EVENTS_BEFORE"`

	// LoginURL is the user profile service base URL.
	LoginURL string `env:"CERTHOST_LOGIN_URL"`

	// KafkaBrokers enables bus notifications when non-empty; without it
	// notifications are logged and dropped.
	KafkaBrokers []string `env:"CERTHOST_KAFKA_BROKERS"`
	KafkaTopic   string   `env:"CERTHOST_KAFKA_TOPIC" envDefault:"cert.generated"`

	DefaultIssuer     string `env:"CERTHOST_DEFAULT_ISSUER" envDefault:"J Smith"`
	DefaultIssuerRole string `env:"CERTHOST_DEFAULT_ISSUER_ROLE" envDefault:"Maker of stuff"`

	PollInterval time.Duration `env:"CERTHOST_POLL_INTERVAL" envDefault:"12h"`
	HTTPTimeout  time.Duration `env:"CERTHOST_HTTP_TIMEOUT" envDefault:"10s"`

	// ConvertMode is "local" (subprocess tool) or "remote" (conversion API).
	ConvertMode    string        `env:"CERTHOST_CONVERT_MODE" envDefault:"local"`
	ConvertTool    string        `env:"CERTHOST_CONVERT_TOOL" envDefault:"rsvg-convert"`
	ConvertURL     string        `env:"CERTHOST_CONVERT_URL"`
	ConvertAPIKey  string        `env:"CERTHOST_CONVERT_API_KEY"`
	ConvertTimeout time.Duration `env:"CERTHOST_CONVERT_TIMEOUT" envDefault:"30s"`
}

// Load parses and validates configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.EventsPlatformURL == "" {
		return nil, fmt.Errorf("CERTHOST_EVENTS_PLATFORM_URL is required")
	}
	if cfg.LoginURL == "" {
		return nil, fmt.Errorf("CERTHOST_LOGIN_URL is required")
	}

	switch cfg.ConvertMode {
	case "local":
	case "remote":
		if cfg.ConvertURL == "" {
			return nil, fmt.Errorf("CERTHOST_CONVERT_URL is required in remote convert mode")
		}
		if cfg.ConvertAPIKey == "" {
			return nil, fmt.Errorf("CERTHOST_CONVERT_API_KEY is required in remote convert mode")
		}
	default:
		return nil, fmt.Errorf("CERTHOST_CONVERT_MODE must be %q or %q, got %q", "local", "remote", cfg.ConvertMode)
	}

	if _, _, err := cfg.EventsWindow(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EventsWindow parses the configured discovery window bounds. A zero time
// means that bound is open.
func (c *Config) EventsWindow() (after, before time.Time, err error) {
	if c.EventsAfter != "" {
		after, err = time.Parse("2006-01-02", c.EventsAfter)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("CERTHOST_EVENTS_AFTER has invalid date %q: %w", c.EventsAfter, err)
		}
	}
	if c.EventsBefore != "" {
		before, err = time.Parse("2006-01-02", c.EventsBefore)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("CERTHOST_EVENTS_BEFORE has invalid date %q: %w", c.EventsBefore, err)
		}
	}
	return after, before, nil
}
