package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/certhost/internal/config"
)

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CERTHOST_EVENTS_PLATFORM_URL", "https://events.example.org")
	t.Setenv("CERTHOST_LOGIN_URL", "https://login.example.org")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, 12*time.Hour, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "local", cfg.ConvertMode)
	assert.Equal(t, "rsvg-convert", cfg.ConvertTool)
	assert.Equal(t, "cert.generated", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_MissingEventsPlatformURL(t *testing.T) {
	t.Setenv("CERTHOST_LOGIN_URL", "https://login.example.org")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERTHOST_EVENTS_PLATFORM_URL")
}

func TestLoad_MissingLoginURL(t *testing.T) {
	t.Setenv("CERTHOST_EVENTS_PLATFORM_URL", "https://events.example.org")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERTHOST_LOGIN_URL")
}

func TestLoad_RemoteModeRequiresURLAndKey(t *testing.T) {
	setRequired(t)
	t.Setenv("CERTHOST_CONVERT_MODE", "remote")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERTHOST_CONVERT_URL")

	t.Setenv("CERTHOST_CONVERT_URL", "https://convert.example.org")
	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERTHOST_CONVERT_API_KEY")

	t.Setenv("CERTHOST_CONVERT_API_KEY", "secret")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "remote", cfg.ConvertMode)
}

func TestLoad_InvalidConvertMode(t *testing.T) {
	setRequired(t)
	t.Setenv("CERTHOST_CONVERT_MODE", "telepathy")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERTHOST_CONVERT_MODE")
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	setRequired(t)
	t.Setenv("CERTHOST_KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestEventsWindow_ParsesBounds(t *testing.T) {
	setRequired(t)
	t.Setenv("CERTHOST_EVENTS_AFTER", "2026-01-01")
	t.Setenv("CERTHOST_EVENTS_BEFORE", "2026-12-31")

	cfg, err := config.Load()
	require.NoError(t, err)

	after, before, err := cfg.EventsWindow()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), after)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), before)
}

func TestEventsWindow_OpenByDefault(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	after, before, err := cfg.EventsWindow()
	require.NoError(t, err)
	assert.True(t, after.IsZero())
	assert.True(t, before.IsZero())
}

func TestLoad_InvalidWindowDate(t *testing.T) {
	setRequired(t)
	t.Setenv("CERTHOST_EVENTS_AFTER", "January 1")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERTHOST_EVENTS_AFTER")
}
