package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RELAY_TIMEOUT", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.Relay.Timeout)
	require.Equal(t, "perfura:orders", cfg.Pending.RedisKey)
	require.Equal(t, "perfura_sid", cfg.Session.CookieName)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RELAY_TIMEOUT", "3s")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 3*time.Second, cfg.Relay.Timeout)
	require.True(t, cfg.Session.SecureOnly)
	require.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoadRejectsNonPositiveRelayTimeout(t *testing.T) {
	t.Setenv("RELAY_TIMEOUT", "-1s")

	_, err := Load()
	require.Error(t, err)
}
