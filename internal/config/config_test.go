package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValidInDevMode(t *testing.T) {
	cfg := Default()
	cfg.DevMode = true
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsMissingSecretOutsideDev(t *testing.T) {
	cfg := Default()
	cfg.DevMode = false
	cfg.JWTSecret = ""
	require.Error(t, cfg.Validate())
}

func TestValidateInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"room size below pair", func(c *Config) { c.MaxRoomSize = 1 }},
		{"zero heartbeat", func(c *Config) { c.Heartbeat = 0 }},
		{"zero invite ttl", func(c *Config) { c.InviteTTL = 0 }},
		{"tls cert without key", func(c *Config) { c.TLSCertFile = "cert.pem" }},
		{"rate limiting enabled with zero rate", func(c *Config) {
			c.RateLimitingEnabled = true
			c.WSConnRatePerSec = 0
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.DevMode = true
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "port: 9090\nmax_room_size: 4\nheartbeat: 30s\njwt_secret: filesecret\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("JWT_SECRET", "envsecret")
	t.Setenv("MAX_ROOM_SIZE", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 30*time.Second, cfg.Heartbeat)
	// env wins over file
	require.Equal(t, "envsecret", cfg.JWTSecret)
	require.Equal(t, 6, cfg.MaxRoomSize)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().Port, cfg.Port)
}

func TestBindAddr(t *testing.T) {
	cfg := Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 8081
	require.Equal(t, "127.0.0.1:8081", cfg.BindAddr())
}
