package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, 100, cfg.Server.RateLimit.Requests)
	require.Equal(t, time.Minute, cfg.Server.RateLimit.Window)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)

	require.Equal(t, "linkauth", cfg.Auth.JWT.Issuer)
	require.Equal(t, 720*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 15*time.Minute, cfg.Auth.MagicLink.Expiry)
	require.Equal(t, 30*time.Second, cfg.Auth.MagicLink.ResendCooldown)
	require.Equal(t, 32, cfg.Auth.MagicLink.TokenBytes)
	require.Equal(t, "/dashboard", cfg.Auth.SuccessRedirect)
	require.Equal(t, "/login?error=Verification", cfg.Auth.ErrorRedirect)

	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Maintain.Enabled)
	require.Equal(t, "@hourly", cfg.Maintain.TokenSchedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9443
  base_url: https://auth.example.com
  log_level: debug
  cookie:
    domain: example.com
    secure: true
database:
  driver: postgres
  host: db.internal
  user: linkauth
  name: linkauth
auth:
  jwt:
    secret: configured-secret
    session_ttl: 48h
  magic_link:
    expiry: 5m
    resend_cooldown: 10s
email:
  smtp:
    enabled: true
    host: smtp.example.com
    port: 465
    use_tls: true
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9443, cfg.Server.Port)
	require.Equal(t, "https://auth.example.com", cfg.Server.BaseURL)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "example.com", cfg.Server.Cookie.Domain)
	require.True(t, cfg.Server.Cookie.Secure)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Host)

	require.Equal(t, "configured-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 48*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 5*time.Minute, cfg.Auth.MagicLink.Expiry)
	require.Equal(t, 10*time.Second, cfg.Auth.MagicLink.ResendCooldown)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 465, cfg.Email.SMTP.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LINKAUTH_SERVER_PORT", "9001")
	t.Setenv("LINKAUTH_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [broken"), 0o600))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}
