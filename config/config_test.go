package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GO_ENV", "DATABASE_URL", "PORT", "JWT_SECRET", "JWT_ISSUER", "JWT_EXPIRY", "REQUEST_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "REDIS_URL", "EVENT_CACHE_TTL", "EMAIL_PROVIDER", "EMAIL_FROM_ADDRESS",
		"EMAIL_FROM_NAME", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	} {
		t.Setenv(k, "")
	}
	// skip .env lookup
	t.Setenv("GO_ENV", "test")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.EventCacheTTL)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("EMAIL_PROVIDER", "SES")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "ses", cfg.Email.Provider)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "prod-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
