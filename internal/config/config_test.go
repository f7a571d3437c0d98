// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/identity_test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "test-secret-at-least-32-bytes-long!")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "otp", cfg.Auth.VerificationMode)
	assert.Equal(t, 15*time.Minute, cfg.Auth.VerificationExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, "console", cfg.Mail.Driver)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_VERIFICATION_MODE", "token")
	t.Setenv("APP_BASE_URL", "https://app.example.com")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Auth.VerificationMode)
	assert.Equal(t, "https://app.example.com", cfg.Auth.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadLegacyExpiryMinutes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_VERIFICATION_EXPIRY_MINUTES", "30")

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.VerificationExpiry)
}

func TestLoadRequiresSecrets(t *testing.T) {
	cases := []struct {
		name string
		omit string
	}{
		{name: "database url", omit: "DATABASE_URL"},
		{name: "redis url", omit: "REDIS_URL"},
		{name: "jwt secret", omit: "JWT_SECRET"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.omit, "")

			_, err := load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.omit)
		})
	}
}

func TestLoadRejectsUnknownVerificationMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EMAIL_VERIFICATION_MODE", "carrier-pigeon")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification_mode")
}

func TestLoadRejectsSMTPWithoutHost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAIL_DRIVER", "smtp")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")
}

func TestServerAddress(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	assert.Equal(t, "127.0.0.1:3000", s.Address())
}
