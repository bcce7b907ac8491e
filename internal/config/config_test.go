package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MAIL_DRIVER", "log")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "JobPortal", cfg.AppName)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, 10*time.Minute, cfg.Registration.OTPTTL)
	assert.Equal(t, time.Hour, cfg.Registration.Retention)
	assert.Equal(t, "bcrypt", cfg.Registration.PasswordHasher)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("REGISTRATION_RETENTION", "30m")
	t.Setenv("PASSWORD_HASHER", "argon2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.Registration.OTPTTL)
	assert.Equal(t, 30*time.Minute, cfg.Registration.Retention)
	assert.Equal(t, "argon2", cfg.Registration.PasswordHasher)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRejectsRetentionShorterThanOTP(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OTP_TTL", "2h")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRATION_RETENTION")
}

func TestLoadRequiresBackendURLs(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MAIL_DRIVER", "log")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoadMemoryBackendOnlyInDev(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("MAIL_DRIVER", "log")
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("APP_ENV", "local")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoadSMTPRequiresHost(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAIL_DRIVER", "smtp")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")
}
