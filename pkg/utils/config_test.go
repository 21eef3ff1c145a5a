package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	config, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongo", config.Database.Driver)
	require.Equal(t, 2*time.Minute, config.OTP.Expiry())
	require.Equal(t, 30*time.Second, config.OTP.ResendAfter())
	require.Equal(t, 5, config.OTP.MaxRetries)
	require.Equal(t, 6, config.OTP.Length)
	require.Equal(t, 15*time.Minute, config.Reset.Expiry())
	require.Equal(t, 10, config.RateLimit.Requests)
	require.Equal(t, time.Minute, config.RateLimit.Window())
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, config.App.CORSOrigins)
	require.False(t, config.Email.Configured())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("FRONTEND_URL", "https://instamakaan.example/")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("OTP_MAX_RETRIES", "3")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_USER", "mailer@example")
	t.Setenv("SMTP_PASS", "pw")

	config, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "postgres", config.Database.Driver)
	require.Equal(t, "https://instamakaan.example", config.App.FrontendURL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, config.App.CORSOrigins)
	require.Equal(t, 3, config.OTP.MaxRetries)
	require.True(t, config.Email.Configured())
	require.Equal(t, "mailer@example", config.Email.From)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
