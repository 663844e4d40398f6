package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/domain"
)

var configKeys = []string{
	"PORT", "DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "TOKEN_EXPIRY", "REQUEST_TIMEOUT",
	"ADMISSION_MODE", "ALLOW_PAST_REGISTRATION", "CORS_ALLOWED_ORIGINS", "EMAIL_PROVIDER",
	"EMAIL_FROM_ADDRESS", "EMAIL_FROM_NAME", "AWS_REGION", "AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY", "SES_INSECURE_SKIP_VERIFY", "CERTIFICATE_ISSUER_NAME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := fromEnv("development")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Contains(t, cfg.DBUrl, "postgres://")
	assert.Equal(t, domain.AdmissionStrict, cfg.AdmissionMode)
	assert.False(t, cfg.AllowPastRegistration)
	assert.Equal(t, 720*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "noop", cfg.EmailProvider)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ADMISSION_MODE", "best_effort")
	t.Setenv("ALLOW_PAST_REGISTRATION", "true")
	t.Setenv("TOKEN_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := fromEnv("development")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "campusevents.db", cfg.DBUrl)
	assert.Equal(t, domain.AdmissionBestEffort, cfg.AdmissionMode)
	assert.True(t, cfg.AllowPastRegistration)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		key     string
		value   string
		wantErr string
	}{
		{"driver", "development", "DB_DRIVER", "mysql", "DB_DRIVER"},
		{"admission mode", "development", "ADMISSION_MODE", "lottery", "ADMISSION_MODE"},
		{"duration", "development", "REQUEST_TIMEOUT", "soon", "REQUEST_TIMEOUT"},
		{"negative expiry", "development", "TOKEN_EXPIRY", "-1h", "TOKEN_EXPIRY"},
		{"bool", "development", "ALLOW_PAST_REGISTRATION", "maybe", "ALLOW_PAST_REGISTRATION"},
		{"production secret", "production", "JWT_SECRET", "", "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := fromEnv(tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
