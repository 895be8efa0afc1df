package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL())
	require.Equal(t, time.Minute, cfg.DashboardCacheTTL())
	require.Equal(t, time.Hour, cfg.SessionPurgeInterval)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "local", cfg.Environment)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
redisAddr: redis:6379
kafkaBrokers: [k1:9092]
dashboardCacheTtlSeconds: 30
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "9100", cfg.Port)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 30*time.Second, cfg.DashboardCacheTTL())
}

func TestLoadConfig_RejectsBadNumbers(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LOGIN_RATE_LIMIT_PER_MINUTE", "zero")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "LOGIN_RATE_LIMIT_PER_MINUTE")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_DevSecretOnlyInLocalEnvironments(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "")

	t.Setenv("APP_ENV", "test")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.DevSecret)
	require.Equal(t, devJWTSecret, cfg.JWTSecret)

	t.Setenv("APP_ENV", "production")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "prod-secret")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	require.False(t, cfg.DevSecret)
	require.Equal(t, "prod-secret", cfg.JWTSecret)
}

func TestLoadConfig_PurgeIntervalAndTelemetryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
jwtSecret: from-file
sessionPurgeIntervalMinutes: 15
logLevel: debug
otlpEndpoint: collector:4318
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_ENV", "")
	t.Setenv("SESSION_PURGE_INTERVAL_MINUTES", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.SessionPurgeInterval)

	settings := cfg.Telemetry("supplychain-tracker-api", "api")
	require.Equal(t, "staging", settings.Environment)
	require.Equal(t, "collector:4318", settings.OTLPEndpoint)
	require.Equal(t, "debug", settings.LogLevel)
	require.Equal(t, "api", settings.Component)
}
