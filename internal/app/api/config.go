package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
	"go.yaml.in/yaml/v4"

	platformobservability "github.com/Apurer/supplychain-tracker/internal/platform/observability"
)

// Config carries settings for the API process. Values come from an optional
// YAML file named by CONFIG_PATH; environment variables override the file.
type Config struct {
	Environment              string        `yaml:"environment"`
	Port                     string        `yaml:"port"`
	PostgresDSN              string        `yaml:"postgresDsn"`
	TemporalAddress          string        `yaml:"temporalAddress"`
	TemporalNamespace        string        `yaml:"temporalNamespace"`
	TemporalDisabled         bool          `yaml:"temporalDisabled"`
	RedisAddr                string        `yaml:"redisAddr"`
	KafkaBrokers             []string      `yaml:"kafkaBrokers"`
	KafkaTopic               string        `yaml:"kafkaTopic"`
	JWTSecret                string        `yaml:"jwtSecret"`
	SessionTTLHours          int           `yaml:"sessionTtlHours"`
	DashboardCacheTTLSeconds int           `yaml:"dashboardCacheTtlSeconds"`
	LoginRateLimitPerMinute  int           `yaml:"loginRateLimitPerMinute"`
	SessionPurgeInterval     time.Duration `yaml:"-"`
	SessionPurgeMinutes      int           `yaml:"sessionPurgeIntervalMinutes"`
	LogLevel                 string        `yaml:"logLevel"`
	OTLPEndpoint             string        `yaml:"otlpEndpoint"`
	OTLPInsecure             bool          `yaml:"otlpInsecure"`
	TraceStdout              bool          `yaml:"traceStdout"`
	// DevSecret reports that JWTSecret fell back to the built-in value.
	DevSecret bool `yaml:"-"`
}

const (
	defaultPort              = "8080"
	defaultKafkaTopic        = "supplychain.events"
	defaultSessionTTLHours   = 24
	defaultDashboardCacheTTL = 60
	defaultLoginRateLimit    = 10
	defaultPurgeMinutes      = 60
	devJWTSecret             = "dev-only-secret-change-me"
	defaultEnvironment       = "local"
)

// localEnvironments may run without JWT_SECRET.
var localEnvironments = map[string]bool{"local": true, "dev": true, "development": true, "test": true}

// Local reports whether the process runs in a developer or test environment.
func (c Config) Local() bool {
	return localEnvironments[strings.ToLower(c.Environment)]
}

// Telemetry returns the observability settings for one tracker process.
func (c Config) Telemetry(serviceName, component string) platformobservability.Settings {
	return platformobservability.Settings{
		ServiceName:  serviceName,
		Component:    component,
		Environment:  c.Environment,
		OTLPEndpoint: c.OTLPEndpoint,
		OTLPInsecure: c.OTLPInsecure,
		TraceStdout:  c.TraceStdout,
		LogLevel:     c.LogLevel,
	}
}

// SessionTTL is how long an issued token and its session stay valid.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// DashboardCacheTTL is how long computed dashboard metrics are served from cache.
func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSeconds) * time.Second
}

// LoadConfig reads the optional YAML file and environment variables, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.Environment, "APP_ENV")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.PostgresDSN, "POSTGRES_DSN")
	overrideString(&cfg.TemporalAddress, "TEMPORAL_ADDRESS")
	overrideString(&cfg.TemporalNamespace, "TEMPORAL_NAMESPACE")
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	overrideString(&cfg.KafkaTopic, "KAFKA_TOPIC")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	if raw, ok := lookupEnv("TEMPORAL_DISABLED"); ok {
		cfg.TemporalDisabled = isTruthy(raw)
	}
	if raw, ok := lookupEnv("OTEL_EXPORTER_OTLP_INSECURE"); ok {
		cfg.OTLPInsecure = isTruthy(raw)
	}
	if raw, ok := lookupEnv("TRACE_STDOUT"); ok {
		cfg.TraceStdout = isTruthy(raw)
	}
	if raw, ok := lookupEnv("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitList(raw)
	}
	for key, dest := range map[string]*int{
		"SESSION_TTL_HOURS":              &cfg.SessionTTLHours,
		"DASHBOARD_CACHE_TTL_SECONDS":    &cfg.DashboardCacheTTLSeconds,
		"LOGIN_RATE_LIMIT_PER_MINUTE":    &cfg.LoginRateLimitPerMinute,
		"SESSION_PURGE_INTERVAL_MINUTES": &cfg.SessionPurgeMinutes,
	} {
		if err := overridePositiveInt(dest, key); err != nil {
			return Config{}, err
		}
	}

	applyDefaults(&cfg)
	if cfg.JWTSecret == "" {
		if !cfg.Local() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set in the %q environment", cfg.Environment)
		}
		cfg.JWTSecret = devJWTSecret
		cfg.DevSecret = true
	}
	cfg.SessionPurgeInterval = time.Duration(cfg.SessionPurgeMinutes) * time.Minute
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.TemporalAddress == "" {
		cfg.TemporalAddress = client.DefaultHostPort
	}
	if cfg.TemporalNamespace == "" {
		cfg.TemporalNamespace = client.DefaultNamespace
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultKafkaTopic
	}
	if cfg.SessionTTLHours <= 0 {
		cfg.SessionTTLHours = defaultSessionTTLHours
	}
	if cfg.DashboardCacheTTLSeconds <= 0 {
		cfg.DashboardCacheTTLSeconds = defaultDashboardCacheTTL
	}
	if cfg.LoginRateLimitPerMinute <= 0 {
		cfg.LoginRateLimitPerMinute = defaultLoginRateLimit
	}
	if cfg.SessionPurgeMinutes <= 0 {
		cfg.SessionPurgeMinutes = defaultPurgeMinutes
	}
}

func lookupEnv(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	return val, val != ""
}

func overrideString(dest *string, key string) {
	if val, ok := lookupEnv(key); ok {
		*dest = val
	}
}

func overridePositiveInt(dest *int, key string) error {
	raw, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s must be a positive integer", key)
	}
	*dest = n
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
