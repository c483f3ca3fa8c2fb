package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       storage.Config      `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Audit         AuditConfig         `yaml:"audit"`
	Observability ObservabilityConfig `yaml:"observability"`
	Jobs          JobsConfig          `yaml:"jobs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s liveness checks)
	HealthPort string `yaml:"health_port"`

	// Per-client request limit; zero disables rate limiting
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int `yaml:"rate_limit_burst"`
}

// RateLimit returns the per-client limiter settings for the API server
func (s ServerConfig) RateLimit() httputil.RateLimitConfig {
	cfg := httputil.DefaultRateLimitConfig()
	cfg.RequestsPerWindow = s.RateLimitPerMinute
	cfg.WindowDuration = time.Minute
	cfg.BurstSize = s.RateLimitBurst
	return cfg
}

// AuthConfig holds caller token settings
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// AuditConfig holds audit sink settings
type AuditConfig struct {
	Enabled bool                   `yaml:"enabled"`
	File    audit.FileLoggerConfig `yaml:"file"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string                   `yaml:"log_level"`
	MetricsEnabled bool                     `yaml:"metrics_enabled"`
	Tracing        observability.OTelConfig `yaml:"tracing"`
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	// GaugeRefreshSpec is the cron spec of the record gauge refresher; empty disables it
	GaugeRefreshSpec string `yaml:"gauge_refresh_spec"`
}

// Default returns the built-in configuration
func Default() *Config {
	rateLimit := httputil.DefaultRateLimitConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",

			RateLimitPerMinute: rateLimit.RequestsPerWindow,
			RateLimitBurst:     rateLimit.BurstSize,
		},
		Storage: storage.DefaultConfig(),
		Auth: AuthConfig{
			Issuer:   "visionrecords",
			TokenTTL: time.Hour,
		},
		Audit: AuditConfig{
			Enabled: true,
			File:    audit.DefaultFileLoggerConfig(),
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
			Tracing: observability.OTelConfig{
				Endpoint:       "localhost:4317",
				ServiceName:    "visionrecords",
				ServiceVersion: "1.0.0",
				Insecure:       true,
			},
		},
		Jobs: JobsConfig{
			GaugeRefreshSpec: "@every 1m",
		},
	}
}

// Load layers configuration: built-in defaults, then the YAML file named by
// VISION_CONFIG_FILE, then a .env file (VISION_ENV_FILE, default ".env") if
// present, then VISION_* environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("VISION_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFile(getEnv("VISION_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path onto c
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnvFile exports the variables of a dotenv file without overriding the
// environment; a missing file is ignored
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// applyEnv overrides c with VISION_* environment variables
func (c *Config) applyEnv() {
	s := &c.Server
	s.Host = getEnv("VISION_HOST", s.Host)
	s.Port = getEnv("VISION_PORT", s.Port)
	s.HealthPort = getEnv("VISION_HEALTH_PORT", s.HealthPort)
	s.ReadTimeout = getEnvDuration("VISION_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getEnvDuration("VISION_WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = getEnvDuration("VISION_IDLE_TIMEOUT", s.IdleTimeout)
	s.ShutdownTimeout = getEnvDuration("VISION_SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	s.RateLimitPerMinute = getEnvInt("VISION_RATE_LIMIT_PER_MINUTE", s.RateLimitPerMinute)
	s.RateLimitBurst = getEnvInt("VISION_RATE_LIMIT_BURST", s.RateLimitBurst)

	st := &c.Storage
	st.Type = getEnv("VISION_STORAGE_TYPE", st.Type)
	st.LevelDBPath = getEnv("VISION_LEVELDB_PATH", st.LevelDBPath)
	st.PostgresURL = getEnv("VISION_POSTGRES_URL", st.PostgresURL)
	st.PostgresMaxConns = getEnvInt("VISION_POSTGRES_MAX_CONNS", st.PostgresMaxConns)
	st.PostgresMinConns = getEnvInt("VISION_POSTGRES_MIN_CONNS", st.PostgresMinConns)
	st.PostgresTimeout = getEnvDuration("VISION_POSTGRES_TIMEOUT", st.PostgresTimeout)
	st.SQLitePath = getEnv("VISION_SQLITE_PATH", st.SQLitePath)
	st.RedisURL = getEnv("VISION_REDIS_URL", st.RedisURL)
	st.RedisPassword = getEnv("VISION_REDIS_PASSWORD", st.RedisPassword)
	st.RedisDB = getEnvInt("VISION_REDIS_DB", st.RedisDB)
	st.RedisMaxRetries = getEnvInt("VISION_REDIS_MAX_RETRIES", st.RedisMaxRetries)
	st.RedisPoolSize = getEnvInt("VISION_REDIS_POOL_SIZE", st.RedisPoolSize)
	st.RedisKeyPrefix = getEnv("VISION_REDIS_KEY_PREFIX", st.RedisKeyPrefix)
	st.CacheEnabled = getEnvBool("VISION_CACHE_ENABLED", st.CacheEnabled)
	st.CacheSize = getEnvInt("VISION_CACHE_SIZE", st.CacheSize)

	a := &c.Auth
	a.Secret = getEnv("VISION_AUTH_SECRET", a.Secret)
	a.Issuer = getEnv("VISION_AUTH_ISSUER", a.Issuer)
	a.TokenTTL = getEnvDuration("VISION_TOKEN_TTL", a.TokenTTL)

	au := &c.Audit
	au.Enabled = getEnvBool("VISION_AUDIT_ENABLED", au.Enabled)
	au.File.BasePath = getEnv("VISION_AUDIT_PATH", au.File.BasePath)
	au.File.Rotate = getEnvBool("VISION_AUDIT_ROTATE", au.File.Rotate)
	au.File.MaxSize = getEnvInt64("VISION_AUDIT_MAX_SIZE", au.File.MaxSize)
	au.File.MaxFiles = getEnvInt("VISION_AUDIT_MAX_FILES", au.File.MaxFiles)

	o := &c.Observability
	o.LogLevel = getEnv("VISION_LOG_LEVEL", o.LogLevel)
	o.MetricsEnabled = getEnvBool("VISION_METRICS_ENABLED", o.MetricsEnabled)
	o.Tracing.Enabled = getEnvBool("VISION_OTEL_ENABLED", o.Tracing.Enabled)
	o.Tracing.Endpoint = getEnv("VISION_OTEL_ENDPOINT", o.Tracing.Endpoint)
	o.Tracing.ServiceName = getEnv("VISION_OTEL_SERVICE_NAME", o.Tracing.ServiceName)
	o.Tracing.ServiceVersion = getEnv("VISION_OTEL_SERVICE_VERSION", o.Tracing.ServiceVersion)
	o.Tracing.Insecure = getEnvBool("VISION_OTEL_INSECURE", o.Tracing.Insecure)

	c.Jobs.GaugeRefreshSpec = getEnv("VISION_GAUGE_REFRESH_SPEC", c.Jobs.GaugeRefreshSpec)
}

// LogLevel returns the parsed observability log level
func (c *Config) LogLevel() observability.LogLevel {
	return observability.ParseLogLevel(c.Observability.LogLevel)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}

	// Validate storage config based on type
	switch c.Storage.Type {
	case storage.TypeMemory, storage.TypeLevelDB:
	case storage.TypeRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis storage")
		}
	case storage.TypePostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	case storage.TypeSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory, leveldb, redis, postgres, or sqlite)", c.Storage.Type)
	}
	if c.Storage.CacheEnabled && c.Storage.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive when the cache is enabled")
	}

	// Validate auth config
	if len(c.Auth.Secret) < auth.MinSecretLength {
		return fmt.Errorf("auth secret must be at least %d bytes (VISION_AUTH_SECRET)", auth.MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Audit.Enabled && c.Audit.File.BasePath == "" {
		return fmt.Errorf("audit path is required when audit is enabled")
	}

	// Validate OpenTelemetry config
	if c.Observability.Tracing.Enabled {
		if c.Observability.Tracing.Endpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.Tracing.ServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	if spec := c.Jobs.GaugeRefreshSpec; spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid gauge refresh schedule %q: %w", spec, err)
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
