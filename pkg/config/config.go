package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/platinummonkey/shopadmin/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest token secret accepted outside memory mode
const MinSecretLength = 32

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Auth configuration
	Auth AuthConfig

	// Storage configuration
	Storage storage.Config

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CORS origins allowed to send credentialed requests
	AllowedOrigins []string
	MaxBodyBytes   int64

	// TrustProxy takes the client IP from X-Forwarded-For. Enable only
	// behind a reverse proxy that sets the header.
	TrustProxy bool
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// AuthConfig holds session settings
type AuthConfig struct {
	TokenSecret   string
	TokenValidity time.Duration
	BcryptCost    int

	// CookieSecure is disabled only for local development over plain http
	CookieSecure bool

	// Login attempts allowed per client IP per minute, 0 disables the limit
	LoginRateLimit int
	LoginBurst     int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
	OTelSampleRatio    float64

	// Audit trail
	AuditEnabled  bool
	AuditFile     string
	AuditDatabase bool
}

// LoadConfig loads an optional .env file and then configuration from
// environment variables. Variables already set in the environment win over
// the file.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom is LoadConfig with explicit dotenv files. Missing files are skipped.
func LoadConfigFrom(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server:        loadServerConfig(),
		Auth:          loadAuthConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SHOPADMIN_HOST", "0.0.0.0"),
		Port:            getEnv("SHOPADMIN_PORT", "8080"),
		ReadTimeout:     getEnvDuration("SHOPADMIN_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SHOPADMIN_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("SHOPADMIN_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SHOPADMIN_SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:  getEnvList("SHOPADMIN_ALLOWED_ORIGINS", []string{"http://localhost:4173", "http://localhost:5173"}),
		MaxBodyBytes:    getEnvInt64("SHOPADMIN_MAX_BODY_BYTES", 2<<20),
		TrustProxy:      getEnvBool("SHOPADMIN_TRUST_PROXY", false),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		TokenSecret:    getEnv("SHOPADMIN_TOKEN_SECRET", ""),
		TokenValidity:  getEnvDuration("SHOPADMIN_TOKEN_VALIDITY", auth.TokenValidity),
		BcryptCost:     getEnvInt("SHOPADMIN_BCRYPT_COST", bcrypt.DefaultCost),
		CookieSecure:   getEnvBool("SHOPADMIN_COOKIE_SECURE", true),
		LoginRateLimit: getEnvInt("SHOPADMIN_LOGIN_RATE_LIMIT", 10),
		LoginBurst:     getEnvInt("SHOPADMIN_LOGIN_BURST", 5),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("SHOPADMIN_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = strings.ToLower(storageType)
	}
	if backend := getEnv("SHOPADMIN_BLACKLIST_BACKEND", ""); backend != "" {
		cfg.BlacklistBackend = strings.ToLower(backend)
	}

	// PostgreSQL config
	cfg.PostgresURL = getEnv("SHOPADMIN_POSTGRES_URL", cfg.PostgresURL)
	if maxConns := getEnvInt("SHOPADMIN_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("SHOPADMIN_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	cfg.PostgresTimeout = getEnvDuration("SHOPADMIN_POSTGRES_TIMEOUT", cfg.PostgresTimeout)
	cfg.RunMigrations = getEnvBool("SHOPADMIN_RUN_MIGRATIONS", cfg.RunMigrations)

	// Redis config
	cfg.RedisURL = getEnv("SHOPADMIN_REDIS_URL", cfg.RedisURL)
	cfg.RedisPassword = getEnv("SHOPADMIN_REDIS_PASSWORD", cfg.RedisPassword)
	if redisDB := getEnvInt("SHOPADMIN_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if poolSize := getEnvInt("SHOPADMIN_REDIS_POOL_SIZE", 0); poolSize > 0 {
		cfg.RedisPoolSize = poolSize
	}

	// Blacklist config
	cfg.BlacklistCacheSize = getEnvInt("SHOPADMIN_BLACKLIST_CACHE_SIZE", cfg.BlacklistCacheSize)
	cfg.BlacklistCacheTTL = getEnvDuration("SHOPADMIN_BLACKLIST_CACHE_TTL", cfg.BlacklistCacheTTL)
	cfg.PurgeSchedule = getEnv("SHOPADMIN_BLACKLIST_PURGE_SCHEDULE", cfg.PurgeSchedule)

	cfg.SeedFile = getEnv("SHOPADMIN_SEED_FILE", cfg.SeedFile)

	return cfg
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("SHOPADMIN_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("SHOPADMIN_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("SHOPADMIN_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("SHOPADMIN_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("SHOPADMIN_OTEL_SERVICE_NAME", "shopadmin"),
		OTelServiceVersion: getEnv("SHOPADMIN_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("SHOPADMIN_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("SHOPADMIN_OTEL_SAMPLE_RATIO", 1),
		AuditEnabled:       getEnvBool("SHOPADMIN_AUDIT_ENABLED", true),
		AuditFile:          getEnv("SHOPADMIN_AUDIT_FILE", ""),
		AuditDatabase:      getEnvBool("SHOPADMIN_AUDIT_DATABASE", false),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required (SHOPADMIN_TOKEN_SECRET)")
	}
	if c.Storage.Type != storage.BackendMemory && len(c.Auth.TokenSecret) < MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.TokenValidity <= 0 {
		return fmt.Errorf("token validity must be positive")
	}
	if c.Auth.LoginRateLimit < 0 {
		return fmt.Errorf("login rate limit must not be negative")
	}

	switch c.Storage.Type {
	case storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory or postgres)", c.Storage.Type)
	}

	switch c.Storage.EffectiveBlacklistBackend() {
	case storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for the postgres blacklist")
		}
	case storage.BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis blacklist")
		}
	default:
		return fmt.Errorf("invalid blacklist backend: %s (must be memory, postgres, or redis)", c.Storage.BlacklistBackend)
	}

	if c.Observability.AuditDatabase && c.Storage.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required for the database audit trail")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
