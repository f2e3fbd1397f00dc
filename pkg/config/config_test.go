package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/platinummonkey/shopadmin/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", MaxBodyBytes: 1024},
		Auth:    AuthConfig{TokenSecret: testSecret, TokenValidity: time.Hour, BcryptCost: 10},
		Storage: storage.DefaultConfig(),
	}
}

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	t.Setenv("SHOPADMIN_TEST_VAR", "custom")

	if got := getEnv("SHOPADMIN_TEST_VAR", "default"); got != "custom" {
		t.Errorf("getEnv() = %v, want custom", got)
	}
	if got := getEnv("SHOPADMIN_TEST_VAR_NOT_SET", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want default", got)
	}
}

// TestGetEnvTyped tests the typed helpers including fallbacks on bad input
func TestGetEnvTyped(t *testing.T) {
	tests := []struct {
		name string
		env  string
		get  func() interface{}
		want interface{}
	}{
		{"bool true", "true", func() interface{} { return getEnvBool("SHOPADMIN_X", false) }, true},
		{"bool one", "1", func() interface{} { return getEnvBool("SHOPADMIN_X", false) }, true},
		{"bool other", "yes", func() interface{} { return getEnvBool("SHOPADMIN_X", true) }, false},
		{"int", "42", func() interface{} { return getEnvInt("SHOPADMIN_X", 1) }, 42},
		{"int invalid", "abc", func() interface{} { return getEnvInt("SHOPADMIN_X", 1) }, 1},
		{"int64", "4096", func() interface{} { return getEnvInt64("SHOPADMIN_X", 1) }, int64(4096)},
		{"float", "0.25", func() interface{} { return getEnvFloat("SHOPADMIN_X", 1) }, 0.25},
		{"duration", "90s", func() interface{} { return getEnvDuration("SHOPADMIN_X", time.Second) }, 90 * time.Second},
		{"duration invalid", "soon", func() interface{} { return getEnvDuration("SHOPADMIN_X", time.Second) }, time.Second},
		{"list", " a, ,b ", func() interface{} { return getEnvList("SHOPADMIN_X", nil) }, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHOPADMIN_X", tt.env)
			assert.Equal(t, tt.want, tt.get())
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SHOPADMIN_TOKEN_SECRET", "dev-secret")

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, []string{"http://localhost:4173", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(2<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenValidity)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, storage.BackendMemory, cfg.Storage.Type)
	assert.Equal(t, "@hourly", cfg.Storage.PurgeSchedule)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.AuditEnabled)
	assert.False(t, cfg.Observability.AuditDatabase)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := strings.Join([]string{
		"SHOPADMIN_TOKEN_SECRET=" + testSecret,
		"SHOPADMIN_STORAGE_TYPE=postgres",
		"SHOPADMIN_POSTGRES_URL=postgres://localhost/shopadmin",
		"SHOPADMIN_BLACKLIST_BACKEND=redis",
		"SHOPADMIN_REDIS_URL=redis://localhost:6379",
		"SHOPADMIN_LOG_LEVEL=debug",
		"SHOPADMIN_PORT=9999",
		"SHOPADMIN_TRUST_PROXY=true",
	}, "\n")
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// real environment wins over the file
	t.Setenv("SHOPADMIN_PORT", "7000")
	t.Cleanup(func() {
		for _, key := range []string{"SHOPADMIN_TOKEN_SECRET", "SHOPADMIN_STORAGE_TYPE", "SHOPADMIN_POSTGRES_URL",
			"SHOPADMIN_BLACKLIST_BACKEND", "SHOPADMIN_REDIS_URL", "SHOPADMIN_LOG_LEVEL", "SHOPADMIN_TRUST_PROXY"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := LoadConfigFrom(envFile)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, storage.BackendPostgres, cfg.Storage.Type)
	assert.Equal(t, storage.BackendRedis, cfg.Storage.EffectiveBlacklistBackend())
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Server.TrustProxy)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("SHOPADMIN_TOKEN_SECRET", "")

	_, err := LoadConfigFrom()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid memory", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port"},
		{"missing secret", func(c *Config) { c.Auth.TokenSecret = "" }, "token secret is required"},
		{"short secret allowed in memory mode", func(c *Config) { c.Auth.TokenSecret = "short" }, ""},
		{"short secret with postgres", func(c *Config) {
			c.Auth.TokenSecret = "short"
			c.Storage.Type = storage.BackendPostgres
			c.Storage.PostgresURL = "postgres://localhost/db"
		}, "at least 32 bytes"},
		{"bcrypt too low", func(c *Config) { c.Auth.BcryptCost = 2 }, "bcrypt cost"},
		{"bcrypt too high", func(c *Config) { c.Auth.BcryptCost = 32 }, "bcrypt cost"},
		{"postgres without url", func(c *Config) { c.Storage.Type = storage.BackendPostgres }, "postgres URL"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "mongo" }, "invalid storage type"},
		{"redis blacklist without url", func(c *Config) { c.Storage.BlacklistBackend = storage.BackendRedis }, "redis URL"},
		{"unknown blacklist", func(c *Config) { c.Storage.BlacklistBackend = "etcd" }, "invalid blacklist backend"},
		{"database audit without postgres", func(c *Config) { c.Observability.AuditDatabase = true }, "database audit trail"},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "shopadmin"
		}, "OpenTelemetry endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
