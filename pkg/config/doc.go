// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
//
// # Configuration Structure
//
// Server settings:
//
//	SHOPADMIN_HOST="0.0.0.0"
//	SHOPADMIN_PORT="8080"
//	SHOPADMIN_ALLOWED_ORIGINS="http://localhost:4173,http://localhost:5173"
//	SHOPADMIN_MAX_BODY_BYTES="2097152"
//	SHOPADMIN_TRUST_PROXY="false"      # use X-Forwarded-For behind a proxy
//
// Auth settings:
//
//	SHOPADMIN_TOKEN_SECRET="..."        # required
//	SHOPADMIN_TOKEN_VALIDITY="720h"     # session lifetime, 30 days
//	SHOPADMIN_BCRYPT_COST="10"
//	SHOPADMIN_COOKIE_SECURE="true"
//	SHOPADMIN_LOGIN_RATE_LIMIT="10"     # attempts per minute per IP
//
// Storage settings:
//
//	SHOPADMIN_STORAGE_TYPE="postgres"    # memory, postgres
//	SHOPADMIN_POSTGRES_URL="postgres://localhost/shopadmin?sslmode=disable"
//	SHOPADMIN_BLACKLIST_BACKEND="redis"  # memory, postgres, redis
//	SHOPADMIN_REDIS_URL="redis://localhost:6379"
//	SHOPADMIN_BLACKLIST_PURGE_SCHEDULE="@hourly"
//	SHOPADMIN_SEED_FILE="seed.yaml"
//
// Observability settings:
//
//	SHOPADMIN_LOG_LEVEL="info"
//	SHOPADMIN_METRICS_ENABLED="true"
//	SHOPADMIN_OTEL_ENABLED="false"
//	SHOPADMIN_OTEL_ENDPOINT="localhost:4317"
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The returned Config is treated as immutable and passed to constructors.
package config
