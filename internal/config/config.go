package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "bloodlink-data/pkg/config"
)

// Config holds all bloodlink-data (HTTP API) settings, loaded from env.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	Log struct {
		Level  string
		Format string
	}

	// SessionTTL bounds how long a login token stays valid.
	SessionTTL time.Duration

	Webhook WebhookConfig
}

// WebhookConfig drives the critical-request notifier. Disabled by default.
type WebhookConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default true for local dev; when the DB is unavailable the service
	// falls back to in-memory repositories instead of refusing to start.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "bloodlink")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.SessionTTL = time.Duration(parseInt(getEnv("SESSION_TTL_HOURS", "168"), 168)) * time.Hour

	cfg.Webhook.Enabled = getEnv("WEBHOOK_ENABLED", "false") == "true"
	cfg.Webhook.URL = getEnv("WEBHOOK_URL", "")
	cfg.Webhook.Timeout = time.Duration(parseInt(getEnv("WEBHOOK_TIMEOUT_SECONDS", "5"), 5)) * time.Second

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
