package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	Postgres PostgresConfig
	Redis    RedisConfig
	Media    MediaConfig
}

// PostgresConfig holds the relational store settings. An empty URL selects the
// in-memory stores, which keeps local development and unit tests dependency
// free.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig holds the optional cache settings. An empty URL disables Redis
// and with it the purchase idempotency guard.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MediaConfig holds image storage settings.
type MediaConfig struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr: getEnv("TOURSALES_ADDR", ":8080"),
		Postgres: PostgresConfig{
			URL:          os.Getenv("TOURSALES_POSTGRES_URL"),
			MaxOpenConns: getEnvInt("TOURSALES_POSTGRES_MAX_OPEN", 16),
			MaxIdleConns: getEnvInt("TOURSALES_POSTGRES_MAX_IDLE", 4),
			ConnLifetime: getEnvDuration("TOURSALES_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("TOURSALES_REDIS_URL"),
			PoolSize:     getEnvInt("TOURSALES_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("TOURSALES_REDIS_MIN_IDLE", 2),
			DialTimeout:  getEnvDuration("TOURSALES_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("TOURSALES_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("TOURSALES_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Media: MediaConfig{
			Dir:      getEnv("TOURSALES_MEDIA_DIR", "data/media"),
			BaseURL:  getEnv("TOURSALES_MEDIA_BASE_URL", "/media"),
			MaxBytes: int64(getEnvInt("TOURSALES_MEDIA_MAX_MB", 25)) << 20,
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
