package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration, loaded from the environment with
// an optional .env file.
type Config struct {
	HTTP    HTTPConfig
	Engine  EngineConfig
	Storage StorageConfig
	Logging LoggingConfig
}

type HTTPConfig struct {
	Addr          string
	RateLimit     time.Duration
	RequireClient bool
}

type EngineConfig struct {
	// Symbols whose open orders are reloaded from the journal on boot.
	RestoreSymbols []string
}

type StorageConfig struct {
	PostgresDSN string // empty disables the postgres journal
	RedisAddr   string // empty disables the redis snapshot cache
	RedisDB     int
	RedisTTL    time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	return &Config{
		HTTP: HTTPConfig{
			Addr:          getEnv("MATCH_HTTP_ADDR", ":8080"),
			RateLimit:     getEnvDuration("MATCH_HTTP_RATE_LIMIT", 100*time.Millisecond),
			RequireClient: getEnvBool("MATCH_HTTP_REQUIRE_CLIENT", true),
		},
		Engine: EngineConfig{
			RestoreSymbols: getEnvList("MATCH_RESTORE_SYMBOLS"),
		},
		Storage: StorageConfig{
			PostgresDSN: getEnv("MATCH_POSTGRES_DSN", ""),
			RedisAddr:   getEnv("MATCH_REDIS_ADDR", ""),
			RedisDB:     getEnvInt("MATCH_REDIS_DB", 0),
			RedisTTL:    getEnvDuration("MATCH_REDIS_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("MATCH_LOG_LEVEL", "info"),
			Format: getEnv("MATCH_LOG_FORMAT", "json"),
		},
	}, nil
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
