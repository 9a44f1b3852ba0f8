// Package config loads service configuration from the environment. Each
// concern gets its own struct and loader so the two binaries only pay for
// what they wire.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full configuration tree. Load it once at startup and pass
// the relevant sub-structs down.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Worker   WorkerConfig
	Trainer  TrainerConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	Storage  StorageConfig
}

// Load reads .env (if present) and builds the configuration tree.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTP:     loadHTTPConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Queue:    loadQueueConfig(),
		Worker:   loadWorkerConfig(),
		Trainer:  loadTrainerConfig(),
		Auth:     loadAuthConfig(),
		Notify:   loadNotifyConfig(),
		Storage:  loadStorageConfig(),
	}
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port        string
	CORSOrigins string
	BodyLimit   int
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		BodyLimit:   getEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),
	}
}

// --- env helpers ---

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
