package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string
	DataDir  string // experience documents, one JSON file each

	ResultsDB string // SQLite path for play-session results; empty disables recording

	TickRate int // session tick frequency in Hz
}

func Load() *Config {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		ResultsDB:   getEnv("RESULTS_DB", "./playback_results.db"),
		TickRate:    getEnvInt("TICK_RATE", 20),
	}
}

// TickInterval converts the configured rate to a loop interval.
func (c *Config) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = 20
	}
	return time.Second / time.Duration(rate)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
