// package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// telegram
	TGApiID      int
	TGApiHash    string
	TGSessionStr string

	// storage
	SessionDBPath string
	HistoryFile   string

	// forwarding
	JobsFile      string
	DedupTTLSec   int
	AlbumWindowMS int

	// nats
	NatsURL string

	// server
	HTTPPort int

	// logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		TGApiID:       getEnvInt("TG_API_ID", 0),
		TGApiHash:     getEnv("TG_API_HASH", ""),
		TGSessionStr:  getEnv("TG_SESSION_STRING", ""),
		SessionDBPath: getEnv("SESSION_DB_PATH", "./data/forwarder.db"),
		HistoryFile:   getEnv("HISTORY_FILE", "./data/forward_history.txt"),
		JobsFile:      getEnv("JOBS_FILE", "./jobs.yaml"),
		DedupTTLSec:   getEnvInt("DEDUP_TTL_SECONDS", 60),
		AlbumWindowMS: getEnvInt("ALBUM_WINDOW_MS", 600),
		NatsURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		HTTPPort:      getEnvInt("HTTP_PORT", 3200),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", "./logs/forwarder.log"),
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
