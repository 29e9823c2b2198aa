package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration for both the study tool and the sync server.
type Config struct {
	// Sync server
	ServerPort   string
	DatabaseType string // sqlite (default), postgres, mysql
	DatabaseURL  string
	DatabasePath string
	MasterKey    string
	RateLimit    float64 // requests per second per client
	RateBurst    int

	// Study tool
	DataDir      string
	StorageMode  string // local (default), locator, remote
	SyncBaseURL  string
	SaveDebounce time.Duration
}

// Load reads configuration from the environment (and a .env file when
// present) with sensible defaults.
func Load() *Config {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	return &Config{
		ServerPort:   getEnv("PORT", "8080"),
		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:  getEnv("DB_URL", ""),
		DatabasePath: getEnv("DB_PATH", "./flashdeck.db"),
		MasterKey:    getEnv("SYNC_MASTER_KEY", ""),
		RateLimit:    getEnvFloat("RATE_LIMIT_RPS", 5),
		RateBurst:    getEnvInt("RATE_LIMIT_BURST", 10),

		DataDir:      getEnv("FLASHDECK_DATA_DIR", defaultDataDir()),
		StorageMode:  getEnv("FLASHDECK_STORAGE", "local"),
		SyncBaseURL:  getEnv("FLASHDECK_SYNC_URL", "http://localhost:8080"),
		SaveDebounce: time.Duration(getEnvInt("FLASHDECK_SAVE_DEBOUNCE_MS", 1500)) * time.Millisecond,
	}
}

// defaultDataDir places the study tool's state under the user config
// directory, falling back to the working directory when unavailable.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./flashdeck-data"
	}
	return filepath.Join(dir, "flashdeck")
}

// getEnv reads an environment variable or returns a default value
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
