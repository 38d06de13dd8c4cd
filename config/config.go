// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	Port    int
	TempDir string

	// Reference library. LibraryPath points at the JSON library; if
	// LibraryDBPath is set the SQLite store is used instead.
	LibraryPath   string
	LibraryDBPath string

	ElevenLabsAPIKey string

	// Stage timeouts for one pipeline run.
	DownloadTimeout   time.Duration
	ExtractTimeout    time.Duration
	TranscribeTimeout time.Duration
	MatchTimeout      time.Duration

	// Redis result cache. Empty RedisAddr disables caching.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LogLevel string
	LogFile  string

	AllowedOrigins string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load reads configuration from environment variables, consulting a .env
// file first. Existing environment variables win over .env entries.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables and defaults.")
	}

	return &Config{
		Port:    getEnvInt("PORT", 5000),
		TempDir: getEnv("TEMP_DIR", os.TempDir()),

		LibraryPath:   getEnv("LIBRARY_PATH", "studio_library.json"),
		LibraryDBPath: os.Getenv("LIBRARY_DB_PATH"),

		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),

		DownloadTimeout:   getEnvDuration("DOWNLOAD_TIMEOUT", 5*time.Minute),
		ExtractTimeout:    getEnvDuration("EXTRACT_TIMEOUT", 2*time.Minute),
		TranscribeTimeout: getEnvDuration("TRANSCRIBE_TIMEOUT", 2*time.Minute),
		MatchTimeout:      getEnvDuration("MATCH_TIMEOUT", 30*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}
}
