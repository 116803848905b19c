// Package config provides configuration for the invoice chat backend.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Extraction service (OpenAI-compatible)
	ExtractionURL     string
	ExtractionAPIKey  string
	ExtractionModel   string
	ExtractionTimeout time.Duration

	// Document rendering service
	RenderURL     string
	RenderTimeout time.Duration

	// Object storage for uploaded images
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	// Conversation context window passed to extraction
	HistoryWindow int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:       getEnv("DATABASE_URL", "file:invoicechat.db?cache=shared&mode=rwc"),
		ExtractionURL:     getEnv("EXTRACTION_URL", "https://openrouter.ai/api/v1"),
		ExtractionAPIKey:  getEnv("EXTRACTION_API_KEY", ""),
		ExtractionModel:   getEnv("EXTRACTION_MODEL", "anthropic/claude-sonnet-4"),
		ExtractionTimeout: time.Duration(getEnvInt("EXTRACTION_TIMEOUT_MS", 60000)) * time.Millisecond,
		RenderURL:         getEnv("RENDER_URL", "http://localhost:8090"),
		RenderTimeout:     time.Duration(getEnvInt("RENDER_TIMEOUT_MS", 30000)) * time.Millisecond,
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:       getEnv("MINIO_BUCKET", "invoice-images"),
		MinioUseSSL:       getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL:    getEnv("MINIO_PUBLIC_URL", ""),
		HistoryWindow:     getEnvInt("HISTORY_WINDOW", 20),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
