package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string

	MEDIA_ROOT   string
	MEDIA_URL    string
	ARCHIVE_ROOT string
	ARCHIVE_URL  string

	RENDER_WORKERS  int
	VARIATIONS_FILE string

	LOG_LEVEL  string
	LOG_FORMAT string
)

// LoadEnv populates the settings shared by the server and the management
// commands. Only DB_URL is required here; the server checks its own secrets
// with RequireServer.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = getEnv("JWT_SECRET", "")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")

	MEDIA_ROOT = getEnv("MEDIA_ROOT", "media")
	MEDIA_URL = getEnv("MEDIA_URL", "/media")
	ARCHIVE_ROOT = getEnv("ARCHIVE_ROOT", "archive")
	ARCHIVE_URL = getEnv("ARCHIVE_URL", "/archive")

	RENDER_WORKERS = getEnvInt("RENDER_WORKERS", 0)
	VARIATIONS_FILE = getEnv("VARIATIONS_FILE", "")

	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	LOG_FORMAT = getEnv("LOG_FORMAT", "text")
}

// RequireServer fails fast on settings only the HTTP server needs.
func RequireServer() {
	JWT_SECRET = mustEnv("JWT_SECRET")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		slog.Error("Missing required environment variable", "key", key)
		os.Exit(1)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring non-numeric environment variable", "key", key, "value", value)
		return fallback
	}
	return n
}
