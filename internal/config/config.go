package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Reporting ReportingConfig
	Quote     QuoteConfig
	Security  SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ReportingConfig holds cost-basis reporting configuration
type ReportingConfig struct {
	// HoldingPeriodDays is the long-term threshold; a holding qualifies as
	// long-term only when held strictly longer than this many days.
	HoldingPeriodDays int
}

// QuoteConfig holds quote provider configuration
type QuoteConfig struct {
	// BaseURL overrides the quote provider endpoint; empty selects the default.
	BaseURL string
	// RefreshSchedule is a cron expression for the automatic price refresh.
	// Empty disables scheduled refreshes.
	RefreshSchedule string
}

// SecurityConfig holds secret-handling configuration
type SecurityConfig struct {
	// FernetKey is the base64 key used to encrypt stored secrets such as the
	// quote provider API token. Empty disables encrypted settings.
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/costbasis.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Reporting: ReportingConfig{
			HoldingPeriodDays: getEnvInt("HOLDING_PERIOD_DAYS", 365),
		},
		Quote: QuoteConfig{
			BaseURL:         getEnv("QUOTE_BASE_URL", ""),
			RefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "0 18 * * 1-5"),
		},
		Security: SecurityConfig{
			FernetKey: getEnv("FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
