package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// HTTP server configuration
	Server ServerConfig

	// Authentication configuration
	Auth AuthConfig

	// Marketplace configuration
	Marketplace MarketplaceConfig

	// Logging Configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr       string // listen address, e.g. ":8080"
	CORSOrigin string // allowed browser origin for the web client
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string // HMAC secret; auto-generated and persisted on first signup when empty
}

// MarketplaceConfig holds marketplace behavior configuration
type MarketplaceConfig struct {
	SeedDemoData  bool   // seed sample jobs and freelancer profiles on first run
	SweepSchedule string // cron expression for the job-deadline sweep
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return &Config{
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "kazilink.sqlite"),
		},
		Redis: RedisConfig{
			Address: envOr("REDIS_ADDRESS", "localhost:6379"),
		},
		Server: ServerConfig{
			Addr:       envOr("LISTEN_ADDR", ":8080"),
			CORSOrigin: envOr("CORS_ORIGIN", "http://localhost:5173"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Marketplace: MarketplaceConfig{
			SeedDemoData:  envOr("SEED_DEMO_DATA", "true") == "true",
			SweepSchedule: envOr("JOB_SWEEP_SCHEDULE", "*/5 * * * *"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
