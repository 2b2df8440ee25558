package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	StoreDriver  string // Storage driver (sqlite, memory) (default: sqlite)
	DatabaseFile string // Path to SQLite database file (default: ./clientdash.db)

	PublicBaseURL string // Base URL used when building client share links
	AdminAPIKey   string // Shared key for the external log endpoint
	JWTSecret     string // Required: HMAC secret for session tokens

	TokenTTL     time.Duration // Share link lifetime (default: 24h)
	SessionTTL   time.Duration // Operator session lifetime (default: 12h)
	LogRetention int           // Max audit entries kept (default: 1000)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	// Seed credentials for the first admin account, used only when the user
	// table is empty.
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		StoreDriver:  getEnvOrDefault("STORE_DRIVER", "sqlite"),
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "clientdash.db"),

		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		AdminAPIKey:   os.Getenv("ADMIN_API_KEY"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		TokenTTL:     getEnvDurationOrDefault("TOKEN_TTL", 24*time.Hour),
		SessionTTL:   getEnvDurationOrDefault("SESSION_TTL", 12*time.Hour),
		LogRetention: getEnvIntOrDefault("LOG_RETENTION", 1000),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnvOrDefault("ADMIN_NAME", "Administrator"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as hours, so TOKEN_TTL=24 works too.
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}

	return defaultValue
}
