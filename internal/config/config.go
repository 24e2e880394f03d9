package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (empty disables the input journal)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (empty disables checkpoints and table events)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Tables
	TableLayout           string
	TickMillis            int
	SnapshotEveryFrames   int
	CheckpointSeconds     int
	IdleTableMinutes      int
	IdleWorkerPollSeconds int
	MaxTables             int

	// Security
	JWTSecret          string
	OperatorTokenHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Tables
		TableLayout:           getEnv("TABLE_LAYOUT", ""),
		TickMillis:            getEnvInt("TICK_MILLIS", 16),
		SnapshotEveryFrames:   getEnvInt("SNAPSHOT_EVERY_FRAMES", 1),
		CheckpointSeconds:     getEnvInt("CHECKPOINT_SECONDS", 5),
		IdleTableMinutes:      getEnvInt("IDLE_TABLE_MINUTES", 10),
		IdleWorkerPollSeconds: getEnvInt("IDLE_WORKER_POLL_SECONDS", 30),
		MaxTables:             getEnvInt("MAX_TABLES", 64),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorTokenHours: getEnvPositiveInt("OPERATOR_TOKEN_HOURS", 12),
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvPositiveInt is getEnvInt that also rejects zero and negative values.
func getEnvPositiveInt(key string, defaultValue int) int {
	if v := getEnvInt(key, defaultValue); v > 0 {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
