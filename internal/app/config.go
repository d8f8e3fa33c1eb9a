package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	SecretKey string // Session cookie signing key; empty generates a random one
	BaseURL   string // Public base URL used in reset links (default: http://localhost:{Port})

	StoreDriver string // sqlite or postgres (default: sqlite)
	SQLiteFile  string // SQLite database file (default: ./acadshare.db)
	DatabaseURL string // Postgres connection string; overrides discrete DB_* settings

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	FileBackend    string // disk or blob (default: disk)
	UploadDir      string // attachment directory for the disk backend (default: ./uploads)
	MaxUploadBytes int64  // upload size cap (default: 16 MiB)

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		SecretKey: os.Getenv("SECRET_KEY"),
		BaseURL:   os.Getenv("BASE_URL"),

		StoreDriver: getEnvOrDefault("STORE_DRIVER", "sqlite"),
		SQLiteFile:  getEnvOrDefault("SQLITE_FILE", "acadshare.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		DBHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:     getEnvIntOrDefault("DB_PORT", 5432),
		DBUser:     getEnvOrDefault("DB_USER", "acadshare"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnvOrDefault("DB_NAME", "acadshare"),
		DBSSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),

		FileBackend:    getEnvOrDefault("FILE_BACKEND", "disk"),
		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 16<<20),

		SMTPHost:     getEnvOrDefault("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@acadshare.local"),

		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	return cfg
}

// PostgresDSN returns the connection string for the postgres driver,
// preferring DATABASE_URL when set.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// SQLiteDSN returns the sqlite connection string with the busy timeout and
// WAL journaling applied.
func (c Config) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", c.SQLiteFile)
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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

	return defaultValue
}
