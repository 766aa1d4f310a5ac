package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Auth modes
const (
	AuthModePassword = "password"
	AuthModeOpen     = "open"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string
	Timezone    string

	// Persistence
	StorageBackend string
	StoragePath    string
	DatabaseURL    string
	SQLiteDBPath   string
	SeedDemoData   bool

	// Auth
	AuthMode           string
	AuthUsername       string
	AuthPasswordHash   string
	JWTSecret          string
	JWTExpirationHours int

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// AI (Gemini)
	GeminiAPIKey string
	GeminiModel  string

	// Email (Resend)
	ResendAPIKey        string
	FromEmail           string
	BackupEmailTo       string
	BackupEmailInterval time.Duration

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Import
	ImportSessionTTL time.Duration

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		Timezone:                 getEnv("TIMEZONE", "Asia/Ho_Chi_Minh"),
		StorageBackend:           strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		StoragePath:              getEnv("STORAGE_PATH", "./storage"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		SQLiteDBPath:             getEnv("SQLITE_DB_PATH", "./data/smartdebt.db"),
		SeedDemoData:             getEnvAsBool("SEED_DEMO_DATA", true),
		AuthMode:                 strings.ToLower(getEnv("AUTH_MODE", AuthModePassword)),
		AuthUsername:             getEnv("AUTH_USERNAME", "admin"),
		AuthPasswordHash:         getEnv("AUTH_PASSWORD_HASH", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTExpirationHours:       getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		WorkerCount:              getEnvAsInt("WORKER_COUNT", 2),
		AllowedOrigins:           getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		GeminiAPIKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModel:              getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		FromEmail:                getEnv("FROM_EMAIL", "noreply@smartdebt.app"),
		BackupEmailTo:            getEnv("BACKUP_EMAIL_TO", ""),
		BackupEmailInterval:      getEnvAsDuration("BACKUP_EMAIL_INTERVAL", 0),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Công nợ"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		ImportSessionTTL:         getEnvAsDuration("IMPORT_SESSION_TTL", 15*time.Minute),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFile:
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the file backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLITE_DB_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be one of [%s %s %s]", c.StorageBackend, BackendFile, BackendPostgres, BackendSQLite)
	}

	switch c.AuthMode {
	case AuthModePassword:
		if c.AuthPasswordHash == "" && c.IsProduction() {
			return fmt.Errorf("AUTH_PASSWORD_HASH is required in production")
		}
	case AuthModeOpen:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=open is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q: must be %s or %s", c.AuthMode, AuthModePassword, AuthModeOpen)
	}

	if c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.BackupEmailInterval < 0 {
		return fmt.Errorf("BACKUP_EMAIL_INTERVAL must not be negative")
	}
	if c.ImportSessionTTL <= 0 {
		return fmt.Errorf("IMPORT_SESSION_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location resolves Timezone, falling back to UTC+7 when the tz database is unavailable
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// SheetsEnabled reports whether Google Sheets export is configured
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "")
}

// getEnv reads an environment variable or returns a default value. Empty counts as unset.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("168h") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
