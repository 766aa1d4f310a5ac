package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SEED_DEMO_DATA", "")
	t.Setenv("IMPORT_SESSION_TTL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, AuthModePassword, cfg.AuthMode)
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.ImportSessionTTL)
	assert.True(t, cfg.SeedDemoData)
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("AUTH_MODE", "open")
	t.Setenv("SQLITE_DB_PATH", "/tmp/x.db")
	t.Setenv("SEED_DEMO_DATA", "false")
	t.Setenv("BACKUP_EMAIL_INTERVAL", "168h")
	t.Setenv("IMPORT_SESSION_TTL", "60")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "{}")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, AuthModeOpen, cfg.AuthMode)
	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, 168*time.Hour, cfg.BackupEmailInterval)
	assert.Equal(t, time.Minute, cfg.ImportSessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SheetsEnabled())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Environment:      "production",
			StorageBackend:   BackendFile,
			StoragePath:      "./storage",
			AuthMode:         AuthModePassword,
			AuthPasswordHash: "$2a$10$hash",
			JWTSecret:        "secret",
			WorkerCount:      1,
			ImportSessionTTL: time.Minute,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid production", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.StorageBackend = "redis" }, wantErr: "invalid STORAGE_BACKEND"},
		{name: "postgres without url", mutate: func(c *Config) { c.StorageBackend = BackendPostgres }, wantErr: "DATABASE_URL"},
		{name: "open auth in production", mutate: func(c *Config) { c.AuthMode = AuthModeOpen }, wantErr: "AUTH_MODE=open"},
		{name: "missing password hash in production", mutate: func(c *Config) { c.AuthPasswordHash = "" }, wantErr: "AUTH_PASSWORD_HASH"},
		{name: "missing jwt secret in production", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "no workers", mutate: func(c *Config) { c.WorkerCount = 0 }, wantErr: "WORKER_COUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
