package repository

import (
	"fmt"

	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/internal/database"
	"github.com/sjperalta/smartdebt-api/internal/storage"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// NewStateRepository opens the backend selected by STORAGE_BACKEND
func NewStateRepository(cfg *config.Config) (StateRepository, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.Connect(cfg.DatabaseURL, database.PostgresOptions{
			LogStatements: !cfg.IsProduction() && cfg.LogLevel == "debug",
		})
		if err != nil {
			return nil, err
		}
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("State backend ready", "backend", cfg.StorageBackend)
		return NewGormStateRepository(db), nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("State backend ready", "backend", cfg.StorageBackend, "path", cfg.SQLiteDBPath)
		return NewSQLiteStateRepository(db), nil

	case config.BackendFile, "":
		store, err := storage.NewLocalStorage(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		logger.Info("State backend ready", "backend", config.BackendFile, "path", cfg.StoragePath)
		return NewFileStateRepository(store), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
