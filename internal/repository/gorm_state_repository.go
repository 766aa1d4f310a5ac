package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// debtorRecord stores a debtor with its position in the snapshot
type debtorRecord struct {
	Seq           int `gorm:"not null;index"`
	models.Debtor `gorm:"embedded"`
}

func (debtorRecord) TableName() string { return "debtors" }

// transactionRecord stores a transaction with its insertion position
type transactionRecord struct {
	Seq                int `gorm:"not null;index"`
	models.Transaction `gorm:"embedded"`
}

func (transactionRecord) TableName() string { return "transactions" }

// settingRecord is a key/value row in app_settings
type settingRecord struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (settingRecord) TableName() string { return "app_settings" }

const saveBatchSize = 500

// gormStateRepository persists snapshots into PostgreSQL tables
type gormStateRepository struct {
	db *gorm.DB
}

// NewGormStateRepository creates a repository on an open gorm connection
func NewGormStateRepository(db *gorm.DB) StateRepository {
	return &gormStateRepository{db: db}
}

// AutoMigrate creates or updates the ledger tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&debtorRecord{}, &transactionRecord{}, &settingRecord{})
}

func (r *gormStateRepository) Load(ctx context.Context) (models.AppState, bool, error) {
	var marker settingRecord
	err := r.db.WithContext(ctx).Where("key = ?", StateKey).First(&marker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AppState{}, false, nil
	}
	if err != nil {
		return models.AppState{}, false, fmt.Errorf("load state marker: %w", err)
	}

	var debtors []debtorRecord
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&debtors).Error; err != nil {
		return models.AppState{}, false, fmt.Errorf("load debtors: %w", err)
	}
	var transactions []transactionRecord
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&transactions).Error; err != nil {
		return models.AppState{}, false, fmt.Errorf("load transactions: %w", err)
	}

	state := models.AppState{
		Debtors:      make([]models.Debtor, len(debtors)),
		Transactions: make([]models.Transaction, len(transactions)),
	}
	for i, d := range debtors {
		state.Debtors[i] = d.Debtor
	}
	for i, t := range transactions {
		state.Transactions[i] = t.Transaction
	}
	return state, true, nil
}

// Save replaces both tables inside one database transaction
func (r *gormStateRepository) Save(ctx context.Context, state models.AppState) error {
	state = normalize(state)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&transactionRecord{}).Error; err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&debtorRecord{}).Error; err != nil {
			return fmt.Errorf("clear debtors: %w", err)
		}

		if len(state.Debtors) > 0 {
			rows := make([]debtorRecord, len(state.Debtors))
			for i, d := range state.Debtors {
				rows[i] = debtorRecord{Seq: i, Debtor: d}
			}
			if err := tx.CreateInBatches(rows, saveBatchSize).Error; err != nil {
				return fmt.Errorf("insert debtors: %w", err)
			}
		}
		if len(state.Transactions) > 0 {
			rows := make([]transactionRecord, len(state.Transactions))
			for i, t := range state.Transactions {
				rows[i] = transactionRecord{Seq: i, Transaction: t}
			}
			if err := tx.CreateInBatches(rows, saveBatchSize).Error; err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
		}

		return upsertSetting(tx, StateKey, time.Now().UTC().Format(time.RFC3339))
	})
}

func (r *gormStateRepository) LoadLoggedIn(ctx context.Context) (bool, error) {
	var setting settingRecord
	err := r.db.WithContext(ctx).Where("key = ?", LoggedInKey).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load login flag: %w", err)
	}
	loggedIn, _ := strconv.ParseBool(setting.Value)
	return loggedIn, nil
}

func (r *gormStateRepository) SaveLoggedIn(ctx context.Context, loggedIn bool) error {
	return upsertSetting(r.db.WithContext(ctx), LoggedInKey, strconv.FormatBool(loggedIn))
}

func (r *gormStateRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func upsertSetting(db *gorm.DB, key, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&settingRecord{Key: key, Value: value, UpdatedAt: time.Now()}).Error
}
