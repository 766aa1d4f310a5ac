package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/models"
)

// sqliteStateRepository persists snapshots with plain SQL on the migrated schema
type sqliteStateRepository struct {
	db *sql.DB
}

// NewSQLiteStateRepository wraps a database opened with database.OpenSQLite
func NewSQLiteStateRepository(db *sql.DB) StateRepository {
	return &sqliteStateRepository{db: db}
}

func (r *sqliteStateRepository) Load(ctx context.Context) (models.AppState, bool, error) {
	if _, found, err := r.setting(ctx, StateKey); err != nil || !found {
		return models.AppState{}, false, err
	}

	state := models.EmptyState()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, phone, email, type, total_balance, last_updated FROM debtors ORDER BY seq`)
	if err != nil {
		return models.AppState{}, false, fmt.Errorf("query debtors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d models.Debtor
		var lastUpdated string
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.Type, &d.TotalBalance, &lastUpdated); err != nil {
			return models.AppState{}, false, fmt.Errorf("scan debtor: %w", err)
		}
		if d.LastUpdated, err = time.Parse(time.RFC3339Nano, lastUpdated); err != nil {
			return models.AppState{}, false, fmt.Errorf("debtor %s: bad last_updated: %w", d.ID, err)
		}
		state.Debtors = append(state.Debtors, d)
	}
	if err := rows.Err(); err != nil {
		return models.AppState{}, false, fmt.Errorf("iterate debtors: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx,
		`SELECT id, debtor_id, amount, date, type, note FROM transactions ORDER BY seq`)
	if err != nil {
		return models.AppState{}, false, fmt.Errorf("query transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var t models.Transaction
		if err := txRows.Scan(&t.ID, &t.DebtorID, &t.Amount, &t.Date, &t.Type, &t.Note); err != nil {
			return models.AppState{}, false, fmt.Errorf("scan transaction: %w", err)
		}
		state.Transactions = append(state.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return models.AppState{}, false, fmt.Errorf("iterate transactions: %w", err)
	}

	return state, true, nil
}

func (r *sqliteStateRepository) Save(ctx context.Context, state models.AppState) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM debtors`); err != nil {
		return fmt.Errorf("clear debtors: %w", err)
	}

	debtorStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO debtors (seq, id, name, phone, email, type, total_balance, last_updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare debtor insert: %w", err)
	}
	defer debtorStmt.Close()
	for i, d := range state.Debtors {
		if _, err = debtorStmt.ExecContext(ctx, i, d.ID, d.Name, d.Phone, d.Email, string(d.Type), d.TotalBalance,
			d.LastUpdated.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert debtor %s: %w", d.ID, err)
		}
	}

	txStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (seq, id, debtor_id, amount, date, type, note) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer txStmt.Close()
	for i, t := range state.Transactions {
		if _, err = txStmt.ExecContext(ctx, i, t.ID, t.DebtorID, t.Amount, t.Date.String(), string(t.Type), t.Note); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err = putSetting(ctx, tx, StateKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *sqliteStateRepository) LoadLoggedIn(ctx context.Context) (bool, error) {
	value, found, err := r.setting(ctx, LoggedInKey)
	if err != nil || !found {
		return false, err
	}
	loggedIn, _ := strconv.ParseBool(value)
	return loggedIn, nil
}

func (r *sqliteStateRepository) SaveLoggedIn(ctx context.Context, loggedIn bool) error {
	return putSetting(ctx, r.db, LoggedInKey, strconv.FormatBool(loggedIn))
}

func (r *sqliteStateRepository) Close() error {
	return r.db.Close()
}

func (r *sqliteStateRepository) setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putSetting(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
