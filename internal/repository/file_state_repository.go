package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/storage"
)

// fileStateRepository keeps the snapshot as a JSON document and the login flag as a tiny text file
type fileStateRepository struct {
	store *storage.LocalStorage
}

// NewFileStateRepository creates a repository writing under the storage directory
func NewFileStateRepository(store *storage.LocalStorage) StateRepository {
	return &fileStateRepository{store: store}
}

func stateFile() string { return StateKey + ".json" }

func (r *fileStateRepository) Load(ctx context.Context) (models.AppState, bool, error) {
	data, found, err := r.store.Read(stateFile())
	if err != nil || !found {
		return models.AppState{}, false, err
	}
	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.AppState{}, false, fmt.Errorf("decode %s: %w", stateFile(), err)
	}
	return normalize(state), true, nil
}

func (r *fileStateRepository) Save(ctx context.Context, state models.AppState) error {
	data, err := json.Marshal(normalize(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return r.store.WriteAtomic(stateFile(), data)
}

func (r *fileStateRepository) LoadLoggedIn(ctx context.Context) (bool, error) {
	data, found, err := r.store.Read(LoggedInKey)
	if err != nil || !found {
		return false, err
	}
	loggedIn, err := strconv.ParseBool(strings.TrimSpace(string(data)))
	if err != nil {
		return false, nil
	}
	return loggedIn, nil
}

func (r *fileStateRepository) SaveLoggedIn(ctx context.Context, loggedIn bool) error {
	return r.store.WriteAtomic(LoggedInKey, []byte(strconv.FormatBool(loggedIn)))
}

func (r *fileStateRepository) Close() error { return nil }
