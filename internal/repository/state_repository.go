package repository

import (
	"context"

	"github.com/sjperalta/smartdebt-api/internal/models"
)

// Storage keys shared by every backend
const (
	StateKey    = "smartdebt_state"
	LoggedInKey = "smartdebt_logged_in"
)

// StateRepository persists the whole ledger snapshot and the login flag.
// Save replaces whatever was stored before; there is no merge.
type StateRepository interface {
	// Load returns found=false when nothing was ever saved
	Load(ctx context.Context) (state models.AppState, found bool, err error)
	Save(ctx context.Context, state models.AppState) error
	LoadLoggedIn(ctx context.Context) (bool, error)
	SaveLoggedIn(ctx context.Context, loggedIn bool) error
	Close() error
}

func normalize(s models.AppState) models.AppState {
	if s.Debtors == nil {
		s.Debtors = []models.Debtor{}
	}
	if s.Transactions == nil {
		s.Transactions = []models.Transaction{}
	}
	return s
}
