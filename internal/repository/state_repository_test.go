package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/database"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRepo(t *testing.T) StateRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewFileStateRepository(store)
}

func newSQLiteRepo(t *testing.T) StateRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "nested", "smartdebt.db"))
	require.NoError(t, err)
	repo := NewSQLiteStateRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleState() models.AppState {
	now := time.Date(2024, 5, 10, 8, 15, 30, 123000000, time.UTC)
	s := models.SeedState(now)
	s.Debtors[0].Email = "a@example.com"
	s.Transactions = append(s.Transactions, models.Transaction{
		ID: "t3", DebtorID: "1", Amount: 2000000, Type: models.TransactionTypeDecrease,
		Date: models.NewCalendarDate(2024, time.May, 11), Note: "Thu tiền mặt",
	})
	s.Debtors[0].TotalBalance = 3000000
	return s
}

func assertSameState(t *testing.T, want, got models.AppState) {
	t.Helper()
	require.Len(t, got.Debtors, len(want.Debtors))
	require.Len(t, got.Transactions, len(want.Transactions))
	for i := range want.Debtors {
		w, g := want.Debtors[i], got.Debtors[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Name, g.Name)
		assert.Equal(t, w.Phone, g.Phone)
		assert.Equal(t, w.Email, g.Email)
		assert.Equal(t, w.Type, g.Type)
		assert.Equal(t, w.TotalBalance, g.TotalBalance)
		assert.True(t, w.LastUpdated.Equal(g.LastUpdated), "lastUpdated of %s", w.ID)
	}
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.DebtorID, g.DebtorID)
		assert.Equal(t, w.Amount, g.Amount)
		assert.Equal(t, w.Type, g.Type)
		assert.Equal(t, w.Note, g.Note)
		assert.True(t, w.Date.Equal(g.Date), "date of %s", w.ID)
	}
}

func TestStateRepositories(t *testing.T) {
	backends := map[string]func(t *testing.T) StateRepository{
		"file":   newFileRepo,
		"sqlite": newSQLiteRepo,
	}

	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("absent state", func(t *testing.T) {
				repo := newRepo(t)
				_, found, err := repo.Load(ctx)
				require.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("round trip keeps order and date forms", func(t *testing.T) {
				repo := newRepo(t)
				want := sampleState()
				require.NoError(t, repo.Save(ctx, want))

				got, found, err := repo.Load(ctx)
				require.NoError(t, err)
				require.True(t, found)
				assertSameState(t, want, got)
			})

			t.Run("empty state is distinct from absent", func(t *testing.T) {
				repo := newRepo(t)
				require.NoError(t, repo.Save(ctx, models.AppState{}))

				got, found, err := repo.Load(ctx)
				require.NoError(t, err)
				assert.True(t, found)
				assert.NotNil(t, got.Debtors)
				assert.Empty(t, got.Debtors)
				assert.Empty(t, got.Transactions)
			})

			t.Run("save replaces previous snapshot", func(t *testing.T) {
				repo := newRepo(t)
				require.NoError(t, repo.Save(ctx, sampleState()))

				smaller := models.AppState{
					Debtors:      []models.Debtor{{ID: "z", Name: "Z", Type: models.DebtorTypeSupplier, LastUpdated: time.Unix(0, 0).UTC()}},
					Transactions: []models.Transaction{},
				}
				require.NoError(t, repo.Save(ctx, smaller))

				got, _, err := repo.Load(ctx)
				require.NoError(t, err)
				assertSameState(t, smaller, got)
			})

			t.Run("duplicate ids", func(t *testing.T) {
				repo := newRepo(t)
				want := sampleState()
				require.NoError(t, repo.Save(ctx, want))

				dup := sampleState()
				dup.Debtors = append(dup.Debtors, dup.Debtors[0])
				err := repo.Save(ctx, dup)
				if name == "file" {
					// the JSON document has no key constraint
					require.NoError(t, err)
					return
				}
				require.Error(t, err)

				got, found, err := repo.Load(ctx)
				require.NoError(t, err)
				require.True(t, found)
				assertSameState(t, want, got)
			})

			t.Run("login flag", func(t *testing.T) {
				repo := newRepo(t)
				loggedIn, err := repo.LoadLoggedIn(ctx)
				require.NoError(t, err)
				assert.False(t, loggedIn)

				require.NoError(t, repo.SaveLoggedIn(ctx, true))
				loggedIn, err = repo.LoadLoggedIn(ctx)
				require.NoError(t, err)
				assert.True(t, loggedIn)

				require.NoError(t, repo.SaveLoggedIn(ctx, false))
				loggedIn, err = repo.LoadLoggedIn(ctx)
				require.NoError(t, err)
				assert.False(t, loggedIn)
			})
		})
	}
}

func TestFileStateRepository_CorruptFile(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.WriteAtomic(StateKey+".json", []byte("{not json")))

	_, _, err = NewFileStateRepository(store).Load(context.Background())
	assert.Error(t, err)
}
