package services

import (
	"context"
	"sync"
	"testing"

	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_InitSeedsAndPersists(t *testing.T) {
	svc, repo, queue := newTestLedger()

	snap := svc.Snapshot()
	assert.Len(t, snap.Debtors, 2)
	assert.Len(t, snap.Transactions, 2)

	saved, saves := repo.saved()
	assert.Equal(t, 1, saves)
	assert.Equal(t, snap, saved)
	assert.Equal(t, []string{"save_state"}, queue.names)
}

func TestLedgerService_InitEmptyWithoutSeed(t *testing.T) {
	repo := &memStateRepo{}
	svc := NewLedgerService(repo, &syncQueue{}, newTestEngine())
	require.NoError(t, svc.Init(context.Background(), false))

	snap := svc.Snapshot()
	assert.Empty(t, snap.Debtors)
	assert.NotNil(t, snap.Debtors)

	_, saves := repo.saved()
	assert.Equal(t, 1, saves)
}

func TestLedgerService_InitKeepsSavedEmptyState(t *testing.T) {
	empty := models.EmptyState()
	repo := &memStateRepo{state: &empty}
	svc := NewLedgerService(repo, &syncQueue{}, newTestEngine())
	require.NoError(t, svc.Init(context.Background(), true))

	assert.Empty(t, svc.Snapshot().Debtors)
	_, saves := repo.saved()
	assert.Equal(t, 0, saves, "loading must not rewrite the store")
}

func TestLedgerService_RecordTransaction(t *testing.T) {
	svc, repo, _ := newTestLedger()
	obs := &recordingObserver{}
	svc.SetObserver(obs)

	tx, debtor, err := svc.RecordTransaction(context.Background(), ledger.NewTransaction{
		DebtorID: "1", Amount: 2000000, Type: models.TransactionTypeDecrease,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000000), debtor.TotalBalance)
	assert.Equal(t, "1", tx.DebtorID)

	saved, saves := repo.saved()
	assert.Equal(t, 2, saves)
	d, _ := saved.FindDebtor("1")
	assert.Equal(t, int64(3000000), d.TotalBalance)
	assert.Equal(t, []string{"record_transaction"}, obs.ops)
}

func TestLedgerService_RejectedMutationDoesNotSave(t *testing.T) {
	svc, repo, _ := newTestLedger()
	before := svc.Snapshot()

	_, _, err := svc.RecordTransaction(context.Background(), ledger.NewTransaction{
		DebtorID: "1", Amount: 0, Type: models.TransactionTypeIncrease,
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, _, err = svc.RecordTransaction(context.Background(), ledger.NewTransaction{
		DebtorID: "missing", Amount: 10, Type: models.TransactionTypeIncrease,
	})
	assert.ErrorIs(t, err, ledger.ErrReference)

	assert.Equal(t, before, svc.Snapshot())
	_, saves := repo.saved()
	assert.Equal(t, 1, saves)
}

func TestLedgerService_DeleteUnknownIsNoop(t *testing.T) {
	svc, repo, _ := newTestLedger()
	require.NoError(t, svc.DeleteDebtor(context.Background(), "nope"))
	_, saves := repo.saved()
	assert.Equal(t, 1, saves)

	require.NoError(t, svc.DeleteDebtor(context.Background(), "2"))
	snap := svc.Snapshot()
	assert.Len(t, snap.Debtors, 1)
	assert.Len(t, snap.Transactions, 1)
}

func TestLedgerService_RecordWithNewDebtorIsAtomic(t *testing.T) {
	svc, _, _ := newTestLedger()

	_, _, err := svc.RecordWithNewDebtor(context.Background(),
		ledger.NewDebtor{Name: "Chị Lan", Type: models.DebtorTypeCustomer},
		ledger.NewTransaction{Amount: -5, Type: models.TransactionTypeIncrease})
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Len(t, svc.Snapshot().Debtors, 2, "debtor must not be created when the entry is rejected")

	tx, d, err := svc.RecordWithNewDebtor(context.Background(),
		ledger.NewDebtor{Name: "Chị Lan", Type: models.DebtorTypeCustomer},
		ledger.NewTransaction{Amount: 700000, Type: models.TransactionTypeIncrease})
	require.NoError(t, err)
	assert.Equal(t, d.ID, tx.DebtorID)
	assert.Equal(t, int64(700000), d.TotalBalance)
	assert.Len(t, svc.Snapshot().Debtors, 3)
}

func TestLedgerService_SnapshotIsIndependent(t *testing.T) {
	svc, _, _ := newTestLedger()
	snap := svc.Snapshot()
	snap.Debtors[0].Name = "changed"
	assert.NotEqual(t, "changed", svc.Snapshot().Debtors[0].Name)
}

func TestLedgerService_SaveFailureIsNotSurfaced(t *testing.T) {
	svc, repo, _ := newTestLedger()
	repo.saveErr = errBoom

	_, err := svc.CreateDebtor(context.Background(), ledger.NewDebtor{Name: "A", Type: models.DebtorTypeSupplier})
	require.NoError(t, err)
	assert.Len(t, svc.Snapshot().Debtors, 3)

	repo.saveErr = nil
	require.NoError(t, svc.Flush(context.Background()))
	saved, _ := repo.saved()
	assert.Len(t, saved.Debtors, 3)
}

func TestLedgerService_ConcurrentWritersKeepBalances(t *testing.T) {
	svc, repo, _ := newTestLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RecordTransaction(context.Background(), ledger.NewTransaction{
				DebtorID: "1", Amount: 1000, Type: models.TransactionTypeIncrease,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap := svc.Snapshot()
	d, _ := snap.FindDebtor("1")
	assert.Equal(t, int64(5000000+50*1000), d.TotalBalance)
	assert.True(t, ledger.Verify(snap).Consistent())

	saved, _ := repo.saved()
	assert.Equal(t, snap, saved, "last write wins")
}

func TestLedgerService_Replace(t *testing.T) {
	svc, _, _ := newTestLedger()

	empty := models.EmptyState()
	require.NoError(t, svc.Replace(context.Background(), ledger.CandidateFrom(empty)))
	assert.Empty(t, svc.Snapshot().Debtors)

	err := svc.Replace(context.Background(), ledger.Candidate{})
	assert.ErrorIs(t, err, ledger.ErrSchema)
}
