package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/jobs"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/repository"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// JobQueue is the part of jobs.Worker the services need
type JobQueue interface {
	Enqueue(name string, job jobs.Job)
}

// OperationObserver receives the outcome of every ledger mutation
type OperationObserver interface {
	ObserveOperation(op string, err error)
}

// SizeObserver is optionally implemented by an OperationObserver to track snapshot size
type SizeObserver interface {
	SetSnapshotSize(debtors, transactions int)
}

// LedgerService owns the current snapshot. Every mutation runs the engine under a lock,
// swaps the snapshot wholesale and schedules a save; readers get an independent copy.
type LedgerService struct {
	repo     repository.StateRepository
	queue    JobQueue
	engine   *ledger.Engine
	observer OperationObserver

	mu      sync.RWMutex
	state   models.AppState
	version uint64

	saveMu       sync.Mutex
	savedVersion uint64
}

// NewLedgerService creates the service; call Init before serving requests
func NewLedgerService(repo repository.StateRepository, queue JobQueue, engine *ledger.Engine) *LedgerService {
	if engine == nil {
		engine = ledger.New()
	}
	return &LedgerService{
		repo:   repo,
		queue:  queue,
		engine: engine,
		state:  models.EmptyState(),
	}
}

// SetObserver installs a metrics hook
func (s *LedgerService) SetObserver(o OperationObserver) {
	s.observer = o
	if so, ok := o.(SizeObserver); ok {
		s.mu.RLock()
		so.SetSnapshotSize(len(s.state.Debtors), len(s.state.Transactions))
		s.mu.RUnlock()
	}
}

// Init loads the persisted snapshot. When nothing was ever saved it starts from the demo
// data (or empty when seed is false) and persists that immediately.
func (s *LedgerService) Init(ctx context.Context, seed bool) error {
	state, found, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	if found {
		s.state = state
		s.mu.Unlock()
		report := ledger.Verify(state)
		if !report.Consistent() {
			logger.Warn("Loaded state is inconsistent",
				"mismatches", len(report.Mismatches),
				"dangling_transactions", len(report.DanglingTransactions),
				"duplicate_ids", len(report.DuplicateDebtorIDs)+len(report.DuplicateTransactionIDs))
		}
		logger.Info("State loaded", "debtors", len(state.Debtors), "transactions", len(state.Transactions))
		return nil
	}

	if seed {
		s.state = models.SeedState(s.engine.Now())
	} else {
		s.state = models.EmptyState()
	}
	s.version++
	s.mu.Unlock()

	logger.Info("No saved state, starting fresh", "seeded", seed)
	s.scheduleSave()
	return nil
}

// Snapshot returns a copy of the current state
func (s *LedgerService) Snapshot() models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// CreateDebtor adds a counterparty with a zero balance
func (s *LedgerService) CreateDebtor(ctx context.Context, in ledger.NewDebtor) (models.Debtor, error) {
	var created models.Debtor
	err := s.apply("create_debtor", func(cur models.AppState) (models.AppState, error) {
		next, id, err := s.engine.CreateDebtor(in, cur)
		if err != nil {
			return cur, err
		}
		created, _ = next.FindDebtor(id)
		return next, nil
	})
	if err == nil {
		logger.Info("Debtor created", "debtor_id", created.ID, "type", created.Type)
	}
	return created, err
}

// DeleteDebtor removes a counterparty and its history. Unknown ids succeed without a save.
func (s *LedgerService) DeleteDebtor(ctx context.Context, id string) error {
	return s.apply("delete_debtor", func(cur models.AppState) (models.AppState, error) {
		if cur.DebtorIndex(id) < 0 {
			return cur, errUnchanged
		}
		next := s.engine.DeleteDebtor(id, cur)
		logger.Info("Debtor deleted", "debtor_id", id, "transactions_removed", len(cur.Transactions)-len(next.Transactions))
		return next, nil
	})
}

// RecordTransaction appends a ledger entry and returns it with the updated debtor
func (s *LedgerService) RecordTransaction(ctx context.Context, in ledger.NewTransaction) (models.Transaction, models.Debtor, error) {
	var tx models.Transaction
	var debtor models.Debtor
	err := s.apply("record_transaction", func(cur models.AppState) (models.AppState, error) {
		next, _, err := s.engine.RecordTransaction(in, cur)
		if err != nil {
			return cur, err
		}
		tx = next.Transactions[len(next.Transactions)-1]
		debtor, _ = next.FindDebtor(tx.DebtorID)
		return next, nil
	})
	return tx, debtor, err
}

// RecordWithNewDebtor creates a debtor and records its first transaction as one step;
// when the transaction is rejected the debtor is not created either.
func (s *LedgerService) RecordWithNewDebtor(ctx context.Context, nd ledger.NewDebtor, in ledger.NewTransaction) (models.Transaction, models.Debtor, error) {
	var tx models.Transaction
	var debtor models.Debtor
	err := s.apply("record_transaction_new_debtor", func(cur models.AppState) (models.AppState, error) {
		withDebtor, id, err := s.engine.CreateDebtor(nd, cur)
		if err != nil {
			return cur, err
		}
		in.DebtorID = id
		next, _, err := s.engine.RecordTransaction(in, withDebtor)
		if err != nil {
			return cur, err
		}
		tx = next.Transactions[len(next.Transactions)-1]
		debtor, _ = next.FindDebtor(id)
		return next, nil
	})
	return tx, debtor, err
}

// Replace swaps in a whole new state, typically from a confirmed import
func (s *LedgerService) Replace(ctx context.Context, c ledger.Candidate) error {
	return s.apply("replace_state", func(cur models.AppState) (models.AppState, error) {
		next, err := ledger.ReplaceState(c)
		if err != nil {
			return cur, err
		}
		logger.Info("State replaced", "debtors", len(next.Debtors), "transactions", len(next.Transactions))
		return next, nil
	})
}

// Flush writes the current snapshot synchronously if it has not been saved yet
func (s *LedgerService) Flush(ctx context.Context) error {
	return s.persist(ctx)
}

// errUnchanged lets a mutation report success without producing a new snapshot
var errUnchanged = errors.New("unchanged")

func (s *LedgerService) apply(op string, fn func(models.AppState) (models.AppState, error)) error {
	s.mu.Lock()
	next, err := fn(s.state)
	changed := false
	switch {
	case errors.Is(err, errUnchanged):
		err = nil
	case err == nil:
		s.state = next
		s.version++
		changed = true
	}
	debtors, transactions := len(s.state.Debtors), len(s.state.Transactions)
	s.mu.Unlock()

	if changed {
		s.scheduleSave()
	}

	if s.observer != nil {
		s.observer.ObserveOperation(op, err)
		if so, ok := s.observer.(SizeObserver); ok && changed {
			so.SetSnapshotSize(debtors, transactions)
		}
	}
	return err
}

// scheduleSave must be called without mu held; a full queue runs the job inline
func (s *LedgerService) scheduleSave() {
	if s.queue == nil {
		return
	}
	s.queue.Enqueue("save_state", func(ctx context.Context) error {
		return s.persist(ctx)
	})
}

// persist writes the newest snapshot. Saves are serialized and skipped when a later job
// already wrote an equal or newer version, so the stored state is always the last one.
func (s *LedgerService) persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	state, version := s.state, s.version
	s.mu.RUnlock()

	if version <= s.savedVersion {
		return nil
	}
	start := time.Now()
	if err := s.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("save state v%d: %w", version, err)
	}
	s.savedVersion = version
	logger.Debug("State saved", "version", version, "elapsed", time.Since(start))
	return nil
}
