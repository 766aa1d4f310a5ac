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
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type memStateRepo struct {
	repository.StateRepository
	mu       sync.Mutex
	state    *models.AppState
	loggedIn bool
	saves    int
	saveErr  error
}

func (m *memStateRepo) Load(ctx context.Context) (models.AppState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return models.AppState{}, false, nil
	}
	return m.state.Clone(), true, nil
}

func (m *memStateRepo) Save(ctx context.Context, s models.AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c := s.Clone()
	m.state = &c
	m.saves++
	return nil
}

func (m *memStateRepo) LoadLoggedIn(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn, nil
}

func (m *memStateRepo) SaveLoggedIn(ctx context.Context, v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = v
	return nil
}

func (m *memStateRepo) saved() (models.AppState, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return models.AppState{}, m.saves
	}
	return m.state.Clone(), m.saves
}

// syncQueue runs jobs inline so saves are observable right after a mutation
type syncQueue struct {
	names []string
}

func (q *syncQueue) Enqueue(name string, job jobs.Job) {
	q.names = append(q.names, name)
	_ = job(context.Background())
}

type recordingObserver struct {
	ops  []string
	errs []error
}

func (o *recordingObserver) ObserveOperation(op string, err error) {
	o.ops = append(o.ops, op)
	o.errs = append(o.errs, err)
}

func newTestEngine() *ledger.Engine {
	n := 0
	return &ledger.Engine{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

// newTestLedger returns a ledger service started from the demo data
func newTestLedger() (*LedgerService, *memStateRepo, *syncQueue) {
	repo := &memStateRepo{}
	queue := &syncQueue{}
	svc := NewLedgerService(repo, queue, newTestEngine())
	if err := svc.Init(context.Background(), true); err != nil {
		panic(err)
	}
	return svc, repo, queue
}

var errBoom = errors.New("boom")
