package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/sjperalta/smartdebt-api/internal/statemachine"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

// StagedImport is what the user sees before confirming a backup restore
type StagedImport struct {
	Session *models.ImportSession `json:"session"`
	Report  ledger.Report         `json:"report"`
	Warning string                `json:"warning"`
}

const replaceWarning = "Dữ liệu hiện tại sẽ bị thay thế hoàn toàn. Bạn có chắc chắn?"

// ImportService stages uploaded backups and applies them only after confirmation
type ImportService struct {
	ledger *LedgerService
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*models.ImportSession
}

// NewImportService creates the service; staged sessions expire after ttl
func NewImportService(ledgerSvc *LedgerService, ttl time.Duration) *ImportService {
	return &ImportService{
		ledger:   ledgerSvc,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*models.ImportSession),
	}
}

// Stage validates the file shape and reports inconsistencies without touching the current state
func (s *ImportService) Stage(ctx context.Context, fileName string, data []byte) (*StagedImport, error) {
	candidate, err := ledger.DecodeCandidate(data)
	if err != nil {
		return nil, err
	}
	state, err := ledger.ReplaceState(candidate)
	if err != nil {
		return nil, err
	}
	report := ledger.Verify(state)
	// Duplicate ids and unknown types would be rejected by the database backends on every later save
	if err := report.Storable(); err != nil {
		logger.Warn("Import rejected", "file", fileName, "error", err)
		return nil, err
	}

	now := s.now()
	session := &models.ImportSession{
		ID:               uuid.NewString(),
		Status:           models.ImportStatusStaged,
		FileName:         fileName,
		DebtorCount:      len(state.Debtors),
		TransactionCount: len(state.Transactions),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.ttl),
		Candidate:        state,
	}

	s.mu.Lock()
	s.purgeLocked(now)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	logger.Info("Import staged",
		"import_id", session.ID,
		"debtors", session.DebtorCount,
		"transactions", session.TransactionCount,
		"consistent", report.Consistent())

	view := *session
	return &StagedImport{Session: &view, Report: report, Warning: replaceWarning}, nil
}

// Confirm replaces the current state with the staged candidate
func (s *ImportService) Confirm(ctx context.Context, id string) (*models.ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	f := statemachine.NewImportFSM(session)
	err := f.Confirm(ctx, s.now(), func() error {
		return s.ledger.Replace(ctx, ledger.CandidateFrom(session.Candidate))
	})
	if err != nil {
		if errors.Is(err, statemachine.ErrTransition) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, err
	}
	session.Candidate = models.AppState{}
	logger.Info("Import applied", "import_id", id)

	view := *session
	return &view, nil
}

// Cancel discards a staged import
func (s *ImportService) Cancel(ctx context.Context, id string) (*models.ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := statemachine.NewImportFSM(session).Discard(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	logger.Info("Import discarded", "import_id", id)

	view := *session
	return &view, nil
}

// Get returns a session, expiring it first when its window has passed
func (s *ImportService) Get(ctx context.Context, id string) (*models.ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if session.Status == models.ImportStatusStaged && session.IsExpired(s.now()) {
		_ = statemachine.NewImportFSM(session).Expire(ctx)
	}
	view := *session
	return &view, nil
}

// purgeLocked forgets finished sessions older than one ttl past their expiry
func (s *ImportService) purgeLocked(now time.Time) {
	for id, session := range s.sessions {
		if now.Sub(session.ExpiresAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
