// Package ledger holds the state-management core of the debt ledger.
//
// Every operation takes an immutable models.AppState snapshot and returns a new one;
// the input is never modified, and a rejected operation returns the input unchanged
// together with a *ValidationError, *ReferenceError or *SchemaError.
//
// A debtor's TotalBalance is maintained incrementally by RecordTransaction, which is the
// only path (besides ReplaceState) that changes it. RecomputeBalances and Verify exist to
// check that invariant, not to drive normal operation.
package ledger

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/smartdebt-api/internal/models"
)

// NewDebtor is the input of CreateDebtor
type NewDebtor struct {
	Name  string
	Phone string
	Email string
	Type  models.DebtorType
}

// NewTransaction is the input of RecordTransaction
type NewTransaction struct {
	DebtorID string
	Amount   int64
	Type     models.TransactionType
	Date     models.LedgerDate
	Note     string
}

// Engine carries the clock and id generator used by the operations.
// The zero value is not usable; call New.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

// New returns an engine using the wall clock and random UUIDs
func New() *Engine {
	return &Engine{Now: time.Now, NewID: uuid.NewString}
}

var defaultEngine = New()

// CreateDebtor appends a debtor with a zero balance and returns its id
func CreateDebtor(in NewDebtor, s models.AppState) (models.AppState, string, error) {
	return defaultEngine.CreateDebtor(in, s)
}

// DeleteDebtor removes a debtor and all of its transactions
func DeleteDebtor(id string, s models.AppState) models.AppState {
	return defaultEngine.DeleteDebtor(id, s)
}

// RecordTransaction appends a transaction and updates its debtor's balance
func RecordTransaction(in NewTransaction, s models.AppState) (models.AppState, string, error) {
	return defaultEngine.RecordTransaction(in, s)
}

// CreateDebtor appends a debtor with a zero balance and returns its id
func (e *Engine) CreateDebtor(in NewDebtor, s models.AppState) (models.AppState, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return s, "", &ValidationError{Field: "name", Message: "Vui lòng nhập tên đối tác"}
	}
	if !in.Type.Valid() {
		return s, "", &ValidationError{Field: "type", Message: "Loại đối tác không hợp lệ"}
	}

	id := e.allocateID(func(id string) bool { return s.DebtorIndex(id) >= 0 })

	next := s.Clone()
	next.Debtors = append(next.Debtors, models.Debtor{
		ID:           id,
		Name:         name,
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Type:         in.Type,
		TotalBalance: 0,
		LastUpdated:  e.Now(),
	})
	return next, id, nil
}

// DeleteDebtor removes the debtor with the given id and cascades to its transactions.
// Deleting an unknown id returns an equal snapshot.
func (e *Engine) DeleteDebtor(id string, s models.AppState) models.AppState {
	next := models.AppState{
		Debtors:      make([]models.Debtor, 0, len(s.Debtors)),
		Transactions: make([]models.Transaction, 0, len(s.Transactions)),
	}
	for _, d := range s.Debtors {
		if d.ID != id {
			next.Debtors = append(next.Debtors, d)
		}
	}
	for _, t := range s.Transactions {
		if t.DebtorID != id {
			next.Transactions = append(next.Transactions, t)
		}
	}
	return next
}

// RecordTransaction appends the transaction at the end of the ledger and applies its
// effect to the referenced debtor. A zero Date defaults to today's calendar date.
func (e *Engine) RecordTransaction(in NewTransaction, s models.AppState) (models.AppState, string, error) {
	idx := s.DebtorIndex(in.DebtorID)
	if idx < 0 {
		return s, "", &ReferenceError{Entity: "đối tác", ID: in.DebtorID}
	}
	if in.Amount <= 0 {
		return s, "", &ValidationError{Field: "amount", Message: "Vui lòng nhập số tiền lớn hơn 0"}
	}
	if !in.Type.Valid() {
		return s, "", &ValidationError{Field: "type", Message: "Loại giao dịch không hợp lệ"}
	}

	tx := models.Transaction{
		DebtorID: in.DebtorID,
		Amount:   in.Amount,
		Type:     in.Type,
		Date:     in.Date,
		Note:     in.Note,
	}
	balance, ok := addBalance(s.Debtors[idx].TotalBalance, tx.Effect())
	if !ok {
		return s, "", &ValidationError{Field: "amount", Message: "Số tiền vượt quá giới hạn cho phép"}
	}

	now := e.Now()
	if tx.Date.IsZero() {
		y, m, d := now.Date()
		tx.Date = models.NewCalendarDate(y, m, d)
	}
	tx.ID = e.allocateID(s.HasTransaction)

	next := s.Clone()
	next.Debtors[idx].TotalBalance = balance
	next.Debtors[idx].LastUpdated = now
	next.Transactions = append(next.Transactions, tx)
	return next, tx.ID, nil
}

// allocateID draws ids until one is not taken. With 122 random bits a retry never
// happens in practice; the loop keeps the uniqueness guarantee unconditional.
func (e *Engine) allocateID(taken func(string) bool) string {
	for {
		id := e.NewID()
		if id != "" && !taken(id) {
			return id
		}
	}
}

func addBalance(balance, delta int64) (int64, bool) {
	if delta > 0 && balance > math.MaxInt64-delta {
		return 0, false
	}
	if delta < 0 && balance < math.MinInt64-delta {
		return 0, false
	}
	return balance + delta, true
}
