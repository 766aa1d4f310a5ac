package models

import (
	"time"
)

// AppState is the aggregate root: every debtor and every transaction, in insertion order.
// It is the unit of persistence and of import/export.
type AppState struct {
	Debtors      []Debtor      `json:"debtors"`
	Transactions []Transaction `json:"transactions"`
}

// EmptyState returns a state with no debtors and no transactions
func EmptyState() AppState {
	return AppState{Debtors: []Debtor{}, Transactions: []Transaction{}}
}

// Clone returns a copy that shares no backing arrays with s
func (s AppState) Clone() AppState {
	out := AppState{
		Debtors:      make([]Debtor, len(s.Debtors)),
		Transactions: make([]Transaction, len(s.Transactions)),
	}
	copy(out.Debtors, s.Debtors)
	copy(out.Transactions, s.Transactions)
	return out
}

// DebtorIndex returns the position of the debtor with the given id, or -1
func (s AppState) DebtorIndex(id string) int {
	for i := range s.Debtors {
		if s.Debtors[i].ID == id {
			return i
		}
	}
	return -1
}

// FindDebtor returns the debtor with the given id
func (s AppState) FindDebtor(id string) (Debtor, bool) {
	if i := s.DebtorIndex(id); i >= 0 {
		return s.Debtors[i], true
	}
	return Debtor{}, false
}

// HasTransaction reports whether a transaction with the given id exists
func (s AppState) HasTransaction(id string) bool {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return true
		}
	}
	return false
}

// TransactionsFor returns the debtor's transactions in insertion order
func (s AppState) TransactionsFor(debtorID string) []Transaction {
	var out []Transaction
	for _, t := range s.Transactions {
		if t.DebtorID == debtorID {
			out = append(out, t)
		}
	}
	return out
}

// SeedState is the demo data a fresh installation starts with
func SeedState(now time.Time) AppState {
	return AppState{
		Debtors: []Debtor{
			{ID: "1", Name: "Nguyễn Văn A", Phone: "0901234567", Type: DebtorTypeCustomer, TotalBalance: 5000000, LastUpdated: now},
			{ID: "2", Name: "Công ty TNHH MTV X", Phone: "0283888888", Type: DebtorTypeSupplier, TotalBalance: 12000000, LastUpdated: now},
		},
		Transactions: []Transaction{
			{ID: "t1", DebtorID: "1", Amount: 5000000, Date: NewLedgerDate(now), Type: TransactionTypeIncrease, Note: "Bán hàng đợt 1"},
			{ID: "t2", DebtorID: "2", Amount: 12000000, Date: NewLedgerDate(now), Type: TransactionTypeIncrease, Note: "Nhập hàng đầu kỳ"},
		},
	}
}
