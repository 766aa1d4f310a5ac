package ledger

import (
	"strings"

	"github.com/sjperalta/smartdebt-api/internal/models"
)

// BalanceMismatch is a debtor whose cached balance disagrees with its transactions
type BalanceMismatch struct {
	DebtorID string `json:"debtorId"`
	Name     string `json:"name"`
	Stored   int64  `json:"stored"`
	Computed int64  `json:"computed"`
}

// Report lists every inconsistency found in a snapshot. It is informational:
// nothing here is repaired automatically.
type Report struct {
	Mismatches              []BalanceMismatch `json:"mismatches"`
	DanglingTransactions    []string          `json:"danglingTransactions"`
	DuplicateDebtorIDs      []string          `json:"duplicateDebtorIds"`
	DuplicateTransactionIDs []string          `json:"duplicateTransactionIds"`
	InvalidAmounts          []string          `json:"invalidAmounts"`
	InvalidDebtorTypes      []string          `json:"invalidDebtorTypes"`
	InvalidTransactionTypes []string          `json:"invalidTransactionTypes"`
}

// Consistent reports whether no problem was found
func (r Report) Consistent() bool {
	return len(r.Mismatches) == 0 &&
		len(r.DanglingTransactions) == 0 &&
		len(r.DuplicateDebtorIDs) == 0 &&
		len(r.DuplicateTransactionIDs) == 0 &&
		len(r.InvalidAmounts) == 0 &&
		len(r.InvalidDebtorTypes) == 0 &&
		len(r.InvalidTransactionTypes) == 0
}

// Storable returns a SchemaError when the snapshot cannot be persisted as is: ids must be
// unique and every type must be a known value. Balance and reference problems are not checked.
func (r Report) Storable() error {
	var reasons []string
	if len(r.DuplicateDebtorIDs) > 0 {
		reasons = append(reasons, "trùng mã đối tác "+strings.Join(r.DuplicateDebtorIDs, ", "))
	}
	if len(r.DuplicateTransactionIDs) > 0 {
		reasons = append(reasons, "trùng mã giao dịch "+strings.Join(r.DuplicateTransactionIDs, ", "))
	}
	if len(r.InvalidDebtorTypes) > 0 {
		reasons = append(reasons, "loại đối tác không hợp lệ ở "+strings.Join(r.InvalidDebtorTypes, ", "))
	}
	if len(r.InvalidTransactionTypes) > 0 {
		reasons = append(reasons, "loại giao dịch không hợp lệ ở "+strings.Join(r.InvalidTransactionTypes, ", "))
	}
	if len(reasons) == 0 {
		return nil
	}
	return &SchemaError{Reason: strings.Join(reasons, "; ")}
}

// RecomputeBalances sums signed transaction effects per debtor from scratch.
// Every debtor in s gets an entry; transactions of unknown debtors are ignored.
func RecomputeBalances(s models.AppState) map[string]int64 {
	out := make(map[string]int64, len(s.Debtors))
	for _, d := range s.Debtors {
		out[d.ID] = 0
	}
	for i := range s.Transactions {
		t := &s.Transactions[i]
		if _, ok := out[t.DebtorID]; ok {
			out[t.DebtorID] += t.Effect()
		}
	}
	return out
}

// Verify checks balance integrity, referential integrity, id uniqueness and enum values
func Verify(s models.AppState) Report {
	var r Report
	computed := RecomputeBalances(s)

	seenDebtors := make(map[string]bool, len(s.Debtors))
	for _, d := range s.Debtors {
		if seenDebtors[d.ID] {
			r.DuplicateDebtorIDs = append(r.DuplicateDebtorIDs, d.ID)
			continue
		}
		seenDebtors[d.ID] = true
		if !d.Type.Valid() {
			r.InvalidDebtorTypes = append(r.InvalidDebtorTypes, d.ID)
		}
		if c := computed[d.ID]; c != d.TotalBalance {
			r.Mismatches = append(r.Mismatches, BalanceMismatch{
				DebtorID: d.ID,
				Name:     d.Name,
				Stored:   d.TotalBalance,
				Computed: c,
			})
		}
	}

	seenTx := make(map[string]bool, len(s.Transactions))
	for _, t := range s.Transactions {
		if seenTx[t.ID] {
			r.DuplicateTransactionIDs = append(r.DuplicateTransactionIDs, t.ID)
		}
		seenTx[t.ID] = true
		if !seenDebtors[t.DebtorID] {
			r.DanglingTransactions = append(r.DanglingTransactions, t.ID)
		}
		if t.Amount <= 0 {
			r.InvalidAmounts = append(r.InvalidAmounts, t.ID)
		}
		if !t.Type.Valid() {
			r.InvalidTransactionTypes = append(r.InvalidTransactionTypes, t.ID)
		}
	}
	return r
}
