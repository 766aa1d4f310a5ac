package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sjperalta/smartdebt-api/internal/models"
)

// Candidate is an untrusted full-state replacement, usually decoded from a backup file.
// A nil container means the key was missing from the source.
type Candidate struct {
	Debtors      *[]models.Debtor
	Transactions *[]models.Transaction
}

// CandidateFrom wraps an in-memory state as a complete candidate
func CandidateFrom(s models.AppState) Candidate {
	c := s.Clone()
	return Candidate{Debtors: &c.Debtors, Transactions: &c.Transactions}
}

// DecodeCandidate parses backup JSON. Both top-level keys must be present and hold arrays;
// element fields are decoded but not cross-checked.
func DecodeCandidate(data []byte) (Candidate, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Candidate{}, &SchemaError{Reason: "không phải đối tượng JSON"}
	}

	var c Candidate
	if raw, ok := top["debtors"]; ok && isArray(raw) {
		var debtors []models.Debtor
		if err := json.Unmarshal(raw, &debtors); err != nil {
			return Candidate{}, &SchemaError{Reason: fmt.Sprintf("debtors: %v", err)}
		}
		c.Debtors = &debtors
	}
	if raw, ok := top["transactions"]; ok && isArray(raw) {
		var transactions []models.Transaction
		if err := json.Unmarshal(raw, &transactions); err != nil {
			return Candidate{}, &SchemaError{Reason: fmt.Sprintf("transactions: %v", err)}
		}
		c.Transactions = &transactions
	}
	return c, nil
}

// ReplaceState accepts the candidate as the new authoritative state when it has both
// containers. Internal consistency is the importer's responsibility; see Verify.
func ReplaceState(c Candidate) (models.AppState, error) {
	switch {
	case c.Debtors == nil && c.Transactions == nil:
		return models.AppState{}, &SchemaError{Reason: "thiếu cả \"debtors\" và \"transactions\""}
	case c.Debtors == nil:
		return models.AppState{}, &SchemaError{Reason: "thiếu \"debtors\""}
	case c.Transactions == nil:
		return models.AppState{}, &SchemaError{Reason: "thiếu \"transactions\""}
	}
	return models.AppState{Debtors: *c.Debtors, Transactions: *c.Transactions}.Clone(), nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
