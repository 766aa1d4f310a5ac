package models

import (
	"time"
)

// Import session statuses
const (
	ImportStatusStaged    = "staged"
	ImportStatusApplied   = "applied"
	ImportStatusDiscarded = "discarded"
	ImportStatusExpired   = "expired"
)

// ImportSession holds an uploaded backup between upload and the user's confirmation.
// The current state is not touched until the session is applied.
type ImportSession struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	FileName         string    `json:"fileName,omitempty"`
	DebtorCount      int       `json:"debtorCount"`
	TransactionCount int       `json:"transactionCount"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`

	Candidate AppState `json:"-"`
}

// IsExpired reports whether the staging window has passed
func (s *ImportSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsFinal reports whether no further transition is possible
func (s *ImportSession) IsFinal() bool {
	return s.Status != ImportStatusStaged
}
