package statemachine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func stagedSession() *models.ImportSession {
	return &models.ImportSession{
		ID:        "imp-1",
		Status:    models.ImportStatusStaged,
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Minute),
		Candidate: models.SeedState(now),
	}
}

func TestImportFSM_Confirm(t *testing.T) {
	s := stagedSession()
	f := NewImportFSM(s)

	applied := false
	require.NoError(t, f.Confirm(context.Background(), now, func() error {
		applied = true
		return nil
	}))
	assert.True(t, applied)
	assert.Equal(t, models.ImportStatusApplied, s.Status)
	assert.Equal(t, models.ImportStatusApplied, f.Current())

	err := f.Confirm(context.Background(), now, func() error { return nil })
	assert.ErrorIs(t, err, ErrTransition)
	assert.ErrorIs(t, f.Discard(context.Background()), ErrTransition)
}

func TestImportFSM_ConfirmApplyFailureKeepsStaged(t *testing.T) {
	s := stagedSession()
	f := NewImportFSM(s)

	boom := errors.New("disk full")
	err := f.Confirm(context.Background(), now, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, models.ImportStatusStaged, s.Status)
}

func TestImportFSM_ConfirmAfterExpiry(t *testing.T) {
	s := stagedSession()
	f := NewImportFSM(s)

	called := false
	err := f.Confirm(context.Background(), now.Add(time.Hour), func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrTransition)
	assert.False(t, called)
	assert.Equal(t, models.ImportStatusExpired, s.Status)
	assert.Empty(t, s.Candidate.Debtors)
}

func TestImportFSM_Discard(t *testing.T) {
	s := stagedSession()
	f := NewImportFSM(s)

	require.NoError(t, f.Discard(context.Background()))
	assert.Equal(t, models.ImportStatusDiscarded, s.Status)
	assert.True(t, s.IsFinal())
	assert.Nil(t, s.Candidate.Debtors)

	assert.ErrorIs(t, f.Expire(context.Background()), ErrTransition)
}
