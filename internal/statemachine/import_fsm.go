package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/smartdebt-api/internal/models"
)

// ErrTransition is returned when an event is not allowed in the session's current status
var ErrTransition = errors.New("invalid import session transition")

// ImportFSM wraps an import session with its state machine
type ImportFSM struct {
	session *models.ImportSession
	fsm     *fsm.FSM
}

// NewImportFSM creates a new import session state machine
func NewImportFSM(session *models.ImportSession) *ImportFSM {
	f := &ImportFSM{
		session: session,
	}

	f.fsm = fsm.NewFSM(
		session.Status,
		fsm.Events{
			// staged → applied
			{Name: "confirm", Src: []string{models.ImportStatusStaged}, Dst: models.ImportStatusApplied},

			// staged → discarded
			{Name: "discard", Src: []string{models.ImportStatusStaged}, Dst: models.ImportStatusDiscarded},

			// staged → expired
			{Name: "expire", Src: []string{models.ImportStatusStaged}, Dst: models.ImportStatusExpired},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				f.session.Status = e.Dst
			},
		},
	)

	return f
}

// Confirm marks the session applied. apply runs before the transition; when it
// fails the session stays staged so the user can retry.
func (f *ImportFSM) Confirm(ctx context.Context, now time.Time, apply func() error) error {
	if f.session.IsExpired(now) && f.session.Status == models.ImportStatusStaged {
		if err := f.Expire(ctx); err != nil {
			return err
		}
	}
	if !f.fsm.Can("confirm") {
		return fmt.Errorf("%w: cannot confirm import in status %s", ErrTransition, f.session.Status)
	}
	if err := apply(); err != nil {
		return err
	}
	return f.fire(ctx, "confirm")
}

// Discard drops the staged candidate
func (f *ImportFSM) Discard(ctx context.Context) error {
	if !f.fsm.Can("discard") {
		return fmt.Errorf("%w: cannot discard import in status %s", ErrTransition, f.session.Status)
	}
	if err := f.fire(ctx, "discard"); err != nil {
		return err
	}
	f.session.Candidate = models.AppState{}
	return nil
}

// Expire closes a staged session whose window has passed
func (f *ImportFSM) Expire(ctx context.Context) error {
	if !f.fsm.Can("expire") {
		return fmt.Errorf("%w: cannot expire import in status %s", ErrTransition, f.session.Status)
	}
	if err := f.fire(ctx, "expire"); err != nil {
		return err
	}
	f.session.Candidate = models.AppState{}
	return nil
}

// Current returns the current status
func (f *ImportFSM) Current() string {
	return f.fsm.Current()
}

func (f *ImportFSM) fire(ctx context.Context, event string) error {
	if err := f.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", ErrTransition, err)
	}
	return nil
}
