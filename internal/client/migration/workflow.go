// Package migration moves a signed-out visitor's local draft into their
// account right after sign-in.
//
// Before sign-in the CLI calls PrepareSignIn, which parks the draft in a
// short-lived session marker. After the token is known OnAuthenticated runs
// once per session:
//
//	Idle -> Checking -> Migrating -> Complete | Failed
//
// A missing marker ends the run in Idle without side effects. Both outcomes
// of Migrating remove the marker and the local draft; failures are reported
// through the Notifier and never retried.
package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/instantbranding/brandkit/internal/client/api"
	"github.com/instantbranding/brandkit/internal/client/drafts"
	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/client/session"
	"github.com/instantbranding/brandkit/internal/logging"
)

type State string

const (
	StateIdle      State = "idle"
	StateChecking  State = "checking"
	StateMigrating State = "migrating"
	StateComplete  State = "complete"
	StateFailed    State = "failed"
)

// Importer replays a draft into the account the importer is authorized for.
type Importer interface {
	ImportDraft(ctx context.Context, d *models.Draft) (*api.ImportResult, error)
}

// ImporterFactory returns an Importer acting with token.
type ImporterFactory func(token string) Importer

// Notifier receives user-facing migration outcomes.
type Notifier interface {
	MigrationSucceeded(ctx context.Context, res *api.ImportResult)
	MigrationFailed(ctx context.Context, err error)
}

type Workflow struct {
	sessions *session.Store
	drafts   *drafts.Store
	importer ImporterFactory
	notify   Notifier
	log      logging.Logger

	mu       sync.Mutex
	state    State
	lastErr  error
	inFlight bool
	done     bool
}

func NewWorkflow(sessions *session.Store, drafts *drafts.Store, importer ImporterFactory, notify Notifier, log logging.Logger) *Workflow {
	if log == nil {
		log = logging.Discard()
	}
	return &Workflow{
		sessions: sessions,
		drafts:   drafts,
		importer: importer,
		notify:   notify,
		log:      log.With("module", "migration"),
		state:    StateIdle,
	}
}

// PrepareSignIn stores the current draft in the pending-migration marker.
// It reports false when there is no draft worth migrating.
func (w *Workflow) PrepareSignIn(ctx context.Context) (bool, error) {
	d := w.drafts.Read(ctx)
	if !d.HasData() {
		return false, nil
	}
	if err := w.sessions.SetMarker(ctx, d); err != nil {
		return false, err
	}
	return true, nil
}

// OnAuthenticated runs the migration for this session. Calls made while a
// run is in flight, or after one finished, return the current state without
// doing anything.
func (w *Workflow) OnAuthenticated(ctx context.Context, token string) State {
	w.mu.Lock()
	if w.inFlight || w.done {
		st := w.state
		w.mu.Unlock()
		return st
	}
	w.inFlight = true
	w.mu.Unlock()

	st, err := w.run(ctx, token)

	w.mu.Lock()
	w.state, w.lastErr = st, err
	w.inFlight, w.done = false, true
	w.mu.Unlock()

	return st
}

func (w *Workflow) run(ctx context.Context, token string) (State, error) {
	w.setState(StateChecking)

	marker := w.sessions.Marker(ctx)
	if marker == nil {
		return StateIdle, nil
	}

	draft := marker.Draft
	if draft.HasData() {
		if err := w.drafts.Write(ctx, draft); err != nil {
			w.log.Warn(ctx, "rehydrate draft", "error", err)
		}
	} else {
		draft = w.drafts.Read(ctx)
	}
	if !draft.HasData() {
		w.sessions.ClearMarker(ctx)
		return StateIdle, nil
	}

	w.setState(StateMigrating)

	res, err := w.importer(token).ImportDraft(ctx, draft)

	w.sessions.ClearMarker(ctx)
	w.drafts.Clear(ctx)

	if err != nil {
		err = fmt.Errorf("import draft: %w", err)
		w.log.Error(ctx, "draft migration failed", "error", err)
		if w.notify != nil {
			w.notify.MigrationFailed(ctx, err)
		}
		return StateFailed, err
	}

	if res == nil {
		res = &api.ImportResult{}
	}
	w.log.Info(ctx, "draft migrated", "action", res.Action, "designs", len(res.Designs))
	if w.notify != nil && draft.HasBrandData() {
		w.notify.MigrationSucceeded(ctx, res)
	}
	return StateComplete, nil
}

func (w *Workflow) setState(st State) {
	w.mu.Lock()
	w.state = st
	w.mu.Unlock()
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Err returns the error of a failed run, if any.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Reset starts a new session, e.g. after sign-out. It has no effect while a
// run is in flight.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return
	}
	w.state, w.lastErr, w.done = StateIdle, nil, false
}
