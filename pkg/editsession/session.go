// Package editsession implements the state machine behind the record form.
//
// A Session is either Closed or Editing a draft. The draft is a value copy,
// so typing into it never touches the record in the store. Commit hands the
// draft to the store (create when it has no identifier, update otherwise)
// and closes the session only when the store confirms; a failed save keeps
// the draft so the operator can retry or cancel.
//
// Each open starts a new generation. A commit whose remote call resolves
// after the session was cancelled or reopened still reaches the store, but
// it does not close the newer session; Commit then returns ErrSuperseded.
package editsession

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/getmockd/userdesk/pkg/logging"
	"github.com/getmockd/userdesk/pkg/record"
)

// State is the session state.
type State int

// Session states.
const (
	Closed State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned by operations that need an open draft.
	ErrClosed = errors.New("edit session is closed")
	// ErrCommitInProgress is returned when a commit is already outstanding.
	ErrCommitInProgress = errors.New("commit already in progress")
	// ErrSuperseded is returned with the saved record when the session was
	// cancelled or reopened while the commit was outstanding.
	ErrSuperseded = errors.New("edit session was superseded while saving")
)

// Committer persists drafts. *recordstore.Store satisfies it.
type Committer interface {
	Create(ctx context.Context, draft record.Record) (record.Record, error)
	Update(ctx context.Context, rec record.Record) (record.Record, error)
}

// Session owns the draft being edited.
type Session struct {
	store Committer
	log   *slog.Logger

	mu         sync.Mutex
	state      State
	draft      record.Record
	generation uint64
	committing bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = logging.Component(log, "editsession")
	}
}

// New creates a Closed session that commits through store.
func New(store Committer, opts ...Option) *Session {
	s := &Session{store: store, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenForCreate starts editing an empty draft. Any previous draft is
// discarded.
func (s *Session) OpenForCreate() {
	s.open(record.Record{})
}

// OpenForEdit starts editing a copy of rec. Any previous draft is discarded.
func (s *Session) OpenForEdit(rec record.Record) {
	s.open(rec)
}

func (s *Session) open(draft record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Editing {
		s.log.Debug("discarding previous draft", "id", s.draft.ID.String())
	}
	s.state = Editing
	s.draft = draft
	s.generation++
	s.committing = false
}

// SetField replaces the draft with a copy that has field set to value.
func (s *Session) SetField(field record.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing {
		return ErrClosed
	}
	next, err := s.draft.With(field, value)
	if err != nil {
		return err
	}
	s.draft = next
	return nil
}

// Cancel discards the draft and closes the session. It never contacts the
// remote store. Cancelling a closed session does nothing.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}
	s.state = Closed
	s.draft = record.Record{}
	s.generation++
	s.committing = false
}

// Commit saves the draft. On success the session closes and the confirmed
// record is returned. On failure the session stays open with the draft
// unchanged and the store's error is returned.
func (s *Session) Commit(ctx context.Context) (record.Record, error) {
	s.mu.Lock()
	if s.state != Editing {
		s.mu.Unlock()
		return record.Record{}, ErrClosed
	}
	if s.committing {
		s.mu.Unlock()
		return record.Record{}, ErrCommitInProgress
	}
	draft := s.draft
	gen := s.generation
	s.committing = true
	s.mu.Unlock()

	var (
		saved record.Record
		err   error
	)
	if draft.IsNew() {
		saved, err = s.store.Create(ctx, draft)
	} else {
		saved, err = s.store.Update(ctx, draft)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.log.Debug("commit resolved for superseded session", "id", draft.ID.String(), "error", err)
		if err != nil {
			return record.Record{}, err
		}
		return saved, ErrSuperseded
	}

	s.committing = false
	if err != nil {
		return record.Record{}, err
	}
	s.state = Closed
	s.draft = record.Record{}
	s.generation++
	return saved, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the draft and whether the session is open.
func (s *Session) Draft() (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, s.state == Editing
}

// IsNew reports whether the open draft is for a record not yet saved.
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Editing && s.draft.IsNew()
}

// Committing reports whether a commit is outstanding.
func (s *Session) Committing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// Generation identifies the current open/close cycle. It changes on every
// open, cancel and successful commit.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
