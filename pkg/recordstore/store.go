package recordstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getmockd/userdesk/pkg/logging"
	"github.com/getmockd/userdesk/pkg/record"
	"github.com/getmockd/userdesk/pkg/remote"
)

// Store holds the client's confirmed, ordered collection of records.
//
// The collection is changed only after the remote store confirms an
// operation. The remote call itself runs without holding the lock.
type Store struct {
	remote    remote.Store
	log       *slog.Logger
	observers []Observer

	mu      sync.RWMutex
	records []record.Record
	loaded  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = logging.Component(log, "recordstore")
	}
}

// WithObserver registers an observer. It may be given more than once.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// New creates an empty Store backed by the given remote store.
func New(rs remote.Store, opts ...Option) *Store {
	s := &Store{
		remote:  rs,
		log:     logging.Nop(),
		records: []record.Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the full collection and replaces the local one with it,
// keeping the order the remote store returned. On failure the collection
// keeps its previous value.
func (s *Store) Load(ctx context.Context) error {
	start := time.Now()
	fetched, err := s.remote.List(ctx)
	if err != nil {
		return s.fail(ActionLoad, record.ID{}, err)
	}
	if err := checkUnique(fetched); err != nil {
		return s.fail(ActionLoad, record.ID{}, err)
	}

	next := make([]record.Record, len(fetched))
	copy(next, fetched)

	s.mu.Lock()
	s.records = next
	s.loaded = true
	s.mu.Unlock()

	d := time.Since(start)
	s.log.Info("records loaded", "count", len(next), "duration", d)
	for _, o := range s.observers {
		o.OnLoad(len(next), d)
	}
	return nil
}

// Create sends draft to the remote store and appends the returned record,
// which carries the newly assigned identifier. The draft must not have an
// identifier. No deduplication key is sent, so retrying a create whose
// response was lost may create a second remote record.
func (s *Store) Create(ctx context.Context, draft record.Record) (record.Record, error) {
	if !draft.ID.IsZero() {
		return record.Record{}, s.fail(ActionCreate, draft.ID, ErrIdentifierSet)
	}

	start := time.Now()
	created, err := s.remote.Create(ctx, draft)
	if err != nil {
		return record.Record{}, s.fail(ActionCreate, record.ID{}, err)
	}
	if created.ID.IsZero() {
		return record.Record{}, s.fail(ActionCreate, record.ID{}, ErrEmptyIdentifier)
	}

	s.mu.Lock()
	if s.indexLocked(created.ID) >= 0 {
		s.mu.Unlock()
		return record.Record{}, s.fail(ActionCreate, created.ID, ErrDuplicateIdentifier)
	}
	s.records = append(s.records, created)
	s.mu.Unlock()

	d := time.Since(start)
	s.log.Info("record created", "id", created.ID.String(), "duration", d)
	for _, o := range s.observers {
		o.OnCreate(created, d)
	}
	return created, nil
}

// Update sends rec to the remote store as a replacement. On success the
// local entry with the same identifier is replaced in place. If there is no
// such entry the local collection is left as is.
func (s *Store) Update(ctx context.Context, rec record.Record) (record.Record, error) {
	if rec.ID.IsZero() {
		return record.Record{}, s.fail(ActionUpdate, rec.ID, ErrIdentifierMissing)
	}

	start := time.Now()
	confirmed, err := s.remote.Replace(ctx, rec)
	if err != nil {
		return record.Record{}, s.fail(ActionUpdate, rec.ID, err)
	}
	// The path identifier is authoritative.
	confirmed.ID = rec.ID

	s.mu.Lock()
	i := s.indexLocked(rec.ID)
	applied := i >= 0
	if applied {
		// The stored identifier keeps the kind it was received with.
		confirmed.ID = s.records[i].ID
		s.records[i] = confirmed
	}
	s.mu.Unlock()

	d := time.Since(start)
	if applied {
		s.log.Info("record updated", "id", rec.ID.String(), "duration", d)
	} else {
		s.log.Warn("update confirmed for record not in collection", "id", rec.ID.String())
	}
	for _, o := range s.observers {
		o.OnUpdate(confirmed, applied, d)
	}
	return confirmed, nil
}

// Delete asks the remote store to delete the record and, on success, removes
// it from the collection. Identifiers unknown locally are still forwarded;
// the remote store's answer decides the outcome.
func (s *Store) Delete(ctx context.Context, recID record.ID) error {
	start := time.Now()
	if err := s.remote.Delete(ctx, recID); err != nil {
		return s.fail(ActionDelete, recID, err)
	}

	s.mu.Lock()
	i := s.indexLocked(recID)
	removed := i >= 0
	if removed {
		next := make([]record.Record, 0, len(s.records)-1)
		next = append(next, s.records[:i]...)
		next = append(next, s.records[i+1:]...)
		s.records = next
	}
	s.mu.Unlock()

	d := time.Since(start)
	s.log.Info("record deleted", "id", recID.String(), "removed", removed, "duration", d)
	for _, o := range s.observers {
		o.OnDelete(recID, removed, d)
	}
	return nil
}

// Records returns a copy of the collection in order.
func (s *Store) Records() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given identifier.
func (s *Store) Get(recID record.ID) (record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(recID); i >= 0 {
		return s.records[i], true
	}
	return record.Record{}, false
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether a load has succeeded at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) indexLocked(recID record.ID) int {
	for i := range s.records {
		if s.records[i].ID.Equal(recID) {
			return i
		}
	}
	return -1
}

func (s *Store) fail(action Action, recID record.ID, err error) error {
	opErr := &OperationError{Action: action, ID: recID, Err: err}
	s.log.Warn("operation failed", "action", string(action), "id", recID.String(), "error", err)
	for _, o := range s.observers {
		o.OnError(opErr)
	}
	return opErr
}

// checkUnique enforces unique, non-empty identifiers in a load response.
func checkUnique(records []record.Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID.IsZero() {
			return fmt.Errorf("%w at index %d", ErrEmptyIdentifier, i)
		}
		if _, dup := seen[r.ID.String()]; dup {
			return fmt.Errorf("%w %q at index %d", ErrDuplicateIdentifier, r.ID.String(), i)
		}
		seen[r.ID.String()] = struct{}{}
	}
	return nil
}
