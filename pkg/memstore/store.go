// Package memstore is an in-memory remote store for user records.
//
// It serves one insertion-ordered collection over the same REST contract the
// client speaks (json-server style):
//
//	GET    /Users        list in insertion order
//	POST   /Users        create, id assigned by the store
//	GET    /Users/{id}   read one
//	PUT    /Users/{id}   replace name and email
//	PATCH  /Users/{id}   merge supplied fields
//	DELETE /Users/{id}   remove
//
// GET /health and GET /metrics (Prometheus text format) are served alongside.
//
// It backs `userdesk serve` and the package tests of the client side.
package memstore

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/getmockd/userdesk/internal/id"
	"github.com/getmockd/userdesk/pkg/logging"
	"github.com/getmockd/userdesk/pkg/metrics"
	"github.com/getmockd/userdesk/pkg/record"
)

// DefaultMaxBodySize caps request bodies at 1MB.
const DefaultMaxBodySize int64 = 1 << 20

// Config configures a Store.
type Config struct {
	// Resource is the collection name in the URL (default "Users").
	Resource string
	// IDStyle selects how new identifiers are generated (default sequence).
	IDStyle id.Style
	// MaxItems limits the collection size; 0 means unlimited.
	MaxItems int
	// MaxBodySize caps request bodies; 0 means DefaultMaxBodySize.
	MaxBodySize int64
	// Seed is the initial content, restored by Reset.
	Seed []record.Record
	// Logger receives request and mutation logs.
	Logger *slog.Logger
	// RateLimit caps requests per second across all clients; 0 disables it.
	RateLimit float64
	// RateBurst is the bucket size; 0 means one second's worth of requests.
	RateBurst int
	// Metrics receives request counters and latency histograms. A private
	// registry is created when nil.
	Metrics *metrics.Registry
}

// Store is a thread-safe, insertion-ordered record collection.
type Store struct {
	resource    string
	maxItems    int
	maxBodySize int64
	seed        []record.Record
	ids         *id.Generator
	log         *slog.Logger

	limiter *bucket

	metrics  *metrics.Registry
	requests *metrics.Counter
	duration *metrics.Histogram

	mu    sync.RWMutex
	items []record.Record
}

// New creates a Store and loads the seed data.
func New(cfg Config) (*Store, error) {
	resource := strings.Trim(cfg.Resource, "/")
	if resource == "" {
		resource = "Users"
	}
	if strings.Contains(resource, "/") {
		return nil, fmt.Errorf("resource name %q must be a single path segment", cfg.Resource)
	}
	if resource == "health" || resource == "metrics" {
		return nil, fmt.Errorf("resource name %q is reserved", resource)
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	s := &Store{
		resource:    resource,
		maxItems:    cfg.MaxItems,
		maxBodySize: maxBody,
		seed:        append([]record.Record(nil), cfg.Seed...),
		ids:         id.NewGenerator(cfg.IDStyle),
		log:         log.With("component", "memstore"),
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit %v must not be negative", cfg.RateLimit)
	}
	if cfg.RateLimit > 0 {
		s.limiter = newBucket(cfg.RateLimit, cfg.RateBurst)
	}
	s.registerMetrics(cfg.Metrics)
	if err := s.loadSeed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) registerMetrics(reg *metrics.Registry) {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	s.metrics = reg
	s.requests = reg.NewCounter("userdesk_memstore_requests_total",
		"Requests served by the record store.", "method", "route", "status")
	s.duration = reg.NewHistogram("userdesk_memstore_request_duration_seconds",
		"Request latency in seconds.", metrics.DefaultBuckets, "method", "route")
	reg.NewGaugeFunc("userdesk_memstore_records",
		"Records currently held.", func() float64 { return float64(s.Count()) })
}

// Metrics returns the registry the store reports into.
func (s *Store) Metrics() *metrics.Registry {
	return s.metrics
}

// loadSeed populates the collection with seed data.
func (s *Store) loadSeed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]record.Record, 0, len(s.seed))
	s.ids.Reset()

	for _, rec := range s.seed {
		if !rec.ID.IsZero() {
			s.ids.Observe(rec.ID.String())
		}
	}
	for i, rec := range s.seed {
		if rec.ID.IsZero() {
			rec.ID = record.StringID(s.ids.Next())
		}
		if s.indexLocked(rec.ID.String()) >= 0 {
			return fmt.Errorf("duplicate ID %q in seed data at index %d", rec.ID, i)
		}
		s.items = append(s.items, rec)
	}
	return nil
}

// Resource returns the collection name.
func (s *Store) Resource() string {
	return s.resource
}

// List returns a copy of all records in insertion order.
func (s *Store) List() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.Record, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(itemID string) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(itemID)
	if i < 0 {
		return record.Record{}, &NotFoundError{Resource: s.resource, ID: itemID}
	}
	return s.items[i], nil
}

// Create appends a record. An id is assigned unless the caller supplied one.
func (s *Store) Create(rec record.Record) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxItems > 0 && len(s.items) >= s.maxItems {
		return record.Record{}, &CapacityError{Resource: s.resource, MaxItems: s.maxItems}
	}

	if rec.ID.IsZero() {
		rec.ID = record.StringID(s.ids.Next())
		for s.indexLocked(rec.ID.String()) >= 0 {
			rec.ID = record.StringID(s.ids.Next())
		}
	} else {
		if s.indexLocked(rec.ID.String()) >= 0 {
			return record.Record{}, &ConflictError{Resource: s.resource, ID: rec.ID.String()}
		}
		s.ids.Observe(rec.ID.String())
	}

	s.items = append(s.items, rec)
	s.log.Debug("record created", "id", rec.ID.String())
	return rec, nil
}

// Replace overwrites name and email of the record with the given id. The id
// in the path wins over any id in rec.
func (s *Store) Replace(itemID string, rec record.Record) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(itemID)
	if i < 0 {
		return record.Record{}, &NotFoundError{Resource: s.resource, ID: itemID}
	}
	rec.ID = s.items[i].ID
	s.items[i] = rec
	s.log.Debug("record replaced", "id", itemID)
	return rec, nil
}

// Patch sets only the given fields of the record with the given id.
func (s *Store) Patch(itemID string, fields map[record.Field]string) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(itemID)
	if i < 0 {
		return record.Record{}, &NotFoundError{Resource: s.resource, ID: itemID}
	}
	rec := s.items[i]
	for f, v := range fields {
		next, err := rec.With(f, v)
		if err != nil {
			return record.Record{}, &ValidationError{Field: string(f), Message: err.Error()}
		}
		rec = next
	}
	s.items[i] = rec
	s.log.Debug("record patched", "id", itemID)
	return rec, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(itemID)
	if i < 0 {
		return &NotFoundError{Resource: s.resource, ID: itemID}
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.log.Debug("record deleted", "id", itemID)
	return nil
}

// Reset restores the collection to its seed data.
func (s *Store) Reset() error {
	return s.loadSeed()
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexLocked(itemID string) int {
	for i := range s.items {
		if s.items[i].ID.String() == itemID {
			return i
		}
	}
	return -1
}
