package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"testing"

	"github.com/getmockd/userdesk/pkg/record"
	"github.com/getmockd/userdesk/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote is an in-process remote.Store with per-operation failure
// injection.
type fakeRemote struct {
	records []record.Record
	nextID  int

	failList, failCreate, failReplace, failDelete error

	calls []string
}

func newFakeRemote(records ...record.Record) *fakeRemote {
	return &fakeRemote{records: append([]record.Record(nil), records...), nextID: 100}
}

func (f *fakeRemote) List(ctx context.Context) ([]record.Record, error) {
	f.calls = append(f.calls, "list")
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]record.Record(nil), f.records...), nil
}

func (f *fakeRemote) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	f.calls = append(f.calls, "create")
	if f.failCreate != nil {
		return record.Record{}, f.failCreate
	}
	rec.ID = record.StringID(strconv.Itoa(f.nextID))
	f.nextID++
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRemote) Replace(ctx context.Context, rec record.Record) (record.Record, error) {
	f.calls = append(f.calls, "replace:"+rec.ID.String())
	if f.failReplace != nil {
		return record.Record{}, f.failReplace
	}
	for i := range f.records {
		if f.records[i].ID.Equal(rec.ID) {
			f.records[i] = rec
			return rec, nil
		}
	}
	return record.Record{}, &remote.RejectionError{Op: "update", StatusCode: http.StatusNotFound}
}

func (f *fakeRemote) Delete(ctx context.Context, recID record.ID) error {
	f.calls = append(f.calls, "delete:"+recID.String())
	if f.failDelete != nil {
		return f.failDelete
	}
	for i := range f.records {
		if f.records[i].ID.Equal(recID) {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &remote.RejectionError{Op: "delete", StatusCode: http.StatusNotFound}
}

var (
	bob   = record.Record{ID: record.StringID("1"), Name: "Bob", Email: "b@x.com"}
	alice = record.Record{ID: record.StringID("2"), Name: "Alice", Email: "a@x.com"}
	carol = record.Record{ID: record.NumberID(3), Name: "Carol", Email: "c@x.com"}

	errNetwork = &remote.TransportError{Op: "test", URL: "http://remote", Err: errors.New("connection refused")}
	errReject  = &remote.RejectionError{Op: "test", StatusCode: http.StatusInternalServerError, Message: "boom"}
)

func loadedStore(t *testing.T, fr *fakeRemote, opts ...Option) *Store {
	t.Helper()
	s := New(fr, opts...)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestStore_NewIsEmpty(t *testing.T) {
	s := New(newFakeRemote())
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Records())
	assert.False(t, s.Loaded())
}

func TestStore_LoadPreservesOrder(t *testing.T) {
	s := loadedStore(t, newFakeRemote(carol, bob, alice))

	assert.Equal(t, []record.Record{carol, bob, alice}, s.Records())
	assert.True(t, s.Loaded())
}

func TestStore_LoadFailureLeavesEmpty(t *testing.T) {
	fr := newFakeRemote(bob)
	fr.failList = errNetwork
	s := New(fr)

	err := s.Load(context.Background())
	require.Error(t, err)

	opErr, ok := AsOperationError(err)
	require.True(t, ok)
	assert.Equal(t, ActionLoad, opErr.Action)
	assert.True(t, remote.IsTransport(err))
	assert.Empty(t, s.Records())
	assert.False(t, s.Loaded())
}

func TestStore_ReloadFailureKeepsLastLoaded(t *testing.T) {
	fr := newFakeRemote(bob, alice)
	s := loadedStore(t, fr)

	fr.failList = errReject
	require.Error(t, s.Load(context.Background()))
	assert.Equal(t, []record.Record{bob, alice}, s.Records())
}

func TestStore_LoadRejectsDuplicateIDs(t *testing.T) {
	fr := newFakeRemote(bob, alice)
	s := loadedStore(t, fr)

	fr.records = []record.Record{carol, carol}
	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Equal(t, []record.Record{bob, alice}, s.Records())
}

func TestStore_LoadRejectsEmptyIDs(t *testing.T) {
	fr := newFakeRemote(record.Record{Name: "ghost"})
	err := New(fr).Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestStore_CreateAppendsConfirmedRecord(t *testing.T) {
	s := loadedStore(t, newFakeRemote(bob))

	created, err := s.Create(context.Background(), record.Record{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, "100", created.ID.String())
	assert.Equal(t, []record.Record{bob, created}, s.Records())
}

func TestStore_CreateFailureLeavesCollection(t *testing.T) {
	for name, failure := range map[string]error{"transport": errNetwork, "rejection": errReject} {
		t.Run(name, func(t *testing.T) {
			fr := newFakeRemote(bob)
			s := loadedStore(t, fr)
			before := s.Records()

			fr.failCreate = failure
			_, err := s.Create(context.Background(), record.Record{Name: "A"})
			require.Error(t, err)

			opErr, ok := AsOperationError(err)
			require.True(t, ok)
			assert.Equal(t, ActionCreate, opErr.Action)
			assert.ErrorIs(t, err, failure)
			assert.Equal(t, before, s.Records())
		})
	}
}

func TestStore_CreateWithIdentifierIsRejectedLocally(t *testing.T) {
	fr := newFakeRemote()
	s := loadedStore(t, fr)

	_, err := s.Create(context.Background(), bob)
	assert.ErrorIs(t, err, ErrIdentifierSet)
	assert.Equal(t, []string{"list"}, fr.calls)
}

func TestStore_CreateDuplicateResponseNotApplied(t *testing.T) {
	fr := newFakeRemote(bob)
	s := loadedStore(t, fr)
	fr.nextID = 1

	_, err := s.Create(context.Background(), record.Record{Name: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Equal(t, []record.Record{bob}, s.Records())
}

func TestStore_UpdateReplacesInPlace(t *testing.T) {
	s := loadedStore(t, newFakeRemote(bob, alice, carol))

	edited := alice
	edited.Email = "alice@new.com"
	confirmed, err := s.Update(context.Background(), edited)
	require.NoError(t, err)

	assert.Equal(t, edited, confirmed)
	assert.Equal(t, []record.Record{bob, edited, carol}, s.Records())
}

func TestStore_UpdateKeepsStoredIDKind(t *testing.T) {
	numeric := record.Record{ID: record.NumberID(42), Name: "Dan", Email: "d@x.com"}
	s := loadedStore(t, newFakeRemote(numeric))

	edited := record.Record{ID: record.StringID("42"), Name: "Daniel", Email: "d@x.com"}
	confirmed, err := s.Update(context.Background(), edited)
	require.NoError(t, err)
	assert.True(t, confirmed.ID.IsNumeric())

	data, err := json.Marshal(s.Records())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":42,"name":"Daniel","email":"d@x.com"}]`, string(data))
}

func TestStore_UpdateFailureLeavesCollection(t *testing.T) {
	fr := newFakeRemote(bob)
	s := loadedStore(t, fr)
	fr.failReplace = errNetwork

	edited := bob
	edited.Name = "Bobby"
	_, err := s.Update(context.Background(), edited)
	require.Error(t, err)

	opErr, ok := AsOperationError(err)
	require.True(t, ok)
	assert.Equal(t, ActionUpdate, opErr.Action)
	assert.Equal(t, bob.ID, opErr.ID)
	assert.Contains(t, err.Error(), "update 1 failed")

	got, _ := s.Get(bob.ID)
	assert.Equal(t, "Bob", got.Name)
}

func TestStore_UpdateUnknownLocallyIsNoop(t *testing.T) {
	fr := newFakeRemote(bob, alice)
	s := New(fr)
	// Collection never loaded: remote has alice, local does not.
	edited := alice
	edited.Name = "Alicia"

	_, err := s.Update(context.Background(), edited)
	require.NoError(t, err)
	assert.Empty(t, s.Records())
	assert.Contains(t, fr.calls, "replace:2")
}

func TestStore_UpdateRequiresIdentifier(t *testing.T) {
	fr := newFakeRemote()
	s := New(fr)
	_, err := s.Update(context.Background(), record.Record{Name: "x"})
	assert.ErrorIs(t, err, ErrIdentifierMissing)
	assert.Empty(t, fr.calls)
}

func TestStore_DeleteRemovesEntry(t *testing.T) {
	s := loadedStore(t, newFakeRemote(bob, alice, carol))

	require.NoError(t, s.Delete(context.Background(), bob.ID))

	_, found := s.Get(bob.ID)
	assert.False(t, found)
	assert.Equal(t, []record.Record{alice, carol}, s.Records())
}

func TestStore_DeleteNumericIDMatchesStringForm(t *testing.T) {
	s := loadedStore(t, newFakeRemote(carol))
	require.NoError(t, s.Delete(context.Background(), record.StringID("3")))
	assert.Equal(t, 0, s.Len())
}

func TestStore_DeleteFailureLeavesCollection(t *testing.T) {
	fr := newFakeRemote(bob)
	s := loadedStore(t, fr)
	fr.failDelete = errReject

	err := s.Delete(context.Background(), bob.ID)
	require.Error(t, err)
	assert.True(t, remote.IsRejection(err))
	assert.Equal(t, []record.Record{bob}, s.Records())
}

func TestStore_DeleteUnknownIsForwarded(t *testing.T) {
	fr := newFakeRemote(bob)
	s := loadedStore(t, fr)

	err := s.Delete(context.Background(), record.StringID("404"))
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
	assert.Contains(t, fr.calls, "delete:404")
	assert.Equal(t, []record.Record{bob}, s.Records())
}

func TestStore_DeleteUnknownLocallyButRemoteSucceeds(t *testing.T) {
	fr := newFakeRemote(bob, alice)
	s := New(fr)

	var removedFlag *bool
	s.observers = append(s.observers, ObserverFuncs{Delete: func(_ record.ID, removed bool) { removedFlag = &removed }})

	require.NoError(t, s.Delete(context.Background(), alice.ID))
	require.NotNil(t, removedFlag)
	assert.False(t, *removedFlag)
}

func TestStore_RecordsIsACopy(t *testing.T) {
	s := loadedStore(t, newFakeRemote(bob))

	view := s.Records()
	view[0].Name = "Mallory"

	got, _ := s.Get(bob.ID)
	assert.Equal(t, "Bob", got.Name)
}

func TestStore_ObserversSeeConfirmedChangesAndErrors(t *testing.T) {
	fr := newFakeRemote(bob)
	metrics := NewMetricsObserver()
	var errs []*OperationError
	s := loadedStore(t, fr, WithObserver(metrics), WithObserver(ObserverFuncs{
		Error: func(err *OperationError) { errs = append(errs, err) },
	}))

	_, err := s.Create(context.Background(), record.Record{Name: "A"})
	require.NoError(t, err)
	_, err = s.Update(context.Background(), bob)
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), bob.ID))

	fr.failDelete = errNetwork
	require.Error(t, s.Delete(context.Background(), record.StringID("100")))

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.LoadCount)
	assert.Equal(t, int64(1), snap.CreateCount)
	assert.Equal(t, int64(1), snap.UpdateCount)
	assert.Equal(t, int64(1), snap.DeleteCount)
	assert.Equal(t, int64(1), snap.ErrorCount)
	assert.Equal(t, int64(4), snap.TotalOperations())

	require.Len(t, errs, 1)
	assert.Equal(t, ActionDelete, errs[0].Action)
	assert.Equal(t, "100", errs[0].ID.String())
}

// TestStore_RandomSequencesKeepInvariant drives random confirmed and failed
// operations and checks the collection against a model of confirmed results.
func TestStore_RandomSequencesKeepInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 20; run++ {
		fr := newFakeRemote()
		s := loadedStore(t, fr)
		var model []record.Record

		for step := 0; step < 60; step++ {
			fail := rng.Intn(4) == 0
			var injected error
			if fail {
				injected = errNetwork
			}
			fr.failCreate, fr.failReplace, fr.failDelete = injected, injected, injected
			before := s.Records()

			var err error
			switch op := rng.Intn(3); {
			case op == 0 || len(model) == 0:
				var created record.Record
				created, err = s.Create(context.Background(), record.Record{Name: "n" + strconv.Itoa(step)})
				if err == nil {
					model = append(model, created)
				}
			case op == 1:
				i := rng.Intn(len(model))
				edited := model[i]
				edited.Email = "e" + strconv.Itoa(step) + "@x.com"
				_, err = s.Update(context.Background(), edited)
				if err == nil {
					model[i] = edited
				}
			default:
				i := rng.Intn(len(model))
				err = s.Delete(context.Background(), model[i].ID)
				if err == nil {
					model = append(model[:i:i], model[i+1:]...)
				}
			}

			if fail {
				require.Error(t, err)
				require.Equal(t, before, s.Records(), "failed operation changed the collection")
			} else {
				require.NoError(t, err)
			}

			got := s.Records()
			if len(model) == 0 {
				require.Empty(t, got)
			} else {
				require.Equal(t, model, got)
			}
			require.NoError(t, checkUnique(got))
		}
	}
}
