package recordstore

import (
	"sync/atomic"
	"time"

	"github.com/getmockd/userdesk/pkg/record"
)

// Observer is notified after each confirmed change to the collection and
// after each failed operation. The shell counts operations through
// MetricsObserver; ObserverFuncs adapts single callbacks.
type Observer interface {
	// OnLoad is called after the collection was replaced by a load.
	OnLoad(count int, duration time.Duration)

	// OnCreate is called after a confirmed record was appended.
	OnCreate(rec record.Record, duration time.Duration)

	// OnUpdate is called after a confirmed update. applied is false when the
	// record was not present locally and the collection was left untouched.
	OnUpdate(rec record.Record, applied bool, duration time.Duration)

	// OnDelete is called after a confirmed delete. removed is false when the
	// identifier was not present locally.
	OnDelete(recID record.ID, removed bool, duration time.Duration)

	// OnError is called when an operation fails.
	OnError(err *OperationError)
}

// MetricsObserver counts operations. All counters use atomic operations so
// it can be read from another goroutine while calls are outstanding.
type MetricsObserver struct {
	loadCount      atomic.Int64
	createCount    atomic.Int64
	updateCount    atomic.Int64
	deleteCount    atomic.Int64
	errorCount     atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewMetricsObserver creates a new metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (m *MetricsObserver) OnLoad(count int, duration time.Duration) {
	m.loadCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnCreate(rec record.Record, duration time.Duration) {
	m.createCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnUpdate(rec record.Record, applied bool, duration time.Duration) {
	m.updateCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnDelete(recID record.ID, removed bool, duration time.Duration) {
	m.deleteCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnError(err *OperationError) {
	m.errorCount.Add(1)
}

// Snapshot returns a copy of the current counters.
func (m *MetricsObserver) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		LoadCount:    m.loadCount.Load(),
		CreateCount:  m.createCount.Load(),
		UpdateCount:  m.updateCount.Load(),
		DeleteCount:  m.deleteCount.Load(),
		ErrorCount:   m.errorCount.Load(),
		TotalLatency: time.Duration(m.totalLatencyNs.Load()),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	LoadCount    int64         `json:"loadCount"`
	CreateCount  int64         `json:"createCount"`
	UpdateCount  int64         `json:"updateCount"`
	DeleteCount  int64         `json:"deleteCount"`
	ErrorCount   int64         `json:"errorCount"`
	TotalLatency time.Duration `json:"totalLatencyNs"`
}

// TotalOperations returns the number of successful operations.
func (s MetricsSnapshot) TotalOperations() int64 {
	return s.LoadCount + s.CreateCount + s.UpdateCount + s.DeleteCount
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Load   func(count int)
	Create func(rec record.Record)
	Update func(rec record.Record, applied bool)
	Delete func(recID record.ID, removed bool)
	Error  func(err *OperationError)
}

func (f ObserverFuncs) OnLoad(count int, _ time.Duration) {
	if f.Load != nil {
		f.Load(count)
	}
}

func (f ObserverFuncs) OnCreate(rec record.Record, _ time.Duration) {
	if f.Create != nil {
		f.Create(rec)
	}
}

func (f ObserverFuncs) OnUpdate(rec record.Record, applied bool, _ time.Duration) {
	if f.Update != nil {
		f.Update(rec, applied)
	}
}

func (f ObserverFuncs) OnDelete(recID record.ID, removed bool, _ time.Duration) {
	if f.Delete != nil {
		f.Delete(recID, removed)
	}
}

func (f ObserverFuncs) OnError(err *OperationError) {
	if f.Error != nil {
		f.Error(err)
	}
}
