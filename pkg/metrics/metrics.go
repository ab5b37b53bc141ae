// Package metrics provides Prometheus-compatible metrics for the bundled
// store, written in the text exposition format (version 0.0.4).
//
// Supported metric types:
//   - Counter: monotonically increasing value (request counts)
//   - Histogram: distribution of observed values (request latency)
//   - GaugeFunc: value read at scrape time (collection size)
//
// All metrics are safe for concurrent use.
//
//	reg := metrics.NewRegistry()
//	requests := reg.NewCounter("requests_total", "Requests served.", "method", "status")
//	requests.With("GET", "200").Inc()
//	http.Handle("/metrics", reg.Handler())
package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrDuplicateMetric is returned when registering a metric name twice.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// MetricType represents the type of a metric.
type MetricType string

// Metric types.
const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is implemented by every registered metric.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Collect() []Sample
}

// Sample is a single exposed value.
type Sample struct {
	Name   string
	Labels []Label
	Value  float64
}

// Label is one name="value" pair. Labels keep their declaration order.
type Label struct {
	Name  string
	Value string
}

// atomicFloat64 stores float64 bits in a uint64.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// family holds one child per label-value combination. Children are created
// on first use and never removed.
type family[T any] struct {
	name       string
	help       string
	labelNames []string
	newChild   func() *T

	mu       sync.RWMutex
	children map[string]*child[T]
	order    []string
}

type child[T any] struct {
	labels []Label
	value  *T
}

func (f *family[T]) with(values []string) *T {
	if len(values) != len(f.labelNames) {
		panic(fmt.Sprintf("metrics: %s expects %d label values, got %d", f.name, len(f.labelNames), len(values)))
	}
	key := strings.Join(values, "\x00")

	f.mu.RLock()
	c, ok := f.children[key]
	f.mu.RUnlock()
	if ok {
		return c.value
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.children[key]; ok {
		return c.value
	}
	labels := make([]Label, len(values))
	for i, v := range values {
		labels[i] = Label{Name: f.labelNames[i], Value: v}
	}
	c = &child[T]{labels: labels, value: f.newChild()}
	f.children[key] = c
	f.order = append(f.order, key)
	return c.value
}

// each visits children in creation order.
func (f *family[T]) each(fn func(labels []Label, v *T)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, key := range f.order {
		c := f.children[key]
		fn(c.labels, c.value)
	}
}

// Counter is a monotonically increasing metric.
type Counter struct {
	family[CounterValue]
}

// CounterValue is the counter for one label combination.
type CounterValue struct {
	v atomicFloat64
}

// Inc adds one.
func (c *CounterValue) Inc() { c.v.Add(1) }

// Add adds a non-negative delta. Negative deltas are ignored.
func (c *CounterValue) Add(delta float64) {
	if delta > 0 {
		c.v.Add(delta)
	}
}

// Value returns the current count.
func (c *CounterValue) Value() float64 { return c.v.Load() }

// With returns the counter for the given label values, in declaration order.
func (c *Counter) With(values ...string) *CounterValue { return c.with(values) }

func (c *Counter) Name() string     { return c.name }
func (c *Counter) Help() string     { return c.help }
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// Collect returns one sample per label combination.
func (c *Counter) Collect() []Sample {
	var out []Sample
	c.each(func(labels []Label, v *CounterValue) {
		out = append(out, Sample{Name: c.name, Labels: labels, Value: v.Value()})
	})
	return out
}

// Histogram tracks the distribution of observed values.
type Histogram struct {
	family[HistogramValue]
}

// HistogramValue is the histogram for one label combination.
type HistogramValue struct {
	bounds []float64
	counts []atomic.Uint64
	sum    atomicFloat64
	count  atomic.Uint64
}

// Observe records a value.
func (h *HistogramValue) Observe(value float64) {
	for i, bound := range h.bounds {
		if value <= bound {
			h.counts[i].Add(1)
			break
		}
	}
	h.sum.Add(value)
	h.count.Add(1)
}

// Count returns the number of observations.
func (h *HistogramValue) Count() uint64 { return h.count.Load() }

// With returns the histogram for the given label values.
func (h *Histogram) With(values ...string) *HistogramValue { return h.with(values) }

func (h *Histogram) Name() string     { return h.name }
func (h *Histogram) Help() string     { return h.help }
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// Collect returns cumulative bucket samples followed by _sum and _count.
func (h *Histogram) Collect() []Sample {
	var out []Sample
	h.each(func(labels []Label, v *HistogramValue) {
		var cumulative uint64
		for i, bound := range v.bounds {
			cumulative += v.counts[i].Load()
			le := formatFloat(bound)
			out = append(out, Sample{
				Name:   h.name + "_bucket",
				Labels: append(append([]Label(nil), labels...), Label{Name: "le", Value: le}),
				Value:  float64(cumulative),
			})
		}
		out = append(out,
			Sample{Name: h.name + "_sum", Labels: labels, Value: v.sum.Load()},
			Sample{Name: h.name + "_count", Labels: labels, Value: float64(v.Count())},
		)
	})
	return out
}

// GaugeFunc reports a value computed at scrape time.
type GaugeFunc struct {
	name string
	help string
	fn   func() float64
}

func (g *GaugeFunc) Name() string     { return g.name }
func (g *GaugeFunc) Help() string     { return g.help }
func (g *GaugeFunc) Type() MetricType { return MetricTypeGauge }

// Collect calls the function once.
func (g *GaugeFunc) Collect() []Sample {
	return []Sample{{Name: g.name, Value: g.fn()}}
}

// DefaultBuckets are histogram buckets for request durations in seconds.
var DefaultBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Registry holds registered metrics in registration order.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter creates and registers a counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := &Counter{family: family[CounterValue]{
		name:       name,
		help:       help,
		labelNames: labels,
		newChild:   func() *CounterValue { return &CounterValue{} },
		children:   make(map[string]*child[CounterValue]),
	}}
	r.register(c)
	return c
}

// NewHistogram creates and registers a histogram. A +Inf bucket is added.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}
	h := &Histogram{
		family: family[HistogramValue]{
			name:       name,
			help:       help,
			labelNames: labels,
			newChild: func() *HistogramValue {
				return &HistogramValue{bounds: bounds, counts: make([]atomic.Uint64, len(bounds))}
			},
			children: make(map[string]*child[HistogramValue]),
		},
	}
	r.register(h)
	return h
}

// NewGaugeFunc registers a gauge whose value is fn().
func (r *Registry) NewGaugeFunc(name, help string, fn func() float64) *GaugeFunc {
	g := &GaugeFunc{name: name, help: help, fn: fn}
	r.register(g)
	return g
}

// register panics on duplicate names, which would produce invalid output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = r.Write(w)
	})
}

// Write writes every metric with at least one sample.
func (r *Registry) Write(w io.Writer) error {
	r.mu.RLock()
	metrics := append([]Metric(nil), r.metrics...)
	r.mu.RUnlock()

	for _, m := range metrics {
		samples := m.Collect()
		if len(samples) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", m.Name(), escapeHelp(m.Help()), m.Name(), m.Type()); err != nil {
			return err
		}
		for _, s := range samples {
			if _, err := fmt.Fprintf(w, "%s%s %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLabels(labels []Label) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.Name + `="` + escapeLabelValue(l.Value) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%g", v)
	}
}

func escapeHelp(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(s)
}

func escapeLabelValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
}
