// Package promadapters provides a Prometheus implementation of reactive.MetricsCollector.
package promadapters

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
)

// ErrEmptyBuckets is returned by WithBuckets when no bucket is given.
var ErrEmptyBuckets = errors.New("histogram buckets must not be empty")

const (
	helpDuration = "Reactive stream duration in seconds"
	helpCounter  = "Reactive stream event counter"
	helpGauge    = "Reactive stream current value"
)

// MetricsCollector implements reactive.MetricsCollector and prometheus.Collector.
//
// Metric vectors are created on first use. The label names of a metric are fixed by its first
// observation: later observations fill missing labels with "" and drop unknown ones.
// Register the collector once with a prometheus.Registerer to expose everything it records.
type MetricsCollector struct {
	namespace  string
	buckets    []float64
	mu         sync.Mutex
	histograms map[string]*vector[*prometheus.HistogramVec]
	counters   map[string]*vector[*prometheus.CounterVec]
	gauges     map[string]*vector[*prometheus.GaugeVec]
}

type vector[V prometheus.Collector] struct {
	vec        V
	labelNames []string
}

// Option defines a functional option for configuring MetricsCollector.
type Option func(*MetricsCollector) error

// WithNamespace prefixes every metric name with namespace.
func WithNamespace(namespace string) Option {
	return func(m *MetricsCollector) error {
		m.namespace = namespace
		return nil
	}
}

// WithBuckets sets the histogram buckets for durations. Defaults to prometheus.DefBuckets.
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) error {
		if len(buckets) == 0 {
			return ErrEmptyBuckets
		}

		m.buckets = slices.Clone(buckets)

		return nil
	}
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector(opts ...Option) (*MetricsCollector, error) {
	m := &MetricsCollector{
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]*vector[*prometheus.HistogramVec]),
		counters:   make(map[string]*vector[*prometheus.CounterVec]),
		gauges:     make(map[string]*vector[*prometheus.GaugeVec]),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordDuration observes duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	entry, ok := m.histograms[metric]
	if !ok {
		names := labelNames(labels)
		entry = &vector[*prometheus.HistogramVec]{
			vec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: m.namespace,
				Name:      metric,
				Help:      helpDuration,
				Buckets:   m.buckets,
			}, names),
			labelNames: names,
		}
		m.histograms[metric] = entry
	}
	m.mu.Unlock()

	entry.vec.With(normalize(entry.labelNames, labels)).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	entry, ok := m.counters[metric]
	if !ok {
		names := labelNames(labels)
		entry = &vector[*prometheus.CounterVec]{
			vec: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: m.namespace,
				Name:      metric,
				Help:      helpCounter,
			}, names),
			labelNames: names,
		}
		m.counters[metric] = entry
	}
	m.mu.Unlock()

	entry.vec.With(normalize(entry.labelNames, labels)).Inc()
}

// RecordValue sets the gauge to value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	entry, ok := m.gauges[metric]
	if !ok {
		names := labelNames(labels)
		entry = &vector[*prometheus.GaugeVec]{
			vec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: m.namespace,
				Name:      metric,
				Help:      helpGauge,
			}, names),
			labelNames: names,
		}
		m.gauges[metric] = entry
	}
	m.mu.Unlock()

	entry.vec.With(normalize(entry.labelNames, labels)).Set(value)
}

// Describe implements prometheus.Collector.
// It sends no descriptors because the metrics are only known after their first observation,
// which makes this an unchecked collector.
func (m *MetricsCollector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (m *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.snapshot() {
		c.Collect(ch)
	}
}

func (m *MetricsCollector) snapshot() []prometheus.Collector {
	m.mu.Lock()
	defer m.mu.Unlock()

	collectors := make([]prometheus.Collector, 0, len(m.histograms)+len(m.counters)+len(m.gauges))
	for _, entry := range m.histograms {
		collectors = append(collectors, entry.vec)
	}
	for _, entry := range m.counters {
		collectors = append(collectors, entry.vec)
	}
	for _, entry := range m.gauges {
		collectors = append(collectors, entry.vec)
	}

	return collectors
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func normalize(names []string, labels map[string]string) prometheus.Labels {
	normalized := make(prometheus.Labels, len(names))
	for _, name := range names {
		normalized[name] = labels[name]
	}

	return normalized
}

var (
	_ reactive.MetricsCollector = (*MetricsCollector)(nil)
	_ prometheus.Collector      = (*MetricsCollector)(nil)
)
