// Package observability provides the Prometheus metrics exported by the prompt API.
package observability

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
)

// Operation results used as the "result" label.
const (
	ResultOK       = "ok"
	ResultLocked   = "locked"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// PromptMetrics contains all Prometheus metrics related to prompt operations.
type PromptMetrics struct {
	Operations     *prometheus.CounterVec
	LockViolations *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	SeededPrompts  prometheus.Counter
	SnapshotsTaken prometheus.Counter
	registry       *prometheus.Registry
}

// NewPromptMetrics creates the metrics and registers them on registry.
func NewPromptMetrics(registry *prometheus.Registry) (*PromptMetrics, error) {
	m := &PromptMetrics{registry: registry}
	m.initMetrics()

	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register prompt metrics: %w", err)
	}
	return m, nil
}

func (m *PromptMetrics) initMetrics() {
	m.Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promptlib_operations_total",
		Help: "Total number of prompt store operations by operation and result",
	}, []string{"operation", "result"})

	m.LockViolations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promptlib_lock_violations_total",
		Help: "Total number of update or delete attempts rejected because the prompt was locked",
	}, []string{"operation"})

	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promptlib_list_cache_hits_total",
		Help: "Total number of prompt list requests served from cache",
	})

	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promptlib_list_cache_misses_total",
		Help: "Total number of prompt list requests that hit the database",
	})

	m.SeededPrompts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promptlib_seeded_prompts_total",
		Help: "Total number of prompts inserted by the first-run seeder",
	})

	m.SnapshotsTaken = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promptlib_snapshots_total",
		Help: "Total number of snapshots written by the periodic backup job",
	})
}

// Describe implements prometheus.Collector.
func (m *PromptMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Operations.Describe(ch)
	m.LockViolations.Describe(ch)
	m.CacheHits.Describe(ch)
	m.CacheMisses.Describe(ch)
	m.SeededPrompts.Describe(ch)
	m.SnapshotsTaken.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *PromptMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Operations.Collect(ch)
	m.LockViolations.Collect(ch)
	m.CacheHits.Collect(ch)
	m.CacheMisses.Collect(ch)
	m.SeededPrompts.Collect(ch)
	m.SnapshotsTaken.Collect(ch)
}

// RecordOperation counts one operation outcome. A nil receiver is a no-op so
// callers without metrics need no guards.
func (m *PromptMetrics) RecordOperation(operation, result string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, result).Inc()
	if result == ResultLocked {
		m.LockViolations.WithLabelValues(operation).Inc()
	}
}

func (m *PromptMetrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

func (m *PromptMetrics) AddSeeded(n int) {
	if m == nil {
		return
	}
	m.SeededPrompts.Add(float64(n))
}

func (m *PromptMetrics) IncSnapshots() {
	if m == nil {
		return
	}
	m.SnapshotsTaken.Inc()
}
