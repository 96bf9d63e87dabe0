// Package metrics exposes prometheus counters for the build pipeline,
// feed fetches and best-effort writes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters shared across components
type Metrics struct {
	Registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
	stageRuns     *prometheus.CounterVec
	rowsWritten   *prometheus.CounterVec
	answers       *prometheus.CounterVec
}

// New creates and registers all counters on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasehub",
			Name:      "feed_fetches_total",
			Help:      "Feed reads by cache key and outcome (cache_hit, live, error).",
		}, []string{"key", "outcome"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasehub",
			Name:      "best_effort_write_failures_total",
			Help:      "Failed best-effort writes that did not block the read path.",
		}, []string{"target"}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasehub",
			Name:      "stage_runs_total",
			Help:      "Build stage invocations by outcome (skipped, built, empty).",
		}, []string{"stage", "outcome"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasehub",
			Name:      "rows_written_total",
			Help:      "Rows inserted per table.",
		}, []string{"table"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasehub",
			Name:      "answers_total",
			Help:      "Answers produced per strategy, split by abstention.",
		}, []string{"strategy", "abstained"}),
	}
	m.Registry.MustRegister(m.fetches, m.writeFailures, m.stageRuns, m.rowsWritten, m.answers)
	return m
}

// Fetch records one feed read
func (m *Metrics) Fetch(key, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(key, outcome).Inc()
}

// WriteFailure records a best-effort write that failed
func (m *Metrics) WriteFailure(target string) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(target).Inc()
}

// StageRun records one build stage invocation
func (m *Metrics) StageRun(stage, outcome string) {
	if m == nil {
		return
	}
	m.stageRuns.WithLabelValues(stage, outcome).Inc()
}

// RowsWritten adds n inserted rows for table
func (m *Metrics) RowsWritten(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsWritten.WithLabelValues(table).Add(float64(n))
}

// Answer records one produced answer
func (m *Metrics) Answer(strategy string, abstained bool) {
	if m == nil {
		return
	}
	label := "false"
	if abstained {
		label = "true"
	}
	m.answers.WithLabelValues(strategy, label).Inc()
}

// WriteFailures returns the counter for target, for tests and reports
func (m *Metrics) WriteFailures(target string) prometheus.Counter {
	return m.writeFailures.WithLabelValues(target)
}

// StageRuns returns the counter for stage/outcome
func (m *Metrics) StageRuns(stage, outcome string) prometheus.Counter {
	return m.stageRuns.WithLabelValues(stage, outcome)
}

// Fetches returns the counter for key/outcome
func (m *Metrics) Fetches(key, outcome string) prometheus.Counter {
	return m.fetches.WithLabelValues(key, outcome)
}

// Answers returns the counter for strategy/abstained
func (m *Metrics) Answers(strategy string, abstained bool) prometheus.Counter {
	label := "false"
	if abstained {
		label = "true"
	}
	return m.answers.WithLabelValues(strategy, label)
}
