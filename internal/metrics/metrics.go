// Package metrics provides Prometheus collectors for listing and loading.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Strategy attempt outcomes
const (
	OutcomeHit   = "hit"   // returned entries
	OutcomeEmpty = "empty" // succeeded without entries
	OutcomeError = "error" // transport error, recovered
)

// Load outcomes
const (
	LoadCompleted = "completed"
	LoadCancelled = "cancelled"
	LoadFailed    = "failed"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing
// so components can run without a registry.
type Metrics struct {
	StrategyAttempts *prometheus.CounterVec
	PagesDelivered   prometheus.Counter
	EntriesResolved  prometheus.Counter
	EntriesSkipped   *prometheus.CounterVec
	LoadDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StrategyAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvsfs_listing_strategy_attempts_total",
				Help: "Listing strategy attempts by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		PagesDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mvsfs_listing_pages_delivered_total",
				Help: "Pages handed to page sinks",
			},
		),
		EntriesResolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mvsfs_listing_entries_resolved_total",
				Help: "Raw listing entries resolved into child locations",
			},
		),
		EntriesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvsfs_listing_entries_skipped_total",
				Help: "Raw listing entries dropped during resolution by reason",
			},
			[]string{"reason"},
		),
		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mvsfs_load_duration_seconds",
				Help:    "Duration of background loads by outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.StrategyAttempts, m.PagesDelivered, m.EntriesResolved, m.EntriesSkipped, m.LoadDuration)
	return m
}

// RecordAttempt counts one strategy attempt.
func (m *Metrics) RecordAttempt(strategy, outcome string) {
	if m == nil {
		return
	}
	m.StrategyAttempts.WithLabelValues(strategy, outcome).Inc()
}

// RecordPage counts one delivered page.
func (m *Metrics) RecordPage() {
	if m == nil {
		return
	}
	m.PagesDelivered.Inc()
}

// RecordResolved counts n resolved entries.
func (m *Metrics) RecordResolved(n int) {
	if m == nil || n == 0 {
		return
	}
	m.EntriesResolved.Add(float64(n))
}

// RecordSkipped counts one dropped entry.
func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.EntriesSkipped.WithLabelValues(reason).Inc()
}

// ObserveLoad records how long a load ran.
func (m *Metrics) ObserveLoad(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.LoadDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
