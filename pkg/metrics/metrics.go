// Package metrics exposes Prometheus instrumentation for schedule searches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "scheduler"
	subsystem = "search"
)

// Search modes used as label values
const (
	ModeExact  = "exact"
	ModeApprox = "approx"
)

// Metrics groups the collectors recorded by the scheduling engine. A nil *Metrics is valid and records nothing, so the
// engine never has to check whether instrumentation was configured.
type Metrics struct {
	SearchesTotal       *prometheus.CounterVec
	CandidatesGenerated *prometheus.CounterVec
	CandidatesDiscarded *prometheus.CounterVec
	PeakFrontier        *prometheus.GaugeVec
	ScheduleWeight      *prometheus.GaugeVec
	SearchDuration      *prometheus.HistogramVec
	ConflictPairs       prometheus.Gauge
}

// New registers every collector with registerer. Passing a fresh prometheus.NewRegistry() keeps tests isolated.
func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Number of completed schedule searches by mode.",
		}, []string{"mode"}),
		CandidatesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "candidates_generated_total",
			Help:      "Candidate schedules produced by extending the frontier.",
		}, []string{"mode"}),
		CandidatesDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "candidates_discarded_total",
			Help:      "Candidate schedules rejected or evicted by a bounded frontier.",
		}, []string{"mode"}),
		PeakFrontier: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "peak_frontier_size",
			Help:      "Largest frontier observed during the last search.",
		}, []string{"mode"}),
		ScheduleWeight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "schedule_weight",
			Help:      "Total weight of the schedule returned by the last search.",
		}, []string{"mode"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall time spent searching, including conflict construction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"mode"}),
		ConflictPairs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflict_pairs",
			Help:      "Conflicting section pairs in the most recently built conflict index.",
		}),
	}
}

// SearchStats summarizes one search run
type SearchStats struct {
	Mode         string
	Generated    int
	Discarded    int
	PeakFrontier int
	Weight       float64
	Duration     time.Duration
}

func (m *Metrics) RecordSearch(stats SearchStats) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(stats.Mode).Inc()
	m.CandidatesGenerated.WithLabelValues(stats.Mode).Add(float64(stats.Generated))
	m.CandidatesDiscarded.WithLabelValues(stats.Mode).Add(float64(stats.Discarded))
	m.PeakFrontier.WithLabelValues(stats.Mode).Set(float64(stats.PeakFrontier))
	m.ScheduleWeight.WithLabelValues(stats.Mode).Set(stats.Weight)
	m.SearchDuration.WithLabelValues(stats.Mode).Observe(stats.Duration.Seconds())
}

func (m *Metrics) RecordConflictIndex(pairs int) {
	if m == nil {
		return
	}
	m.ConflictPairs.Set(float64(pairs))
}
