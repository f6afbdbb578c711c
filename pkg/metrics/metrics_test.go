package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSearch(t *testing.T) {
	//** Arrange
	registry := prometheus.NewRegistry()
	m := New(registry)

	//** Act
	m.RecordSearch(SearchStats{Mode: ModeApprox, Generated: 12, Discarded: 5, PeakFrontier: 4, Weight: 7.5, Duration: time.Millisecond})
	m.RecordSearch(SearchStats{Mode: ModeApprox, Generated: 3, Discarded: 0, PeakFrontier: 2, Weight: 6, Duration: time.Millisecond})
	m.RecordConflictIndex(9)

	//** Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(ModeApprox)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues(ModeExact)))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.CandidatesGenerated.WithLabelValues(ModeApprox)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CandidatesDiscarded.WithLabelValues(ModeApprox)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PeakFrontier.WithLabelValues(ModeApprox)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ScheduleWeight.WithLabelValues(ModeApprox)))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.ConflictPairs))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSearch(SearchStats{Mode: ModeExact})
		m.RecordConflictIndex(1)
	})
}

func TestDoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)
	assert.Panics(t, func() { New(registry) })
}
