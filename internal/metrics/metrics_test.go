package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementRun("completed")
	m.IncrementRun("completed")
	m.IncrementRun("failed")
	m.AddCitizens(250)
	m.SetSelectionRate("Origin", "Native", 0.62)
	m.SetDisparity("Origin", 0.31)
	m.ObserveScore(640)
	m.ObserveStage("generate", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.CitizensGenerated))
	assert.Equal(t, 0.62, testutil.ToFloat64(m.SelectionRate.WithLabelValues("Origin", "Native")))
	assert.Equal(t, 0.31, testutil.ToFloat64(m.DisparityGap.WithLabelValues("Origin")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ScoreDistribution))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementRun("completed")
		m.AddCitizens(1)
		m.ObserveScore(1)
		m.SetSelectionRate("a", "b", 1)
		m.SetDisparity("a", 1)
		m.ObserveStage("score", time.Second)
	})
}
