package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for audit runs.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	CitizensGenerated prometheus.Counter
	ScoreDistribution prometheus.Histogram
	SelectionRate     *prometheus.GaugeVec
	DisparityGap      *prometheus.GaugeVec
	StageLatency      *prometheus.HistogramVec
}

// New registers all audit metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "optilive_audit_runs_total",
			Help: "Audit runs by outcome",
		}, []string{"status"}), // status: "completed", "failed"

		CitizensGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "optilive_citizens_generated_total",
			Help: "Synthetic citizens generated across all runs",
		}),

		ScoreDistribution: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "optilive_social_utility_score",
			Help:    "Distribution of assigned Social Utility Scores",
			Buckets: prometheus.LinearBuckets(0, 100, 11),
		}),

		SelectionRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "optilive_group_selection_rate",
			Help: "Selection rate of each group in the latest run",
		}, []string{"feature", "group"}),

		DisparityGap: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "optilive_disparity_gap",
			Help: "Max minus min selection rate per sensitive feature in the latest run",
		}, []string{"feature"}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optilive_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"stage"}), // stage: "generate", "score", "aggregate", "persist", "notify"
	}
}

// IncrementRun records a run outcome.
func (m *Metrics) IncrementRun(status string) {
	if m != nil {
		m.RunsTotal.WithLabelValues(status).Inc()
	}
}

// AddCitizens counts generated citizens.
func (m *Metrics) AddCitizens(n int) {
	if m != nil {
		m.CitizensGenerated.Add(float64(n))
	}
}

// ObserveScore records one assigned score.
func (m *Metrics) ObserveScore(score int) {
	if m != nil {
		m.ScoreDistribution.Observe(float64(score))
	}
}

// SetSelectionRate publishes a group's selection rate.
func (m *Metrics) SetSelectionRate(feature, group string, rate float64) {
	if m != nil {
		m.SelectionRate.WithLabelValues(feature, group).Set(rate)
	}
}

// SetDisparity publishes a feature's selection-rate gap.
func (m *Metrics) SetDisparity(feature string, gap float64) {
	if m != nil {
		m.DisparityGap.WithLabelValues(feature).Set(gap)
	}
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}
