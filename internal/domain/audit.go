package domain

import "time"

// GroupMetric holds fairness statistics for one group of one sensitive feature.
// OverallSelectionRate and OverallAverageRawScore are dataset-wide baselines
// repeated on every row of the same feature.
type GroupMetric struct {
	SensitiveFeature       string  `json:"sensitiveFeature"`
	GroupValue             string  `json:"groupValue"`
	Count                  int     `json:"count"`
	SelectionRate          float64 `json:"selectionRate"`
	AverageRawScore        float64 `json:"averageRawScore"`
	OverallSelectionRate   float64 `json:"overallSelectionRate"`
	OverallAverageRawScore float64 `json:"overallAverageRawScore"`
}

// Disparity summarises the selection-rate gap across the groups of one feature.
type Disparity struct {
	SensitiveFeature   string  `json:"sensitiveFeature"`
	Gap                float64 `json:"gap"`
	Detected           bool    `json:"detected"`
	DisadvantagedGroup string  `json:"disadvantagedGroup"`
	AdvantagedGroup    string  `json:"advantagedGroup"`
}

// RunStatus enumerates audit run milestones.
type RunStatus string

const (
	RunGenerated  RunStatus = "generated"
	RunScored     RunStatus = "scored"
	RunAggregated RunStatus = "aggregated"
	RunCompleted  RunStatus = "completed"
)

// AuditRun identifies one execution of the generate, score, aggregate pipeline.
type AuditRun struct {
	ID         string    `json:"id"`
	Seed       uint64    `json:"seed"`
	Population int       `json:"population"`
	Threshold  int       `json:"threshold"`
	Features   []string  `json:"features"`
	Status     RunStatus `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditReport is the complete output of a successful run.
type AuditReport struct {
	Run         AuditRun       `json:"run"`
	Citizens    []ScoredRecord `json:"citizens,omitempty"`
	Metrics     []GroupMetric  `json:"metrics"`
	Disparities []Disparity    `json:"disparities"`
}

// DetectedDisparities returns only the features whose gap exceeded tolerance.
func (r AuditReport) DetectedDisparities() []Disparity {
	var out []Disparity
	for _, d := range r.Disparities {
		if d.Detected {
			out = append(out, d)
		}
	}
	return out
}
