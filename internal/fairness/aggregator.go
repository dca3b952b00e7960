// Package fairness turns a scored population into per-group selection
// statistics. Selection depends only on each record's own score; there is no
// ground-truth label.
package fairness

import (
	"gonum.org/v1/gonum/stat"

	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/feature"
	"OptiLiveAudit/internal/scoring"
)

// DefaultThreshold is the score at or above which a citizen qualifies for housing.
const DefaultThreshold = 600

// ValidateThreshold rejects thresholds outside the score range.
func ValidateThreshold(threshold int) error {
	if threshold < scoring.MinScore || threshold > scoring.MaxScore {
		return domain.Invalidf("threshold must be within [%d, %d], got %d",
			scoring.MinScore, scoring.MaxScore, threshold)
	}
	return nil
}

// Aggregator computes GroupMetric rows for named sensitive features.
type Aggregator struct {
	registry *feature.Registry
}

// NewAggregator uses reg to resolve feature names; nil selects the default registry.
func NewAggregator(reg *feature.Registry) *Aggregator {
	if reg == nil {
		reg = feature.NewDefaultRegistry()
	}
	return &Aggregator{registry: reg}
}

type overall struct {
	selectionRate float64
	averageScore  float64
}

type group struct {
	value    string
	selected int
	scores   []float64
}

// Aggregate emits one block of rows per feature, in the order given, with
// groups in first-encountered order. Every row of a block carries the same
// dataset-wide baselines.
func (a *Aggregator) Aggregate(scored []domain.ScoredRecord, features []string, threshold int) ([]domain.GroupMetric, error) {
	if len(scored) == 0 {
		return nil, domain.Invalidf("no scored records to aggregate")
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	resolved, err := a.registry.ResolveAll(features)
	if err != nil {
		return nil, err
	}

	var metrics []domain.GroupMetric
	for _, f := range resolved {
		base := overallStats(scored, threshold)

		rows, err := groupStats(scored, f, threshold, base)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, rows...)
	}

	return metrics, nil
}

func overallStats(scored []domain.ScoredRecord, threshold int) overall {
	scores := make([]float64, len(scored))
	selected := 0
	for i, r := range scored {
		scores[i] = float64(r.SocialUtilityScore)
		if r.SocialUtilityScore >= threshold {
			selected++
		}
	}
	return overall{
		selectionRate: float64(selected) / float64(len(scored)),
		averageScore:  stat.Mean(scores, nil),
	}
}

func groupStats(scored []domain.ScoredRecord, f feature.Feature, threshold int, base overall) ([]domain.GroupMetric, error) {
	index := map[string]int{}
	var groups []*group

	for _, r := range scored {
		value := f.Value(r.CitizenRecord)
		i, ok := index[value]
		if !ok {
			i = len(groups)
			index[value] = i
			groups = append(groups, &group{value: value})
		}
		g := groups[i]
		g.scores = append(g.scores, float64(r.SocialUtilityScore))
		if r.SocialUtilityScore >= threshold {
			g.selected++
		}
	}

	rows := make([]domain.GroupMetric, 0, len(groups))
	for _, g := range groups {
		count := len(g.scores)
		if count == 0 {
			return nil, domain.EmptyGroupf("feature %s group %q has no members", f.Name(), g.value)
		}
		rows = append(rows, domain.GroupMetric{
			SensitiveFeature:       f.Name(),
			GroupValue:             g.value,
			Count:                  count,
			SelectionRate:          float64(g.selected) / float64(count),
			AverageRawScore:        stat.Mean(g.scores, nil),
			OverallSelectionRate:   base.selectionRate,
			OverallAverageRawScore: base.averageScore,
		})
	}
	return rows, nil
}
