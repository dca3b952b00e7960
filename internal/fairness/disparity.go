package fairness

import "OptiLiveAudit/internal/domain"

// DefaultDisparityTolerance is the selection-rate gap above which a feature is flagged.
const DefaultDisparityTolerance = 0.10

// Disparities computes max(selectionRate) - min(selectionRate) for each
// feature block in metrics, in block order. Ties pick the first group seen.
func Disparities(metrics []domain.GroupMetric, tolerance float64) []domain.Disparity {
	var (
		out   []domain.Disparity
		index = map[string]int{}
		minAt = map[string]domain.GroupMetric{}
		maxAt = map[string]domain.GroupMetric{}
	)

	for _, m := range metrics {
		if _, ok := index[m.SensitiveFeature]; !ok {
			index[m.SensitiveFeature] = len(out)
			out = append(out, domain.Disparity{SensitiveFeature: m.SensitiveFeature})
			minAt[m.SensitiveFeature] = m
			maxAt[m.SensitiveFeature] = m
			continue
		}
		if m.SelectionRate < minAt[m.SensitiveFeature].SelectionRate {
			minAt[m.SensitiveFeature] = m
		}
		if m.SelectionRate > maxAt[m.SensitiveFeature].SelectionRate {
			maxAt[m.SensitiveFeature] = m
		}
	}

	for i := range out {
		lo, hi := minAt[out[i].SensitiveFeature], maxAt[out[i].SensitiveFeature]
		out[i].Gap = hi.SelectionRate - lo.SelectionRate
		out[i].Detected = out[i].Gap > tolerance
		out[i].DisadvantagedGroup = lo.GroupValue
		out[i].AdvantagedGroup = hi.GroupValue
	}
	return out
}
