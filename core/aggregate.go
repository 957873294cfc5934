package core

import (
	"github.com/mkohari/skillscope/schema"
)

// aggregateSubScores folds sub-metric scores into a single 0-100 dimension
// score. Sub-metrics that reported insufficient data are excluded and the
// remaining weights are renormalized, so the dimension score stays a true
// weighted mean of what was measurable. When nothing was measurable the
// dimension itself is insufficient.
//
// Iteration follows slice order, so the same input always produces the same
// bits.
func aggregateSubScores(subs []schema.SubScore) (float64, schema.ScoreStatus) {
	var weightSum, acc float64
	for _, s := range subs {
		if s.Status != schema.StatusOK {
			continue
		}
		weightSum += s.Weight
		acc += s.Weight * s.Score
	}

	if weightSum <= 0 {
		return 0, schema.StatusInsufficientData
	}
	return clampScore(acc / weightSum), schema.StatusOK
}

// aggregateOverall folds dimension scores into the overall 0-100 score using
// the configured dimension weights. Dimensions with insufficient data are
// excluded with the same renormalization rule. Returns nil when no dimension
// produced a score; the overall is never reported as zero in that case.
func aggregateOverall(dims []schema.DimensionScore) *float64 {
	var weightSum, acc float64
	for _, d := range dims {
		if d.Status != schema.StatusOK {
			continue
		}
		weightSum += d.Weight
		acc += d.Weight * d.Score
	}

	if weightSum <= 0 {
		return nil
	}
	overall := clampScore(acc / weightSum)
	return &overall
}

// clampScore bounds a score to [0, 100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// buildSubScore pairs a raw metric with its curve and weight. Raw metrics are
// passed as pointers so extractors can report "not measurable" explicitly
// instead of smuggling zeros.
func buildSubScore(key schema.SubKey, raw *float64, spec schema.CurveSpec, weight float64) schema.SubScore {
	if raw == nil {
		return schema.SubScore{Key: key, Weight: weight, Status: schema.StatusInsufficientData}
	}
	return schema.SubScore{
		Key:    key,
		Score:  evalCurve(spec, *raw),
		Weight: weight,
		Status: schema.StatusOK,
	}
}
