package utility

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// correlation compares the pairwise Pearson correlation matrices of
// the raw and decoded-anonymized numeric columns. Similarity is
// 1 - mean absolute difference over off-diagonal pairs.
func correlation(columns []string, raw, anon map[string][]float64) *CorrelationMetrics {
	if len(columns) < 2 {
		return &CorrelationMetrics{
			Status: StatusNotApplicable,
			Error:  "need at least 2 numeric columns for correlation analysis",
		}
	}

	var meanAbs, maxAbs float64
	pairs := 0

	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			a, b := columns[i], columns[j]

			rawCorr, err1 := pearson(raw[a], raw[b])
			anonCorr, err2 := pearson(anon[a], anon[b])
			if err1 != nil || err2 != nil {
				// Zero-variance pairs carry no correlation signal.
				continue
			}

			diff := math.Abs(rawCorr - anonCorr)
			meanAbs += diff
			if diff > maxAbs {
				maxAbs = diff
			}
			pairs++
		}
	}

	if pairs == 0 {
		return &CorrelationMetrics{
			Status:  StatusNotApplicable,
			Columns: columns,
			Error:   "no valid correlation pairs to compare",
		}
	}

	meanAbs /= float64(pairs)
	similarity := 1 - meanAbs
	score := math.Min(100, math.Max(0, similarity*100))

	return &CorrelationMetrics{
		Status:         StatusComputed,
		Columns:        columns,
		Similarity:     similarity,
		MeanAbsDiff:    meanAbs,
		MaxAbsDiff:     maxAbs,
		Score:          score,
		Interpretation: scoreBand(score),
	}
}

// pearson wraps the library call with a length guard so row-count
// mismatches surface as errors rather than silent truncation.
func pearson(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("series length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("need at least 2 observations, got %d", len(a))
	}
	return stats.Pearson(a, b)
}
