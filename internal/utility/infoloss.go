package utility

import (
	"math"

	"github.com/samber/lo"
)

// shannonEntropy computes the Shannon entropy of the value frequency
// distribution, in bits.
func shannonEntropy(values []string) float64 {
	if len(values) == 0 {
		return 0
	}

	entropy := 0.0
	total := float64(len(values))
	for _, count := range lo.CountValues(values) {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}

	// Guard against floating point residue for degenerate columns.
	if math.Abs(entropy) < 1e-9 {
		return 0
	}
	return entropy
}

// informationLoss computes the retention ratios for one column. A raw
// column with a single distinct value (zero entropy) reports full
// retention rather than a division error.
func informationLoss(raw, anon []string) *InformationLossMetrics {
	uniqueRaw := len(lo.Uniq(raw))
	uniqueAnon := len(lo.Uniq(anon))

	uniqueRetained := 1.0
	if uniqueRaw > 1 {
		uniqueRetained = clamp01(float64(uniqueAnon) / float64(uniqueRaw))
	}

	entropyRaw := shannonEntropy(raw)
	entropyAnon := shannonEntropy(anon)

	entropyRetained := 1.0
	if entropyRaw > 0 {
		entropyRetained = clamp01(entropyAnon / entropyRaw)
	}

	score := (uniqueRetained + entropyRetained) / 2 * 100

	return &InformationLossMetrics{
		Status:            StatusComputed,
		UniqueOriginal:    uniqueRaw,
		UniqueAnonymized:  uniqueAnon,
		UniqueRetained:    uniqueRetained,
		EntropyOriginal:   entropyRaw,
		EntropyAnonymized: entropyAnon,
		EntropyRetained:   entropyRetained,
		Score:             score,
		Interpretation:    lossBand(score),
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// lossBand maps an information-retention score to its band.
func lossBand(score float64) string {
	switch {
	case score > 90:
		return "Minimal information loss (<10%)"
	case score > 75:
		return "Low information loss (10-25%)"
	case score > 50:
		return "Moderate information loss (25-50%)"
	default:
		return "High information loss (>50%)"
	}
}
