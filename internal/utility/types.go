package utility

// Status is the three-state outcome of a metric computation. A metric
// that was not computed never collapses into a numeric default; only
// StatusComputed results carry weight in the aggregate.
type Status string

const (
	StatusComputed      Status = "computed"
	StatusNotApplicable Status = "not_applicable"
	StatusError         Status = "error"
)

// DistributionMetrics measures how well a column's value distribution
// survived anonymization.
type DistributionMetrics struct {
	Status         Status  `json:"status"`
	Error          string  `json:"error,omitempty"`
	KSStatistic    float64 `json:"ks_statistic"`
	MeanAbsDiff    float64 `json:"mean_absolute_diff"`
	MedianAbsDiff  float64 `json:"median_absolute_diff"`
	StdRatio       float64 `json:"std_ratio"`
	Score          float64 `json:"score"`
	Interpretation string  `json:"interpretation"`
}

// CorrelationMetrics measures how well pairwise correlations between
// numeric columns survived anonymization.
type CorrelationMetrics struct {
	Status         Status   `json:"status"`
	Error          string   `json:"error,omitempty"`
	Columns        []string `json:"columns,omitempty"`
	Similarity     float64  `json:"similarity"`
	MeanAbsDiff    float64  `json:"mean_absolute_diff"`
	MaxAbsDiff     float64  `json:"max_absolute_diff"`
	Score          float64  `json:"score"`
	Interpretation string   `json:"interpretation"`
}

// InformationLossMetrics measures how much of a column's information
// content (distinct values, entropy) survived anonymization. Ratios
// are clamped to [0, 1].
type InformationLossMetrics struct {
	Status            Status  `json:"status"`
	Error             string  `json:"error,omitempty"`
	UniqueOriginal    int     `json:"unique_values_original"`
	UniqueAnonymized  int     `json:"unique_values_anonymized"`
	UniqueRetained    float64 `json:"unique_values_retained"`
	EntropyOriginal   float64 `json:"entropy_original"`
	EntropyAnonymized float64 `json:"entropy_anonymized"`
	EntropyRetained   float64 `json:"entropy_retained"`
	Score             float64 `json:"score"`
	Interpretation    string  `json:"interpretation"`
}

// Report is the complete utility metric set for one run.
type Report struct {
	OverallScore      float64                            `json:"overall_utility_score"`
	OverallBand       string                             `json:"overall_band"`
	ReducedConfidence bool                               `json:"reduced_confidence"`
	Distribution      map[string]*DistributionMetrics    `json:"distribution_preservation"`
	Correlation       *CorrelationMetrics                `json:"correlation_preservation,omitempty"`
	InformationLoss   map[string]*InformationLossMetrics `json:"information_loss"`
	Recommendations   []string                           `json:"recommendations,omitempty"`
}

// OverallBand maps a 0-100 aggregate score to its interpretation band.
// Boundaries are contractual: <60 Poor, 60-75 Fair, 75-90 Good,
// >=90 Excellent.
func OverallBand(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 60:
		return "Fair"
	default:
		return "Poor"
	}
}

// scoreBand maps a per-metric 0-100 score to its preservation band:
// >90 excellent, 80-90 good, 70-80 fair, <70 poor.
func scoreBand(score float64) string {
	switch {
	case score > 90:
		return "Excellent preservation (>90%)"
	case score >= 80:
		return "Good preservation (80-90%)"
	case score >= 70:
		return "Fair preservation (70-80%)"
	default:
		return "Poor preservation (<70%)"
	}
}
