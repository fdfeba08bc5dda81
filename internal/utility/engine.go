// Package utility implements the utility metrics engine: given the raw
// and anonymized datasets plus the rule model, it quantifies how much
// statistical fidelity survived anonymization. Every metric family is
// three-state (computed, not applicable, error); results that were not
// computed never enter the aggregate as zeros.
package utility

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
	"github.com/raaihank/data-anonymizer/internal/ranges"
	"github.com/raaihank/data-anonymizer/internal/rules"
)

// Engine computes utility metrics for one run.
type Engine struct {
	logger *logger.Logger
}

// New creates a utility metrics engine.
func New(log *logger.Logger) *Engine {
	return &Engine{logger: log.WithComponent("utility")}
}

// Measure computes the full utility report for a raw/anonymized dataset
// pair. ruleFor returns the rule applied to a column, or nil if the
// column was left untouched.
func (e *Engine) Measure(raw, anon *dataset.Dataset, ruleFor func(column string) *rules.Rule) (*Report, error) {
	if err := raw.SameShape(anon); err != nil {
		return nil, fmt.Errorf("datasets are not comparable: %w", err)
	}

	report := &Report{
		Distribution:    make(map[string]*DistributionMetrics),
		InformationLoss: make(map[string]*InformationLossMetrics),
	}

	// Distribution preservation: numeric columns whose anonymized
	// values are numerically decodable.
	var corrColumns []string

	for _, rawCol := range raw.Columns {
		if rawCol.Kind != dataset.KindNumeric {
			continue
		}

		rule := ruleFor(rawCol.Name)
		if !numericEligible(rule) {
			report.Distribution[rawCol.Name] = &DistributionMetrics{
				Status: StatusNotApplicable,
				Error:  fmt.Sprintf("strategy %s produces non-numeric output", rule.Strategy),
			}
			continue
		}

		anonCol := anon.Column(rawCol.Name)
		rawVals, anonVals, err := alignNumeric(rawCol, anonCol)
		if err != nil {
			// A decode gap is a codec contract violation; the metric is
			// downgraded, never fatal.
			report.Distribution[rawCol.Name] = &DistributionMetrics{
				Status: StatusNotApplicable,
				Error:  err.Error(),
			}
			e.logger.Warn("distribution metric downgraded",
				zap.String("column", rawCol.Name),
				zap.Error(err),
			)
			continue
		}
		if len(rawVals) == 0 {
			report.Distribution[rawCol.Name] = &DistributionMetrics{
				Status: StatusError,
				Error:  "no comparable numeric values",
			}
			continue
		}

		report.Distribution[rawCol.Name] = distribution(rawVals, anonVals)
		corrColumns = append(corrColumns, rawCol.Name)
	}

	// Correlation preservation over the numeric columns that decoded.
	report.Correlation = e.measureCorrelation(raw, anon, corrColumns)

	// Information loss applies to every column, whatever the strategy.
	for _, rawCol := range raw.Columns {
		anonCol := anon.Column(rawCol.Name)
		report.InformationLoss[rawCol.Name] = informationLoss(rawCol.NonNull(), anonCol.NonNull())
	}

	e.aggregate(report)
	report.Recommendations = recommendations(report)

	e.logger.Info("utility measured",
		zap.Float64("overall_score", report.OverallScore),
		zap.String("band", report.OverallBand),
		zap.Bool("reduced_confidence", report.ReducedConfidence),
	)

	return report, nil
}

// measureCorrelation rebuilds the eligible numeric series over
// complete rows so every pair compares equal-length samples.
func (e *Engine) measureCorrelation(raw, anon *dataset.Dataset, columns []string) *CorrelationMetrics {
	if len(columns) < 2 {
		return &CorrelationMetrics{
			Status: StatusNotApplicable,
			Error:  "need at least 2 numeric columns for correlation analysis",
		}
	}

	rawSeries := make(map[string][]float64, len(columns))
	anonSeries := make(map[string][]float64, len(columns))
	rowRaw := make([]float64, len(columns))
	rowAnon := make([]float64, len(columns))

	for row := 0; row < raw.Rows(); row++ {
		complete := true
		for i, name := range columns {
			rawCell := raw.Column(name).Cells[row]
			anonCell := anon.Column(name).Cells[row]
			if rawCell.Null || anonCell.Null {
				complete = false
				break
			}

			rawVal, err := strconv.ParseFloat(rawCell.Value, 64)
			if err != nil {
				complete = false
				break
			}
			anonVal, err := ranges.Decode(anonCell.Value)
			if err != nil {
				complete = false
				break
			}
			rowRaw[i], rowAnon[i] = rawVal, anonVal
		}
		if !complete {
			continue
		}

		for i, name := range columns {
			rawSeries[name] = append(rawSeries[name], rowRaw[i])
			anonSeries[name] = append(anonSeries[name], rowAnon[i])
		}
	}

	return correlation(columns, rawSeries, anonSeries)
}

// numericEligible reports whether a strategy leaves a column usable for
// numeric statistics. Untouched and generalized columns qualify; hash,
// redaction and pseudonyms do not.
func numericEligible(rule *rules.Rule) bool {
	if rule == nil {
		return true
	}
	return rule.Strategy == rules.StrategyGeneralize
}

// alignNumeric pairs the raw and anonymized values of a column row by
// row, decoding generalized labels to their representative values.
func alignNumeric(rawCol, anonCol *dataset.Column) ([]float64, []float64, error) {
	rawVals := make([]float64, 0, len(rawCol.Cells))
	anonVals := make([]float64, 0, len(anonCol.Cells))

	for row := range rawCol.Cells {
		if rawCol.Cells[row].Null || anonCol.Cells[row].Null {
			continue
		}

		rawVal, err := strconv.ParseFloat(rawCol.Cells[row].Value, 64)
		if err != nil {
			continue
		}

		anonVal, err := ranges.Decode(anonCol.Cells[row].Value)
		if err != nil {
			var decodeErr *ranges.DecodeError
			if errors.As(err, &decodeErr) {
				return nil, nil, fmt.Errorf("column %q: %w", rawCol.Name, err)
			}
			continue
		}

		rawVals = append(rawVals, rawVal)
		anonVals = append(anonVals, anonVal)
	}

	return rawVals, anonVals, nil
}

// aggregate computes the overall score: the mean over every computed
// entry (one per distribution column, one for the correlation family,
// one per information-loss column). Families with nothing computed are
// excluded from the average and flag the report as reduced confidence.
func (e *Engine) aggregate(report *Report) {
	var scores []float64

	distComputed := 0
	for _, m := range report.Distribution {
		if m.Status == StatusComputed {
			scores = append(scores, m.Score)
			distComputed++
		}
	}

	corrComputed := report.Correlation != nil && report.Correlation.Status == StatusComputed
	if corrComputed {
		scores = append(scores, report.Correlation.Score)
	}

	lossComputed := 0
	for _, m := range report.InformationLoss {
		if m.Status == StatusComputed {
			scores = append(scores, m.Score)
			lossComputed++
		}
	}

	report.ReducedConfidence = distComputed == 0 || !corrComputed || lossComputed == 0

	if len(scores) == 0 {
		report.OverallScore = 0
		report.OverallBand = OverallBand(0)
		return
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	report.OverallScore = sum / float64(len(scores))
	report.OverallBand = OverallBand(report.OverallScore)
}

// recommendations derives follow-up advice from the computed metrics.
func recommendations(report *Report) []string {
	var recs []string

	if report.OverallScore < 70 {
		recs = append(recs, "Consider using less aggressive anonymization strategies")
	}

	var poorDist []string
	for col, m := range report.Distribution {
		if m.Status == StatusComputed && m.KSStatistic > 0.3 {
			poorDist = append(poorDist, col)
		}
	}
	if len(poorDist) > 0 {
		sort.Strings(poorDist)
		recs = append(recs, fmt.Sprintf("Improve distribution preservation for: %v", poorDist))
	}

	if report.Correlation != nil && report.Correlation.Status == StatusComputed &&
		report.Correlation.Similarity < 0.7 {
		recs = append(recs, "Preserve more precise numeric values to maintain correlations")
	}

	var highLoss []string
	for col, m := range report.InformationLoss {
		if m.Status == StatusComputed && m.UniqueRetained < 0.5 {
			highLoss = append(highLoss, col)
		}
	}
	if len(highLoss) > 0 {
		sort.Strings(highLoss)
		recs = append(recs, fmt.Sprintf("High information loss in: %v", highLoss))
	}

	if len(recs) == 0 {
		recs = append(recs, "Anonymization provides a good balance of privacy and utility")
	}

	return recs
}
