package utility

import (
	"math"
	"testing"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
	"github.com/raaihank/data-anonymizer/internal/rules"
)

func column(name string, kind dataset.Kind, values ...string) *dataset.Column {
	cells := make([]dataset.Cell, len(values))
	for i, v := range values {
		cells[i] = dataset.Cell{Value: v, Null: v == ""}
	}
	return &dataset.Column{Name: name, Kind: kind, Cells: cells}
}

func ruleMap(t *testing.T, specs map[string][2]interface{}) func(string) *rules.Rule {
	t.Helper()
	compiled := make(map[string]*rules.Rule)
	for piiType, spec := range specs {
		rule, err := rules.Compile(piiType, spec[0].(string), spec[1].(map[string]interface{}))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		compiled[piiType] = rule
	}
	return func(name string) *rules.Rule { return compiled[name] }
}

func TestKSStatistic(t *testing.T) {
	t.Run("IdenticalSamples", func(t *testing.T) {
		a := []float64{1, 2, 3, 4, 5}
		if ks := ksStatistic(a, a); ks != 0 {
			t.Errorf("KS of identical samples = %v, want 0", ks)
		}
	})

	t.Run("DisjointSamples", func(t *testing.T) {
		if ks := ksStatistic([]float64{1, 2, 3}, []float64{10, 11, 12}); ks != 1 {
			t.Errorf("KS of disjoint samples = %v, want 1", ks)
		}
	})

	t.Run("HalfShifted", func(t *testing.T) {
		// CDFs diverge by exactly 0.5 when half the mass moves past
		// the other sample's support.
		a := []float64{1, 1, 5, 5}
		b := []float64{1, 1, 9, 9}
		if ks := ksStatistic(a, b); ks != 0.5 {
			t.Errorf("KS = %v, want 0.5", ks)
		}
	})
}

func TestShannonEntropy(t *testing.T) {
	t.Run("UniformTwoValues", func(t *testing.T) {
		got := shannonEntropy([]string{"a", "a", "b", "b"})
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("entropy = %v, want 1.0", got)
		}
	})

	t.Run("SingleValueIsZero", func(t *testing.T) {
		if got := shannonEntropy([]string{"a", "a", "a"}); got != 0 {
			t.Errorf("entropy = %v, want 0", got)
		}
	})

	t.Run("EmptyIsZero", func(t *testing.T) {
		if got := shannonEntropy(nil); got != 0 {
			t.Errorf("entropy = %v, want 0", got)
		}
	})
}

func TestInformationLoss(t *testing.T) {
	t.Run("HashPreservesDistinctness", func(t *testing.T) {
		m := informationLoss([]string{"a", "b", "c"}, []string{"x1", "x2", "x3"})
		if m.UniqueRetained != 1.0 || m.EntropyRetained != 1.0 {
			t.Errorf("retention = %v/%v, want 1.0/1.0", m.UniqueRetained, m.EntropyRetained)
		}
	})

	t.Run("FullRedactionLosesEverything", func(t *testing.T) {
		m := informationLoss([]string{"a", "b", "c", "d"}, []string{"[REDACTED]", "[REDACTED]", "[REDACTED]", "[REDACTED]"})
		if m.UniqueRetained != 0.25 {
			t.Errorf("unique retained = %v, want 0.25", m.UniqueRetained)
		}
		if m.EntropyRetained != 0 {
			t.Errorf("entropy retained = %v, want 0", m.EntropyRetained)
		}
	})

	t.Run("SingleDistinctRawValueReportsFullRetention", func(t *testing.T) {
		m := informationLoss([]string{"same", "same", "same"}, []string{"x", "x", "x"})
		if m.UniqueRetained != 1.0 || m.EntropyRetained != 1.0 {
			t.Errorf("degenerate column retention = %v/%v, want 1.0/1.0",
				m.UniqueRetained, m.EntropyRetained)
		}
	})
}

func TestOverallBand(t *testing.T) {
	// Band boundaries are contractual values.
	cases := map[float64]string{
		0:     "Poor",
		59.99: "Poor",
		60:    "Fair",
		74.99: "Fair",
		75:    "Good",
		89.99: "Good",
		90:    "Excellent",
		100:   "Excellent",
	}
	for score, want := range cases {
		if got := OverallBand(score); got != want {
			t.Errorf("OverallBand(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestMeasureGeneralizedColumns(t *testing.T) {
	// Ages spread over several bins; anonymized values are the labels
	// the strategy engine would emit under bin_size=5, min=0, max=120.
	raw := &dataset.Dataset{Columns: []*dataset.Column{
		column("age", dataset.KindNumeric, "21", "23", "32", "34", "41", "43", "52", "54"),
		column("income", dataset.KindNumeric, "42000", "46000", "64000", "68000", "82000", "86000", "104000", "108000"),
	}}
	anon := &dataset.Dataset{Columns: []*dataset.Column{
		column("age", dataset.KindNumeric, "20-24", "20-24", "30-34", "30-34", "40-44", "40-44", "50-54", "50-54"),
		column("income", dataset.KindNumeric, "40000-44999", "45000-49999", "60000-64999", "65000-69999", "80000-84999", "85000-89999", "100000-104999", "105000-109999"),
	}}

	ruleFor := ruleMap(t, map[string][2]interface{}{
		"age":    {"generalize", map[string]interface{}{"bin_size": 5, "min_value": 0, "max_value": 120}},
		"income": {"generalize", map[string]interface{}{"bin_size": 5000, "min_value": 0, "max_value": 200000}},
	})

	report, err := New(logger.NewNop()).Measure(raw, anon, ruleFor)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	t.Run("DistributionComputedFromDecodedLabels", func(t *testing.T) {
		for _, col := range []string{"age", "income"} {
			m := report.Distribution[col]
			if m == nil || m.Status != StatusComputed {
				t.Fatalf("%s distribution not computed: %+v", col, m)
			}
			if m.Score <= 0 || m.Score > 100 {
				t.Errorf("%s score out of range: %v", col, m.Score)
			}
		}
	})

	t.Run("CorrelationComputed", func(t *testing.T) {
		if report.Correlation.Status != StatusComputed {
			t.Fatalf("correlation not computed: %+v", report.Correlation)
		}
		// Bin midpoints preserve monotone structure, so the preserved
		// correlation should stay high.
		if report.Correlation.Similarity < 0.9 {
			t.Errorf("similarity = %v, want > 0.9", report.Correlation.Similarity)
		}
	})

	t.Run("AllFamiliesComputed", func(t *testing.T) {
		if report.ReducedConfidence {
			t.Error("all families computed, confidence should not be reduced")
		}
	})
}

// A dataset containing only hash/redact columns yields an overall score
// computed from information loss alone; distribution and correlation
// are excluded, never zero-penalized.
func TestMeasureNonNumericStrategies(t *testing.T) {
	raw := &dataset.Dataset{Columns: []*dataset.Column{
		column("income", dataset.KindNumeric, "42000", "64000", "82000"),
		column("email", dataset.KindCategorical, "a@x.com", "b@x.com", "c@x.com"),
	}}
	anon := &dataset.Dataset{Columns: []*dataset.Column{
		column("income", dataset.KindNumeric, "h1", "h2", "h3"),
		column("email", dataset.KindCategorical, "[REDACTED]", "[REDACTED]", "[REDACTED]"),
	}}

	ruleFor := ruleMap(t, map[string][2]interface{}{
		"income": {"hash", map[string]interface{}{"algorithm": "sha256"}},
		"email":  {"redact_full", map[string]interface{}{}},
	})

	report, err := New(logger.NewNop()).Measure(raw, anon, ruleFor)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	t.Run("NumericMetricsNotApplicable", func(t *testing.T) {
		if report.Distribution["income"].Status != StatusNotApplicable {
			t.Errorf("hashed numeric column should be not_applicable, got %+v",
				report.Distribution["income"])
		}
		if report.Correlation.Status != StatusNotApplicable {
			t.Errorf("correlation should be not_applicable, got %+v", report.Correlation)
		}
	})

	t.Run("OverallFromInformationLossAlone", func(t *testing.T) {
		want := (report.InformationLoss["income"].Score + report.InformationLoss["email"].Score) / 2
		if math.Abs(report.OverallScore-want) > 1e-9 {
			t.Errorf("overall = %v, want mean of information-loss scores %v", report.OverallScore, want)
		}
		// The hash column retains full distinctness; excluding the
		// numeric families must not drag the score toward zero.
		if report.OverallScore < report.InformationLoss["email"].Score {
			t.Errorf("overall %v below weakest family member %v: inapplicable families leaked in as zeros",
				report.OverallScore, report.InformationLoss["email"].Score)
		}
	})

	t.Run("ReducedConfidenceFlagged", func(t *testing.T) {
		if !report.ReducedConfidence {
			t.Error("skipped families must flag reduced confidence")
		}
	})
}

// Four generalized columns whose distribution scores span the
// excellent/excellent/good/poor bands, with correlation similarity near
// 97.7%: the flat mean over all computed entries must land the overall
// score in the Fair band, around 67-68.
func TestAggregateMixedBands(t *testing.T) {
	dist := map[string]float64{
		"age":                95.0, // excellent
		"income":             93.0, // excellent
		"transaction_amount": 85.0, // good
		"purchase_count":     42.0, // poor
	}
	loss := map[string]float64{
		"age":                52.0,
		"income":             48.0,
		"transaction_amount": 55.0,
		"purchase_count":     40.0,
	}

	report := &Report{
		Distribution:    make(map[string]*DistributionMetrics),
		InformationLoss: make(map[string]*InformationLossMetrics),
		Correlation: &CorrelationMetrics{
			Status:     StatusComputed,
			Similarity: 0.977,
			Score:      97.7,
		},
	}
	for col, score := range dist {
		report.Distribution[col] = &DistributionMetrics{Status: StatusComputed, Score: score}
	}
	for col, score := range loss {
		report.InformationLoss[col] = &InformationLossMetrics{Status: StatusComputed, Score: score}
	}

	New(logger.NewNop()).aggregate(report)

	if report.OverallScore < 67 || report.OverallScore > 68 {
		t.Errorf("overall = %v, want between 67 and 68", report.OverallScore)
	}
	if report.OverallBand != "Fair" {
		t.Errorf("band = %q, want Fair", report.OverallBand)
	}
	if report.ReducedConfidence {
		t.Error("all families computed, confidence should not be reduced")
	}
}

func TestMeasureDecodeGapDowngrades(t *testing.T) {
	raw := &dataset.Dataset{Columns: []*dataset.Column{
		column("age", dataset.KindNumeric, "21", "32"),
	}}
	anon := &dataset.Dataset{Columns: []*dataset.Column{
		column("age", dataset.KindNumeric, "20-24", "thirty-ish"),
	}}

	ruleFor := ruleMap(t, map[string][2]interface{}{
		"age": {"generalize", map[string]interface{}{"bin_size": 5, "min_value": 0, "max_value": 120}},
	})

	report, err := New(logger.NewNop()).Measure(raw, anon, ruleFor)
	if err != nil {
		t.Fatalf("Measure should not fail on a decode gap: %v", err)
	}
	if report.Distribution["age"].Status != StatusNotApplicable {
		t.Errorf("decode gap should downgrade the metric, got %+v", report.Distribution["age"])
	}
}

func TestScoreBands(t *testing.T) {
	for _, tc := range []struct {
		score float64
		want  string
	}{
		{95, "Excellent preservation (>90%)"},
		{85, "Good preservation (80-90%)"},
		{75, "Fair preservation (70-80%)"},
		{50, "Poor preservation (<70%)"},
	} {
		if got := scoreBand(tc.score); got != tc.want {
			t.Errorf("scoreBand(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
