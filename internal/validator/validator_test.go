package validator

import (
	"testing"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
)

func column(name string, values ...string) *dataset.Column {
	cells := make([]dataset.Cell, len(values))
	for i, v := range values {
		cells[i] = dataset.Cell{Value: v, Null: v == ""}
	}
	return &dataset.Column{Name: name, Kind: dataset.KindCategorical, Cells: cells}
}

// Six records in two equivalence classes of size 3 over (age, zip).
func groupedDataset() *dataset.Dataset {
	return &dataset.Dataset{Columns: []*dataset.Column{
		column("age", "20-24", "20-24", "20-24", "30-34", "30-34", "30-34"),
		column("zip", "10000", "10000", "10000", "20000", "20000", "20000"),
		column("diagnosis", "flu", "cold", "flu", "flu", "asthma", "cold"),
	}}
}

func TestKAnonymity(t *testing.T) {
	t.Run("PassesAtThreshold", func(t *testing.T) {
		v := New(Thresholds{KAnonymity: KAnonymityConfig{
			Enabled:          true,
			MinimumK:         3,
			QuasiIdentifiers: []string{"age", "zip"},
		}}, logger.NewNop())

		result := v.Validate(groupedDataset())
		check := result.Checks["k_anonymity"]
		if check == nil || !check.Passed {
			t.Fatalf("k=3 dataset should pass minimum_k=3: %+v", check)
		}
		if check.Details["min_k"] != 3 {
			t.Errorf("min_k = %v, want 3", check.Details["min_k"])
		}
		if check.Details["equivalence_classes"] != 2 {
			t.Errorf("equivalence_classes = %v, want 2", check.Details["equivalence_classes"])
		}
		if !result.Passed {
			t.Error("overall result should pass")
		}
	})

	t.Run("FailsAboveThreshold", func(t *testing.T) {
		v := New(Thresholds{KAnonymity: KAnonymityConfig{
			Enabled:          true,
			MinimumK:         5,
			QuasiIdentifiers: []string{"age", "zip"},
		}}, logger.NewNop())

		result := v.Validate(groupedDataset())
		if result.Passed {
			t.Error("k=3 dataset should fail minimum_k=5")
		}
	})

	t.Run("MissingQuasiIdentifiersFail", func(t *testing.T) {
		v := New(Thresholds{KAnonymity: KAnonymityConfig{
			Enabled:          true,
			QuasiIdentifiers: []string{"nonexistent"},
		}}, logger.NewNop())

		if v.Validate(groupedDataset()).Passed {
			t.Error("missing quasi-identifier columns should fail the check")
		}
	})

	t.Run("DefaultKIsFive", func(t *testing.T) {
		v := New(Thresholds{KAnonymity: KAnonymityConfig{
			Enabled:          true,
			QuasiIdentifiers: []string{"age", "zip"},
		}}, logger.NewNop())

		check := v.Validate(groupedDataset()).Checks["k_anonymity"]
		if check.Details["required_k"] != 5 {
			t.Errorf("required_k = %v, want default 5", check.Details["required_k"])
		}
	})
}

func TestLDiversity(t *testing.T) {
	thresholds := func(l int) Thresholds {
		return Thresholds{
			KAnonymity: KAnonymityConfig{QuasiIdentifiers: []string{"age", "zip"}},
			LDiversity: LDiversityConfig{
				Enabled:             true,
				MinimumL:            l,
				SensitiveAttributes: []string{"diagnosis"},
			},
		}
	}

	t.Run("MinimumDistinctPerGroup", func(t *testing.T) {
		// Group one has {flu, cold}, group two {flu, asthma, cold}.
		check := New(thresholds(2), logger.NewNop()).Validate(groupedDataset()).Checks["l_diversity"]
		if !check.Passed {
			t.Fatalf("l=2 dataset should pass minimum_l=2: %+v", check)
		}
		if check.Details["min_l"] != 2 {
			t.Errorf("min_l = %v, want 2", check.Details["min_l"])
		}
	})

	t.Run("FailsAboveThreshold", func(t *testing.T) {
		if New(thresholds(3), logger.NewNop()).Validate(groupedDataset()).Passed {
			t.Error("l=2 dataset should fail minimum_l=3")
		}
	})

	t.Run("NoSensitiveAttributesPasses", func(t *testing.T) {
		v := New(Thresholds{LDiversity: LDiversityConfig{Enabled: true}}, logger.NewNop())
		if !v.Validate(groupedDataset()).Passed {
			t.Error("check without sensitive attributes should pass vacuously")
		}
	})
}

func TestReidentificationRisk(t *testing.T) {
	// Eight records: a singleton and a pair (high risk) plus a class of
	// five (low risk).
	riskDataset := &dataset.Dataset{Columns: []*dataset.Column{
		column("zip", "1", "2", "2", "3", "3", "3", "3", "3"),
	}}

	t.Run("TiersCounted", func(t *testing.T) {
		v := New(Thresholds{ReidentificationRisk: RiskConfig{
			Enabled:        true,
			MaxRiskPercent: 50,
		}, KAnonymity: KAnonymityConfig{QuasiIdentifiers: []string{"zip"}}}, logger.NewNop())

		check := v.Validate(riskDataset).Checks["reidentification_risk"]
		if check.Details["high_risk_count"] != 3 {
			t.Errorf("high_risk_count = %v, want 3", check.Details["high_risk_count"])
		}
		if check.Details["low_risk_count"] != 5 {
			t.Errorf("low_risk_count = %v, want 5", check.Details["low_risk_count"])
		}
		if check.Details["high_risk_percent"] != 37.5 {
			t.Errorf("high_risk_percent = %v, want 37.5", check.Details["high_risk_percent"])
		}
		if !check.Passed {
			t.Error("37.5%% risk should pass a 50%% threshold")
		}
	})

	t.Run("FailsOverThreshold", func(t *testing.T) {
		v := New(Thresholds{ReidentificationRisk: RiskConfig{
			Enabled:        true,
			MaxRiskPercent: 10,
		}, KAnonymity: KAnonymityConfig{QuasiIdentifiers: []string{"zip"}}}, logger.NewNop())

		if v.Validate(riskDataset).Passed {
			t.Error("37.5%% risk should fail a 10%% threshold")
		}
	})
}

func TestNullsGroupTogether(t *testing.T) {
	ds := &dataset.Dataset{Columns: []*dataset.Column{
		column("age", "", "", ""),
	}}
	groups, _ := groupSizes(ds, []string{"age"})
	if len(groups) != 1 {
		t.Fatalf("null cells should form one equivalence class, got %d", len(groups))
	}
}

func TestDisabledChecksSkipped(t *testing.T) {
	result := New(Thresholds{}, logger.NewNop()).Validate(groupedDataset())
	if !result.Passed {
		t.Error("no enabled checks should pass trivially")
	}
	if len(result.Checks) != 0 {
		t.Errorf("checks = %d, want 0", len(result.Checks))
	}
}
