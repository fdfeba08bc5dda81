// Package validator runs best-effort privacy checks over an anonymized
// dataset: k-anonymity, l-diversity and re-identification risk. These
// are threshold checks against the configured quasi-identifiers, not
// formal guarantees.
package validator

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
)

// Thresholds configures which checks run and their limits.
type Thresholds struct {
	KAnonymity           KAnonymityConfig `yaml:"k_anonymity" mapstructure:"k_anonymity"`
	LDiversity           LDiversityConfig `yaml:"l_diversity" mapstructure:"l_diversity"`
	ReidentificationRisk RiskConfig       `yaml:"reidentification_risk" mapstructure:"reidentification_risk"`
}

// KAnonymityConfig configures the minimum equivalence-class size check.
type KAnonymityConfig struct {
	Enabled          bool     `yaml:"enabled" mapstructure:"enabled"`
	MinimumK         int      `yaml:"minimum_k" mapstructure:"minimum_k"`
	QuasiIdentifiers []string `yaml:"quasi_identifiers" mapstructure:"quasi_identifiers"`
}

// LDiversityConfig configures the sensitive-value diversity check.
type LDiversityConfig struct {
	Enabled             bool     `yaml:"enabled" mapstructure:"enabled"`
	MinimumL            int      `yaml:"minimum_l" mapstructure:"minimum_l"`
	SensitiveAttributes []string `yaml:"sensitive_attributes" mapstructure:"sensitive_attributes"`
}

// RiskConfig configures the re-identification risk check.
type RiskConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxRiskPercent float64 `yaml:"max_risk_percent" mapstructure:"max_risk_percent"`
}

// CheckResult is the outcome of a single privacy check.
type CheckResult struct {
	Passed  bool               `json:"passed"`
	Message string             `json:"message"`
	Details map[string]float64 `json:"details,omitempty"`
}

// Result aggregates all enabled checks.
type Result struct {
	Passed bool                    `json:"passed"`
	Checks map[string]*CheckResult `json:"checks"`
}

// Validator runs the configured privacy checks.
type Validator struct {
	thresholds Thresholds
	logger     *logger.Logger
}

// New creates a validator.
func New(thresholds Thresholds, log *logger.Logger) *Validator {
	return &Validator{
		thresholds: thresholds,
		logger:     log.WithComponent("validator"),
	}
}

// Validate runs every enabled check against the anonymized dataset.
func (v *Validator) Validate(ds *dataset.Dataset) *Result {
	result := &Result{Passed: true, Checks: make(map[string]*CheckResult)}

	if v.thresholds.KAnonymity.Enabled {
		check := v.checkKAnonymity(ds)
		result.Checks["k_anonymity"] = check
		result.Passed = result.Passed && check.Passed
	}

	if v.thresholds.LDiversity.Enabled {
		check := v.checkLDiversity(ds)
		result.Checks["l_diversity"] = check
		result.Passed = result.Passed && check.Passed
	}

	if v.thresholds.ReidentificationRisk.Enabled {
		check := v.checkReidentificationRisk(ds)
		result.Checks["reidentification_risk"] = check
		result.Passed = result.Passed && check.Passed
	}

	v.logger.Info("privacy validation completed",
		zap.Bool("passed", result.Passed),
		zap.Int("checks", len(result.Checks)),
	)

	return result
}

// groupSizes counts the equivalence classes formed by the available
// quasi-identifier columns: every record keyed by its combined
// quasi-identifier values.
func groupSizes(ds *dataset.Dataset, quasiIdentifiers []string) (map[string]int, []string) {
	available := lo.Filter(quasiIdentifiers, func(name string, _ int) bool {
		return ds.Column(name) != nil
	})
	if len(available) == 0 {
		return nil, nil
	}

	groups := make(map[string]int)
	keys := make([]string, ds.Rows())
	for row := 0; row < ds.Rows(); row++ {
		parts := make([]string, len(available))
		for i, name := range available {
			cell := ds.Column(name).Cells[row]
			if cell.Null {
				parts[i] = "\x00null"
			} else {
				parts[i] = cell.Value
			}
		}
		key := strings.Join(parts, "\x1f")
		groups[key]++
		keys[row] = key
	}

	return groups, keys
}

func (v *Validator) checkKAnonymity(ds *dataset.Dataset) *CheckResult {
	cfg := v.thresholds.KAnonymity
	requiredK := cfg.MinimumK
	if requiredK <= 0 {
		requiredK = 5
	}

	groups, _ := groupSizes(ds, cfg.QuasiIdentifiers)
	if groups == nil {
		return &CheckResult{Passed: false, Message: "no quasi-identifiers found in dataset"}
	}

	minK := ds.Rows()
	sum := 0
	for _, size := range groups {
		if size < minK {
			minK = size
		}
		sum += size
	}
	avgK := float64(sum) / float64(len(groups))

	passed := minK >= requiredK
	message := fmt.Sprintf("k-anonymity %d meets threshold %d", minK, requiredK)
	if !passed {
		message = fmt.Sprintf("k-anonymity %d below threshold %d", minK, requiredK)
	}

	return &CheckResult{
		Passed:  passed,
		Message: message,
		Details: map[string]float64{
			"min_k":               float64(minK),
			"avg_k":               avgK,
			"required_k":          float64(requiredK),
			"equivalence_classes": float64(len(groups)),
		},
	}
}

func (v *Validator) checkLDiversity(ds *dataset.Dataset) *CheckResult {
	cfg := v.thresholds.LDiversity
	requiredL := cfg.MinimumL
	if requiredL <= 0 {
		requiredL = 2
	}

	available := lo.Filter(cfg.SensitiveAttributes, func(name string, _ int) bool {
		return ds.Column(name) != nil
	})
	if len(available) == 0 {
		return &CheckResult{Passed: true, Message: "no sensitive attributes specified or found"}
	}

	_, keys := groupSizes(ds, v.thresholds.KAnonymity.QuasiIdentifiers)
	if keys == nil {
		return &CheckResult{Passed: false, Message: "no quasi-identifiers found for l-diversity check"}
	}

	// Distinct sensitive values per equivalence class, per attribute.
	minL := ds.Rows() + 1
	for _, attr := range available {
		col := ds.Column(attr)
		distinct := make(map[string]map[string]struct{})
		for row, key := range keys {
			if distinct[key] == nil {
				distinct[key] = make(map[string]struct{})
			}
			distinct[key][col.Cells[row].Value] = struct{}{}
		}
		for _, values := range distinct {
			if len(values) < minL {
				minL = len(values)
			}
		}
	}

	passed := minL >= requiredL
	message := fmt.Sprintf("l-diversity %d meets threshold %d", minL, requiredL)
	if !passed {
		message = fmt.Sprintf("l-diversity %d below threshold %d", minL, requiredL)
	}

	return &CheckResult{
		Passed:  passed,
		Message: message,
		Details: map[string]float64{
			"min_l":      float64(minL),
			"required_l": float64(requiredL),
		},
	}
}

// checkReidentificationRisk counts records in equivalence classes of
// size <= 2 as high risk.
func (v *Validator) checkReidentificationRisk(ds *dataset.Dataset) *CheckResult {
	cfg := v.thresholds.ReidentificationRisk
	maxRisk := cfg.MaxRiskPercent
	if maxRisk <= 0 {
		maxRisk = 5.0
	}

	groups, keys := groupSizes(ds, v.thresholds.KAnonymity.QuasiIdentifiers)
	if groups == nil {
		return &CheckResult{Passed: false, Message: "no quasi-identifiers found for risk assessment"}
	}

	highRisk, mediumRisk, lowRisk := 0, 0, 0
	for _, key := range keys {
		switch size := groups[key]; {
		case size <= 2:
			highRisk++
		case size <= 4:
			mediumRisk++
		default:
			lowRisk++
		}
	}

	total := float64(ds.Rows())
	highRiskPercent := float64(highRisk) / total * 100

	passed := highRiskPercent <= maxRisk
	message := fmt.Sprintf("re-identification risk %.1f%% below threshold %.1f%%", highRiskPercent, maxRisk)
	if !passed {
		message = fmt.Sprintf("re-identification risk %.1f%% exceeds threshold %.1f%%", highRiskPercent, maxRisk)
	}

	return &CheckResult{
		Passed:  passed,
		Message: message,
		Details: map[string]float64{
			"high_risk_percent":   highRiskPercent,
			"high_risk_count":     float64(highRisk),
			"medium_risk_count":   float64(mediumRisk),
			"low_risk_count":      float64(lowRisk),
			"max_risk_percent":    maxRisk,
			"equivalence_classes": float64(len(groups)),
		},
	}
}
