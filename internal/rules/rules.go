// Package rules models the per-field anonymization policy: a closed
// set of strategy variants, each carrying its own parameter record,
// validated exhaustively when the rule file is loaded rather than
// dispatched dynamically at use time.
package rules

import (
	"fmt"
	"slices"

	"github.com/spf13/cast"

	"github.com/raaihank/data-anonymizer/internal/ranges"
)

// ValidationError describes a rule that failed load-time validation.
type ValidationError struct {
	PIIType string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rule for %q: %s", e.PIIType, e.Reason)
}

func invalid(piiType, format string, args ...interface{}) error {
	return &ValidationError{PIIType: piiType, Reason: fmt.Sprintf(format, args...)}
}

var hashAlgorithms = []string{"sha256", "sha512", "md5"}

// Compile builds a validated Rule from the raw strategy name and
// parameter map of a rule file entry.
func Compile(piiType, strategy string, params map[string]interface{}) (*Rule, error) {
	rule := &Rule{PIIType: piiType, Strategy: Strategy(strategy)}

	switch rule.Strategy {
	case StrategyHash:
		p, err := compileHash(piiType, params)
		if err != nil {
			return nil, err
		}
		rule.Hash = p

	case StrategyRedactFull:
		replacement := "[REDACTED]"
		if raw, ok := params["replacement"]; ok {
			replacement = cast.ToString(raw)
		}
		rule.RedactFull = &RedactFullParams{Replacement: replacement}

	case StrategyRedactPartial:
		p, err := compileRedactPartial(piiType, params)
		if err != nil {
			return nil, err
		}
		rule.RedactPartial = p

	case StrategyPseudonymize:
		if _, ok := params["seed_based"]; !ok {
			return nil, invalid(piiType, "pseudonymize requires seed_based")
		}
		rule.Pseudonymize = &PseudonymizeParams{
			SeedBased: cast.ToBool(params["seed_based"]),
			Seed:      cast.ToUint64(params["seed"]),
		}

	case StrategyGeneralize:
		p, err := compileGeneralize(piiType, params)
		if err != nil {
			return nil, err
		}
		rule.Generalize = p

	default:
		return nil, invalid(piiType, "unknown strategy %q", strategy)
	}

	return rule, nil
}

func compileHash(piiType string, params map[string]interface{}) (*HashParams, error) {
	algorithm := cast.ToString(params["algorithm"])
	if algorithm == "" {
		return nil, invalid(piiType, "hash requires algorithm")
	}
	if !slices.Contains(hashAlgorithms, algorithm) {
		return nil, invalid(piiType, "hash algorithm must be one of %v, got %q", hashAlgorithms, algorithm)
	}
	return &HashParams{
		Algorithm: algorithm,
		Salt:      cast.ToString(params["salt"]),
	}, nil
}

func compileRedactPartial(piiType string, params map[string]interface{}) (*RedactPartialParams, error) {
	rawVisible, ok := params["visible_chars"]
	if !ok {
		return nil, invalid(piiType, "redact_partial requires visible_chars")
	}
	visible, err := cast.ToIntE(rawVisible)
	if err != nil || visible < 0 {
		return nil, invalid(piiType, "visible_chars must be a non-negative integer")
	}

	mask := cast.ToString(params["mask_char"])
	if mask == "" {
		return nil, invalid(piiType, "redact_partial requires mask_char")
	}
	if len([]rune(mask)) != 1 {
		return nil, invalid(piiType, "mask_char must be a single character, got %q", mask)
	}

	return &RedactPartialParams{VisibleChars: visible, MaskChar: mask}, nil
}

// compileGeneralize accepts one of the type-specific parameter sets:
// numeric binning (bin_size, min_value, max_value), location
// (precision), date (granularity), address (level) or IP (octets).
func compileGeneralize(piiType string, params map[string]interface{}) (*GeneralizeParams, error) {
	result := &GeneralizeParams{}

	if _, ok := params["bin_size"]; ok {
		binSize, err := cast.ToFloat64E(params["bin_size"])
		if err != nil || binSize <= 0 {
			return nil, invalid(piiType, "bin_size must be a positive number")
		}
		minValue, errMin := cast.ToFloat64E(params["min_value"])
		maxValue, errMax := cast.ToFloat64E(params["max_value"])
		if errMin != nil || errMax != nil {
			return nil, invalid(piiType, "numeric generalization requires min_value and max_value")
		}
		if minValue >= maxValue {
			return nil, invalid(piiType, "min_value must be less than max_value")
		}
		result.Numeric = &ranges.BinParams{Size: binSize, Min: minValue, Max: maxValue}
		return result, nil
	}

	if raw, ok := params["precision"]; ok {
		precision, err := cast.ToIntE(raw)
		if err != nil || precision <= 0 {
			return nil, invalid(piiType, "precision must be a positive integer")
		}
		result.Location = &LocationParams{Precision: precision}
		return result, nil
	}

	if raw, ok := params["granularity"]; ok {
		granularity := cast.ToString(raw)
		if !slices.Contains(Granularities, granularity) {
			return nil, invalid(piiType, "granularity must be one of %v, got %q", Granularities, granularity)
		}
		result.Date = &DateParams{Granularity: granularity}
		return result, nil
	}

	if raw, ok := params["level"]; ok {
		level := cast.ToString(raw)
		if !slices.Contains(AddressLevels, level) {
			return nil, invalid(piiType, "level must be one of %v, got %q", AddressLevels, level)
		}
		result.Address = &AddressParams{Level: level}
		return result, nil
	}

	if raw, ok := params["octets"]; ok {
		octets, err := cast.ToIntE(raw)
		if err != nil || octets < 1 || octets > 4 {
			return nil, invalid(piiType, "octets must be an integer between 1 and 4")
		}
		result.IP = &IPParams{Octets: octets}
		return result, nil
	}

	return nil, invalid(piiType,
		"generalize requires one of: numeric (bin_size, min_value, max_value), "+
			"location (precision), date (granularity), address (level) or ip (octets)")
}
