// Package anonymizer implements the strategy engine: it applies one
// anonymization strategy per column, producing an anonymized column and
// a transformation log. Field-level failures are returned to the
// caller, never propagated as run failures.
package anonymizer

import (
	"go.uber.org/zap"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
	"github.com/raaihank/data-anonymizer/internal/rules"
)

// Engine applies anonymization strategies to columns. One engine is
// constructed per run; the pseudonym cache it carries is the only
// shared state between column applications.
type Engine struct {
	global rules.GlobalConfig
	cache  *PseudonymCache
	logger *logger.Logger
}

// New creates an engine for a single anonymize-and-measure run.
func New(global rules.GlobalConfig, log *logger.Logger) *Engine {
	return &Engine{
		global: global,
		cache:  NewPseudonymCache(),
		logger: log.WithComponent("anonymizer"),
	}
}

// Apply anonymizes a single column under the given rule. On a field
// error the original column is returned untouched together with the
// error; the caller records it and continues with the remaining
// fields.
func (e *Engine) Apply(col *dataset.Column, rule *rules.Rule) (*dataset.Column, []TransformationRecord, error) {
	apply, err := e.valueFunc(col, rule)
	if err != nil {
		return col, nil, err
	}

	out := &dataset.Column{
		Name:  col.Name,
		Kind:  col.Kind,
		Cells: make([]dataset.Cell, len(col.Cells)),
	}
	records := make([]TransformationRecord, 0, len(col.Cells))

	for row, cell := range col.Cells {
		if cell.Null {
			if !e.global.HandleNulls {
				out.Cells[row] = cell
				continue
			}
			// Replaced before any strategy runs; a strategy is never
			// invoked on a null.
			out.Cells[row] = dataset.Cell{Value: e.nullReplacement(rule)}
			continue
		}

		value := cell.Value
		result, note, err := apply(value)
		if err != nil {
			return col, nil, err
		}

		out.Cells[row] = dataset.Cell{Value: result}
		records = append(records, TransformationRecord{
			Row:      row,
			Column:   col.Name,
			Strategy: rule.Strategy,
			Result:   result,
			Note:     note,
		})
	}

	e.logger.Debug("column anonymized",
		zap.String("column", col.Name),
		zap.String("strategy", string(rule.Strategy)),
		zap.Int("rows", len(col.Cells)),
	)

	return out, records, nil
}

// valueFunc resolves the per-value transformation for a rule, checking
// strategy/type compatibility up front.
func (e *Engine) valueFunc(col *dataset.Column, rule *rules.Rule) (func(string) (string, string, error), error) {
	switch rule.Strategy {
	case rules.StrategyHash:
		return func(v string) (string, string, error) {
			return hashValue(v, rule.Hash), "", nil
		}, nil

	case rules.StrategyRedactFull:
		return func(string) (string, string, error) {
			return rule.RedactFull.Replacement, "", nil
		}, nil

	case rules.StrategyRedactPartial:
		return func(v string) (string, string, error) {
			out, err := redactPartial(v, rule.RedactPartial, col.Name)
			return out, "", err
		}, nil

	case rules.StrategyPseudonymize:
		return func(v string) (string, string, error) {
			return e.pseudonymize(v, rule, col.Kind), "", nil
		}, nil

	case rules.StrategyGeneralize:
		gen, err := e.generalizerFor(col, rule)
		if err != nil {
			return nil, err
		}
		return gen.Generalize, nil

	default:
		return nil, &UnsupportedStrategyError{
			Column:   col.Name,
			Strategy: rule.Strategy,
			Reason:   "unknown strategy",
		}
	}
}

// nullReplacement resolves what a null becomes when handle_nulls is
// on: the configured replacement, or a strategy-specific sentinel.
func (e *Engine) nullReplacement(rule *rules.Rule) string {
	if e.global.NullReplacement != "" {
		return e.global.NullReplacement
	}
	if rule.Strategy == rules.StrategyRedactFull {
		return rule.RedactFull.Replacement
	}
	return "[NULL]"
}
