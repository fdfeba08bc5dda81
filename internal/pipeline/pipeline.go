// Package pipeline orchestrates one anonymize-and-measure run: it fans
// columns out across workers, fans anonymized columns and field errors
// back in, then measures utility and validates privacy thresholds. The
// run always completes; failures stay scoped to their field.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/data-anonymizer/internal/anonymizer"
	"github.com/raaihank/data-anonymizer/internal/config"
	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
	"github.com/raaihank/data-anonymizer/internal/rules"
	"github.com/raaihank/data-anonymizer/internal/utility"
	"github.com/raaihank/data-anonymizer/internal/validator"
)

// FieldError records a column-scoped failure.
type FieldError struct {
	Column string `json:"column"`
	Error  string `json:"error"`
}

// Stats summarizes one run.
type Stats struct {
	Rows              int           `json:"rows"`
	ColumnsProcessed  int           `json:"columns_processed"`
	ColumnsAnonymized int           `json:"columns_anonymized"`
	Duration          time.Duration `json:"duration"`
}

// Result is everything one run produces.
type Result struct {
	Anonymized  *dataset.Dataset
	Records     []anonymizer.TransformationRecord
	Report      *utility.Report
	Validation  *validator.Result
	FieldErrors []FieldError
	Stats       Stats
}

type columnResult struct {
	column  *dataset.Column
	records []anonymizer.TransformationRecord
	err     error
}

// Run executes one anonymize-and-measure invocation.
func Run(ctx context.Context, ds *dataset.Dataset, cfg *config.Config, log *logger.Logger) (*Result, error) {
	start := time.Now()

	ruleset, err := cfg.CompileRules()
	if err != nil {
		return nil, err
	}

	ruleFor := func(column string) *rules.Rule {
		piiType := column
		if mapped, ok := cfg.ColumnMapping[column]; ok {
			piiType = mapped
		}
		return ruleset[piiType]
	}

	engine := anonymizer.New(cfg.GlobalConfig(), log)

	log.Info("starting anonymization run",
		zap.Int("columns", len(ds.Columns)),
		zap.Int("rows", ds.Rows()),
		zap.Int("workers", cfg.Engine.Workers),
	)

	results := applyColumns(ctx, ds, engine, ruleFor, cfg.Engine.Workers)

	// Fan in, preserving column order so output is deterministic
	// regardless of worker scheduling.
	anonymized := &dataset.Dataset{Columns: make([]*dataset.Column, len(ds.Columns))}
	result := &Result{
		Stats: Stats{
			Rows:             ds.Rows(),
			ColumnsProcessed: len(ds.Columns),
		},
	}

	for i, col := range ds.Columns {
		res := results[i]
		anonymized.Columns[i] = res.column
		if res.err != nil {
			result.FieldErrors = append(result.FieldErrors, FieldError{
				Column: col.Name,
				Error:  res.err.Error(),
			})
			log.Warn("field failed, continuing",
				zap.String("column", col.Name),
				zap.Error(res.err),
			)
			continue
		}
		if res.records != nil {
			result.Stats.ColumnsAnonymized++
			result.Records = append(result.Records, res.records...)
		}
	}
	result.Anonymized = anonymized

	report, err := utility.New(log).Measure(ds, anonymized, ruleFor)
	if err != nil {
		// Shape mismatches cannot happen for engine output; treat as a
		// run-level defect.
		return nil, err
	}
	result.Report = report

	result.Validation = validator.New(cfg.PrivacyThresholds, log).Validate(anonymized)

	result.Stats.Duration = time.Since(start)
	log.Info("run completed",
		zap.Int("columns_anonymized", result.Stats.ColumnsAnonymized),
		zap.Int("field_errors", len(result.FieldErrors)),
		zap.Float64("utility_score", report.OverallScore),
		zap.Duration("duration", result.Stats.Duration),
	)

	return result, nil
}

// applyColumns runs the engine over every column on a bounded worker
// pool. Per-column results land in a slice indexed by column position;
// no worker touches another worker's slot.
func applyColumns(ctx context.Context, ds *dataset.Dataset, engine *anonymizer.Engine, ruleFor func(string) *rules.Rule, workers int) []columnResult {
	results := make([]columnResult, len(ds.Columns))
	indices := make(chan int)

	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				col := ds.Columns[i]
				rule := ruleFor(col.Name)
				if rule == nil {
					// No rule configured; the column passes through.
					results[i] = columnResult{column: col}
					continue
				}
				out, records, err := engine.Apply(col, rule)
				results[i] = columnResult{column: out, records: records, err: err}
			}
		}()
	}

	cancelled := -1
	for i := range ds.Columns {
		if ctx.Err() != nil {
			cancelled = i
			break
		}
		select {
		case <-ctx.Done():
			cancelled = i
		case indices <- i:
		}
		if cancelled >= 0 {
			break
		}
	}
	close(indices)
	wg.Wait()

	if cancelled >= 0 {
		// Undispatched columns pass through so the run still returns a
		// complete dataset.
		for j := cancelled; j < len(ds.Columns); j++ {
			results[j] = columnResult{column: ds.Columns[j], err: ctx.Err()}
		}
	}

	return results
}
