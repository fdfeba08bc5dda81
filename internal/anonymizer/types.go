package anonymizer

import (
	"fmt"
	"sync"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/rules"
)

// TransformationRecord is one audit-trail entry: which strategy was
// applied where, and what came out. Records live only for the duration
// of a run.
type TransformationRecord struct {
	Row      int            `json:"row"`
	Column   string         `json:"column"`
	Strategy rules.Strategy `json:"strategy"`
	Result   string         `json:"result"`
	Note     string         `json:"note,omitempty"` // e.g. clamped out-of-range values
}

// UnsupportedStrategyError indicates a strategy that is not valid for
// the field's semantic type. Scoped to the field, never fatal to the
// run.
type UnsupportedStrategyError struct {
	Column   string
	Strategy rules.Strategy
	Reason   string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("strategy %s not supported for column %q: %s",
		e.Strategy, e.Column, e.Reason)
}

// InvalidParameterError indicates a parameter that is missing or out of
// range for the values it was applied to. Scoped to the field, never
// fatal to the run.
type InvalidParameterError struct {
	Column    string
	Parameter string
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s for column %q: %s",
		e.Parameter, e.Column, e.Reason)
}

type pseudonymKey struct {
	seed    uint64
	piiType string
	value   string
	kind    dataset.Kind // type preservation shapes output per column kind
}

// PseudonymCache holds the (seed, value, pii type) to pseudonym mapping
// for one run. It is constructed once per run and shared by every
// engine invocation; the mutex keeps output deterministic regardless of
// which worker touches a value first.
type PseudonymCache struct {
	mu      sync.Mutex
	entries map[pseudonymKey]string
}

// NewPseudonymCache creates an empty per-run cache.
func NewPseudonymCache() *PseudonymCache {
	return &PseudonymCache{entries: make(map[pseudonymKey]string)}
}

func (c *PseudonymCache) get(key pseudonymKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *PseudonymCache) put(key pseudonymKey, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len reports the number of cached pseudonyms.
func (c *PseudonymCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
