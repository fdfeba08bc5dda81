// Package ranges implements the codec shared by the anonymization and
// utility engines: numeric values are generalized into interval labels
// like "45-49", and labels are decoded back to a representative value
// (the interval midpoint) so statistics stay computable downstream.
package ranges

import (
	"fmt"
	"strconv"
	"strings"
)

// BinParams configures fixed-width numeric binning over [Min, Max].
type BinParams struct {
	Size float64
	Min  float64
	Max  float64
}

// DecodeError indicates a label that could not be mapped back to a
// representative value. For labels produced by Encode this is
// unreachable; during measurement it downgrades the affected metric
// instead of aborting the run.
type DecodeError struct {
	Label string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode range label %q", e.Label)
}

// Clamped reports whether v lies outside [Min, Max] and therefore maps
// to a boundary bin.
func (p BinParams) Clamped(v float64) bool {
	return v < p.Min || v > p.Max
}

// Encode maps a numeric value to its bin label. Bins are closed integer
// ranges [start, start+size-1]; the top bin is anchored at Max so the
// configured maximum always falls in a full-width bin. Out-of-range
// values clamp to the nearest boundary bin.
func Encode(v float64, p BinParams) string {
	clamped := v
	if clamped < p.Min {
		clamped = p.Min
	}
	if clamped > p.Max {
		clamped = p.Max
	}

	binIndex := int((clamped - p.Min) / p.Size)
	start := p.Min + float64(binIndex)*p.Size
	end := start + p.Size - 1

	if clamped == p.Max {
		start = p.Max - p.Size + 1
		end = p.Max
	}

	return fmt.Sprintf("%d-%d", int(start), int(end))
}

// Decode maps a label back to a representative numeric value: the
// midpoint for interval labels, the value itself for plain numerics.
// It must be total for every label Encode can produce.
func Decode(label string) (float64, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 0, &DecodeError{Label: label}
	}

	// Plain numeric values pass through (a generalized column may mix
	// labels with untouched or clamped numerics).
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	// Split on the separator between two parseable numbers. Scanning
	// candidate positions keeps negative bounds decodable ("-10--6").
	for i := 1; i < len(s)-1; i++ {
		if s[i] != '-' {
			continue
		}
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err1 == nil && err2 == nil {
			return (lo + hi) / 2.0, nil
		}
	}

	return 0, &DecodeError{Label: label}
}
