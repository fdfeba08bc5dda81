package anonymizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/ranges"
	"github.com/raaihank/data-anonymizer/internal/rules"
)

// Generalizer coarsens one value of a specific semantic type. The note
// marks values that needed special handling (clamping) for the
// transformation log.
type Generalizer interface {
	Generalize(value string) (result, note string, err error)
}

// generalizerFor selects the generalizer for the rule's parameter
// variant, rejecting combinations that do not fit the column's
// semantic type.
func (e *Engine) generalizerFor(col *dataset.Column, rule *rules.Rule) (Generalizer, error) {
	p := rule.Generalize

	switch {
	case p.Numeric != nil:
		if col.Kind != dataset.KindNumeric {
			return nil, &UnsupportedStrategyError{
				Column:   col.Name,
				Strategy: rule.Strategy,
				Reason:   fmt.Sprintf("numeric binning requires a numeric column, got %s", col.Kind),
			}
		}
		return &numericGeneralizer{params: *p.Numeric, column: col.Name}, nil

	case p.Location != nil:
		return &locationGeneralizer{precision: p.Location.Precision}, nil

	case p.Date != nil:
		if col.Kind != dataset.KindDate {
			return nil, &UnsupportedStrategyError{
				Column:   col.Name,
				Strategy: rule.Strategy,
				Reason:   fmt.Sprintf("date truncation requires a date column, got %s", col.Kind),
			}
		}
		return &dateGeneralizer{granularity: p.Date.Granularity, column: col.Name}, nil

	case p.Address != nil:
		return &addressGeneralizer{level: p.Address.Level}, nil

	case p.IP != nil:
		if col.Kind != dataset.KindIP {
			return nil, &UnsupportedStrategyError{
				Column:   col.Name,
				Strategy: rule.Strategy,
				Reason:   fmt.Sprintf("octet masking requires an ip column, got %s", col.Kind),
			}
		}
		return &ipGeneralizer{octets: p.IP.Octets, column: col.Name}, nil

	default:
		return nil, &InvalidParameterError{
			Column:    col.Name,
			Parameter: "generalize",
			Reason:    "no generalization parameters set",
		}
	}
}

// numericGeneralizer bins values into fixed-width range labels via the
// shared range codec. Out-of-range values clamp to a boundary bin and
// are flagged.
type numericGeneralizer struct {
	params ranges.BinParams
	column string
}

func (g *numericGeneralizer) Generalize(value string) (string, string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", "", &UnsupportedStrategyError{
			Column:   g.column,
			Strategy: rules.StrategyGeneralize,
			Reason:   fmt.Sprintf("non-numeric value %q", value),
		}
	}

	note := ""
	if g.params.Clamped(v) {
		note = "clamped"
	}
	return ranges.Encode(v, g.params), note, nil
}

// locationGeneralizer keeps the first precision digits of a location
// value (zip code, coordinate) and zeroes the remaining digits;
// punctuation passes through so the shape survives.
type locationGeneralizer struct {
	precision int
}

func (g *locationGeneralizer) Generalize(value string) (string, string, error) {
	out := []rune(value)
	digits := 0
	for i, r := range out {
		if r < '0' || r > '9' {
			continue
		}
		digits++
		if digits > g.precision {
			out[i] = '0'
		}
	}
	return string(out), "", nil
}

// dateGeneralizer truncates a date to the configured granularity
// boundary.
type dateGeneralizer struct {
	granularity string
	column      string
}

func (g *dateGeneralizer) Generalize(value string) (string, string, error) {
	t, err := dataset.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return "", "", &UnsupportedStrategyError{
			Column:   g.column,
			Strategy: rules.StrategyGeneralize,
			Reason:   fmt.Sprintf("unparseable date %q", value),
		}
	}

	switch g.granularity {
	case "day":
		return t.Format("2006-01-02"), "", nil
	case "week":
		// Truncate to the Monday of the value's week.
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02"), "", nil
	case "month":
		return t.Format("2006-01"), "", nil
	case "quarter":
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter), "", nil
	case "year":
		return t.Format("2006"), "", nil
	default:
		return "", "", &InvalidParameterError{
			Column:    g.column,
			Parameter: "granularity",
			Reason:    fmt.Sprintf("unknown granularity %q", g.granularity),
		}
	}
}

// addressGeneralizer drops comma-separated address components finer
// than the configured level. Components are assumed ordered
// street, city, state, country.
type addressGeneralizer struct {
	level string
}

// keepComponents maps a level to how many trailing components survive.
var keepComponents = map[string]int{
	"country": 1,
	"state":   2,
	"city":    3,
	"street":  4,
}

func (g *addressGeneralizer) Generalize(value string) (string, string, error) {
	if g.level == "full" {
		return value, "", nil
	}

	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	keep := keepComponents[g.level]
	if keep >= len(parts) {
		return strings.Join(parts, ", "), "", nil
	}
	return strings.Join(parts[len(parts)-keep:], ", "), "", nil
}

// ipGeneralizer zeroes the octets of an IPv4 address beyond the
// configured count.
type ipGeneralizer struct {
	octets int
	column string
}

func (g *ipGeneralizer) Generalize(value string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(value), ".")
	if len(parts) != 4 {
		return "", "", &UnsupportedStrategyError{
			Column:   g.column,
			Strategy: rules.StrategyGeneralize,
			Reason:   fmt.Sprintf("not an IPv4 address: %q", value),
		}
	}

	for i := g.octets; i < 4; i++ {
		parts[i] = "0"
	}
	return strings.Join(parts, "."), "", nil
}
