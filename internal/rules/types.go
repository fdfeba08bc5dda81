package rules

import "github.com/raaihank/data-anonymizer/internal/ranges"

// Strategy identifies an anonymization strategy.
type Strategy string

const (
	StrategyHash          Strategy = "hash"
	StrategyRedactFull    Strategy = "redact_full"
	StrategyRedactPartial Strategy = "redact_partial"
	StrategyPseudonymize  Strategy = "pseudonymize"
	StrategyGeneralize    Strategy = "generalize"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyHash,
	StrategyRedactFull,
	StrategyRedactPartial,
	StrategyPseudonymize,
	StrategyGeneralize,
}

// Rule is a validated, immutable per-field anonymization rule. Exactly
// one parameter record is set, matching Strategy; Compile enforces
// this, so engines can dispatch without re-checking.
type Rule struct {
	PIIType  string
	Strategy Strategy

	Hash          *HashParams
	RedactFull    *RedactFullParams
	RedactPartial *RedactPartialParams
	Pseudonymize  *PseudonymizeParams
	Generalize    *GeneralizeParams
}

// HashParams configures the hash strategy.
type HashParams struct {
	Algorithm string // sha256, sha512 or md5
	Salt      string
}

// RedactFullParams configures the redact_full strategy.
type RedactFullParams struct {
	Replacement string
}

// RedactPartialParams configures the redact_partial strategy. Trailing
// VisibleChars characters are kept, the rest replaced with MaskChar.
type RedactPartialParams struct {
	VisibleChars int
	MaskChar     string
}

// PseudonymizeParams configures the pseudonymize strategy.
type PseudonymizeParams struct {
	SeedBased bool
	Seed      uint64
}

// GeneralizeParams configures the generalize strategy. Exactly one
// variant is set, selected by the parameters present in the rule file
// and dispatched by the column's semantic type.
type GeneralizeParams struct {
	Numeric  *ranges.BinParams
	Location *LocationParams
	Date     *DateParams
	Address  *AddressParams
	IP       *IPParams
}

// LocationParams keeps the leading Precision significant digits of a
// location value (zip code, coordinate) and blanks the rest.
type LocationParams struct {
	Precision int
}

// DateParams truncates date values to a granularity boundary.
type DateParams struct {
	Granularity string // day, week, month, quarter or year
}

// AddressParams drops address components finer than Level.
type AddressParams struct {
	Level string // full, street, city, state or country
}

// IPParams zeroes the octets of an IP address beyond Octets.
type IPParams struct {
	Octets int // 1-4
}

// GlobalConfig holds run-wide options shared by every rule.
type GlobalConfig struct {
	HandleNulls       bool
	NullReplacement   string
	PreserveDataTypes bool
	CaseSensitive     bool
}

// DefaultGlobal returns the default global options.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		HandleNulls:       true,
		PreserveDataTypes: true,
	}
}

// Granularities and address levels accepted by generalize rules.
var (
	Granularities = []string{"day", "week", "month", "quarter", "year"}
	AddressLevels = []string{"full", "street", "city", "state", "country"}
)
