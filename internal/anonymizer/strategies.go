package anonymizer

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/rules"
)

// hashValue computes a one-way digest of the value. Identical
// (value, algorithm, salt) always yields an identical fixed-length hex
// string.
func hashValue(value string, p *rules.HashParams) string {
	input := value
	if p.Salt != "" {
		input = p.Salt + ":" + value
	}

	switch p.Algorithm {
	case "sha512":
		sum := sha512.Sum512([]byte(input))
		return hex.EncodeToString(sum[:])
	case "md5":
		sum := md5.Sum([]byte(input))
		return hex.EncodeToString(sum[:])
	default: // sha256, the only other algorithm rule validation admits
		sum := sha256.Sum256([]byte(input))
		return hex.EncodeToString(sum[:])
	}
}

// redactPartial keeps the trailing VisibleChars characters and masks
// the rest. Asking for more visible characters than the value has is a
// parameter error, not a silent no-op.
func redactPartial(value string, p *rules.RedactPartialParams, column string) (string, error) {
	runes := []rune(value)

	if p.VisibleChars > len(runes) {
		return "", &InvalidParameterError{
			Column:    column,
			Parameter: "visible_chars",
			Reason: fmt.Sprintf("visible_chars %d exceeds value length %d",
				p.VisibleChars, len(runes)),
		}
	}

	masked := len(runes) - p.VisibleChars
	return strings.Repeat(p.MaskChar, masked) + string(runes[masked:]), nil
}

// pseudonymize replaces a value with a synthetic one shaped like the
// field's domain. Under a fixed seed, equal inputs map to equal
// pseudonyms within and across runs; the per-run cache keeps even the
// unseeded mode consistent within a run. With preserve_data_types on,
// numeric columns get numeric-shaped pseudonyms.
func (e *Engine) pseudonymize(value string, rule *rules.Rule, kind dataset.Kind) string {
	keyValue := value
	if !e.global.CaseSensitive {
		keyValue = strings.ToLower(value)
	}

	key := pseudonymKey{
		seed:    rule.Pseudonymize.Seed,
		piiType: rule.PIIType,
		value:   keyValue,
		kind:    kind,
	}

	if cached, ok := e.cache.get(key); ok {
		return cached
	}

	var faker *gofakeit.Faker
	if rule.Pseudonymize.SeedBased {
		faker = gofakeit.New(deriveSeed(rule.Pseudonymize.Seed, rule.PIIType, keyValue))
	} else {
		faker = gofakeit.New(0)
	}

	result := fakeValue(faker, rule.PIIType)
	if e.global.PreserveDataTypes && kind == dataset.KindNumeric {
		if _, err := strconv.ParseFloat(result, 64); err != nil {
			result = numericPseudonym(faker, value)
		}
	}
	e.cache.put(key, result)
	return result
}

// numericPseudonym draws a digit string as wide as the original value,
// keeping a numeric column numeric-shaped.
func numericPseudonym(f *gofakeit.Faker, value string) string {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits == 0 {
		digits = 1
	}
	return f.DigitN(uint(digits))
}

// deriveSeed folds (run seed, pii type, value) into a generator seed.
func deriveSeed(seed uint64, piiType, value string) uint64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%s", seed, piiType, value)))
	return binary.BigEndian.Uint64(sum[:8])
}

// fakeValue picks a synthetic value from the generator's corpus that
// resembles the field's value domain.
func fakeValue(f *gofakeit.Faker, piiType string) string {
	switch piiType {
	case "email":
		return f.Email()
	case "phone", "phone_number":
		return f.PhoneFormatted()
	case "first_name":
		return f.FirstName()
	case "last_name":
		return f.LastName()
	case "username":
		return f.Username()
	case "company":
		return f.Company()
	case "city":
		return f.City()
	case "address":
		return f.Address().Address
	case "ssn":
		return f.SSN()
	case "ip_address", "ip":
		return f.IPv4Address()
	default:
		return f.Name()
	}
}
