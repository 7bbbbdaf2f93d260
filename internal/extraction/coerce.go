package extraction

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Value is the typed form of a matched field. Exactly one of Str, Amount
// or Date is meaningful, per the owning rule's Kind. Presence in the
// coerced map is what marks a field as defined.
type Value struct {
	Kind   Kind
	Str    string
	Amount float64
	Date   time.Time
}

// coerceValue converts a raw match into its typed form. A false return
// means coercion failed; that is indistinguishable from the field being
// absent, and never propagates as an error.
func coerceValue(match FieldMatch, rule FieldRule, dateFormats []string) (Value, bool) {
	if !match.Found {
		return Value{}, false
	}

	switch rule.Kind {
	case KindAmount:
		amount, ok := coerceAmount(match.Raw)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: KindAmount, Amount: amount}, true
	case KindDate:
		date, ok := coerceDate(match.Raw, dateFormats)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: KindDate, Date: date}, true
	case KindIdentifier:
		return Value{Kind: KindIdentifier, Str: match.Raw}, true
	default:
		return Value{Kind: KindString, Str: titleCase(match.Raw)}, true
	}
}

// coerceAmount strips grouping separators and parses a decimal. Amounts
// are non-negative in this domain; a negative or non-finite parse is a
// coercion failure.
func coerceAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	return amount, true
}

// coerceDate tries the provider's known layouts in order. No fallback to
// the current time: an unparsable date is simply undefined.
func coerceDate(raw string, formats []string) (time.Time, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, format := range formats {
		if date, err := time.Parse(format, cleaned); err == nil {
			return date.UTC(), true
		}
	}
	return time.Time{}, false
}

// titleCase uppercases the first letter of each alphabetic word and
// lowercases the remainder, normalizing shouty receipt text ("JOHN DOE" →
// "John Doe"). Token boundaries are left untouched.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, word := range words {
		runes := []rune(word)
		upped := false
		for j, r := range runes {
			if !unicode.IsLetter(r) {
				continue
			}
			if !upped {
				runes[j] = unicode.ToUpper(r)
				upped = true
			} else {
				runes[j] = unicode.ToLower(r)
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
