package extraction

import (
	"strings"
	"unicode"
)

// Verdict is the completeness validator's outcome. Error names the missing
// required fields and is empty iff Success is true.
type Verdict struct {
	Success bool
	Error   string
}

// validateCompleteness succeeds iff every required rule has a defined
// typed value. Missing required fields are named individually so failures
// are diagnosable without echoing document content.
func validateCompleteness(values map[string]Value, rules []FieldRule) Verdict {
	var missing []string
	for _, rule := range rules {
		if !rule.Required {
			continue
		}
		if _, ok := values[rule.Name]; !ok {
			missing = append(missing, displayName(rule.Name))
		}
	}

	if len(missing) > 0 {
		return Verdict{Error: "missing required fields: " + strings.Join(missing, ", ")}
	}
	return Verdict{Success: true}
}

// displayName renders a camelCase field name for error messages:
// "transactionAmount" → "Transaction Amount".
func displayName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if i == 0 {
			sb.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
