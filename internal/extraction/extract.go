package extraction

import "strings"

// FieldMatch is the outcome of applying one rule to normalized text.
// Found distinguishes a matched empty string from no match at all; a label
// that is absent and a label whose value failed the value pattern both
// yield Found=false.
type FieldMatch struct {
	Name  string
	Raw   string
	Found bool
}

// Extract applies every rule to the normalized text, in rule order,
// returning one match per rule. Rules are independent: each searches the
// whole text, because label order in receipts is not stable across
// provider versions.
//
// For one rule: every occurrence of the label is tried in document order.
// The candidate span runs from the end of the label to the start of the
// next recognized label from the boundary set (or end of text); the first
// occurrence whose span satisfies the value pattern wins. Trying later
// occurrences is what disambiguates labels that also appear inside other
// fields' boilerplate.
func (rs *Ruleset) Extract(text string) []FieldMatch {
	matches := make([]FieldMatch, len(rs.Rules))
	for i, rule := range rs.Rules {
		matches[i] = FieldMatch{Name: rule.Name}

		for _, loc := range rs.labelRE[i].FindAllStringIndex(text, -1) {
			span := text[loc[1]:]
			if b := rs.boundaryRE.FindStringIndex(span); b != nil {
				span = span[:b[0]]
			}
			m := rs.valueRE[i].FindStringSubmatch(span)
			if m == nil {
				continue
			}
			raw := m[0]
			if len(m) > 1 {
				raw = m[1]
			}
			matches[i].Raw = strings.TrimSpace(raw)
			matches[i].Found = true
			break
		}
	}
	return matches
}
