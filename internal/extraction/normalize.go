package extraction

import (
	"regexp"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeText collapses every run of whitespace (spaces, tabs, newlines)
// into a single ASCII space and trims the ends. Case and punctuation are
// preserved; field rules depend on exact label text. Idempotent.
func NormalizeText(raw string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(raw, " "))
}
