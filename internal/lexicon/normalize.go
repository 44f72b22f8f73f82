package lexicon

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName folds a term name for case-insensitive matching:
// trimmed, lowercased, internal whitespace collapsed to single spaces.
// Exact lookups never use it.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}
