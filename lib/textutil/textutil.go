package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeName lowercases name and drops whitespace and punctuation so
// titles and tags compare equal regardless of formatting.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = punctuationRegex.ReplaceAllString(name, "")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName reports whether the normalized name contains any of the
// normalized matchers.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeName(m)) {
			return true
		}
	}
	return false
}
