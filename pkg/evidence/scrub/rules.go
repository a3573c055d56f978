package scrub

import "strings"

// Size caps applied at every level of a scrubbed structure. A collection
// under a neutral key is truncated to the cap; a collection or oversized
// string under a signal-bearing key is dropped entirely, because partial
// truncation could still leak a content fragment.
const (
	// MaxStringLen is the length above which a string value under a
	// signal-bearing key is dropped.
	MaxStringLen = 600

	// MaxArrayLen is the maximum number of elements kept in an array.
	MaxArrayLen = 80

	// MaxMapKeys is the maximum number of keys kept in an object.
	MaxMapKeys = 120
)

// rawTextKeys is the exact-match set of keys that carry raw text. Keys are
// stored in normalized form (lowercase, separators removed) so that casing
// and naming-convention variants still match.
var rawTextKeys = map[string]struct{}{
	"text":            {},
	"inputtext":       {},
	"original":        {},
	"normalized":      {},
	"repairedtext":    {},
	"rawaioutput":     {},
	"llmrawoutput":    {},
	"llmrawresponse":  {},
	"prompt":          {},
	"messages":        {},
	"completion":      {},
	"responsetext":    {},
	"content":         {},
}

// contentDerivedKeys is the exact-match set of keys whose values are derived
// from content (matched terms, extracted spans, and the like). Normalized
// form, same as rawTextKeys.
var contentDerivedKeys = map[string]struct{}{
	"oosmatched":  {},
	"lexiconhits": {},
	"patternhits": {},
	"spans":       {},
	"entities":    {},
	"phrases":     {},
}

// contentDerivedPrefixes match families of keys such as matched_keywords,
// keywords_found, trigger_words, detected_patterns.
var contentDerivedPrefixes = []string{
	"matched",
	"keywords",
	"trigger",
	"detected",
}

// signalSubstrings is the second, heuristic layer: a key containing any of
// these substrings is treated as content-bearing whenever its value exceeds
// the size caps. This catches renamed or title-cased fields that escape the
// exact sets ("Matched_Keywords", "triggerWordsList").
var signalSubstrings = []string{
	"text",
	"content",
	"message",
	"prompt",
	"completion",
	"response",
	"utterance",
	"transcript",
	"input",
	"output",
	"matched",
	"keyword",
	"trigger",
	"lexicon",
	"pattern",
	"phrase",
}

// normalizeKey lowercases a key and strips separators so that snake_case,
// kebab-case, camelCase, and Title_Case variants of the same name compare
// equal against the rule tables.
func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			// separator, dropped
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isRawTextKey reports whether a key belongs to the raw-text set.
func isRawTextKey(key string) bool {
	_, ok := rawTextKeys[normalizeKey(key)]
	return ok
}

// isContentDerivedKey reports whether a key belongs to the content-derived
// set, either by exact match or by prefix family.
func isContentDerivedKey(key string) bool {
	norm := normalizeKey(key)
	if _, ok := contentDerivedKeys[norm]; ok {
		return true
	}
	for _, prefix := range contentDerivedPrefixes {
		if strings.HasPrefix(norm, prefix) {
			return true
		}
	}
	return false
}

// hasSignalSubstring reports whether a key carries a generic content signal
// anywhere in its name.
func hasSignalSubstring(key string) bool {
	norm := normalizeKey(key)
	for _, sig := range signalSubstrings {
		if strings.Contains(norm, sig) {
			return true
		}
	}
	return false
}
