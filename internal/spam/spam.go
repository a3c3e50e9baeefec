// Package spam holds the coarse heuristics that keep contact identifiers
// out of an anonymous feed. False positives are acceptable here: the point
// is to discourage identity leakage, not to classify precisely.
package spam

import "regexp"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`08[0-9]{8,}`),         // local phone numbers
	regexp.MustCompile(`(\+62|62)[0-9]{8,}`),  // international prefix
	regexp.MustCompile(`wa\.me`),
	regexp.MustCompile(`(?i)whatsapp`),
	regexp.MustCompile(`(?i)\bWA\b`),
	regexp.MustCompile(`instagram\.com`),
	regexp.MustCompile(`@[\w._]+`),            // social handles
	regexp.MustCompile(`http[s]?://`),
	regexp.MustCompile(`www\.`),
	regexp.MustCompile(`\.com`),
	regexp.MustCompile(`(?i)jl\.\s+`),         // street addresses
	regexp.MustCompile(`(?i)jalan\s+`),
	regexp.MustCompile(`(?i)dm\s+`),
	regexp.MustCompile(`(?i)inbox\s+`),
}

// Match reports whether content trips any of the contact/address
// heuristics.
func Match(content string) bool {
	for _, p := range patterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}
