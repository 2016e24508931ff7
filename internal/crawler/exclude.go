package crawler

import "strings"

// Excluded returns true if any exclusion term appears (case-insensitive)
// anywhere in the combined title and body text.
func Excluded(title, body string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	combined := strings.ToLower(title + " " + body)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
