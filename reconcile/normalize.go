package reconcile

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail is the sole equality key for matching: two emails are the
// same iff their normalized forms are byte-equal. Trims surrounding
// whitespace, folds full-width/half-width and compatibility variants to
// NFKC and lowercases.
func NormalizeEmail(email string) string {
	s := strings.TrimSpace(email)
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)

	return strings.ToLower(s)
}
