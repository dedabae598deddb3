package reconcile

import (
	"regexp"
	"strings"
)

// RouteColumn is the spreadsheet column the resolved routes are written to.
// An existing column with this exact header is reused, otherwise the column
// is appended after the last header column.
const RouteColumn = "UTAGE登録経路"

// emailColumnPatterns covers the spellings of 'email address' accepted in
// the spreadsheet header.
var emailColumnPatterns = []string{
	"メールアドレス",
	"メアド",
	"eメール",
	"email",
	"e-mail",
	"mail",
}

var spreadsheetURL = regexp.MustCompile(`https://docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)
var spreadsheetID = regexp.MustCompile(`^([a-zA-Z0-9_-]+)$`)

// ExtractSpreadsheetID resolves a free-form spreadsheet reference - either a
// full Google Sheets URL or a bare ID - to the spreadsheet ID. Unmatchable
// input is returned unchanged.
func ExtractSpreadsheetID(urlOrID string) string {
	if match := spreadsheetURL.FindStringSubmatch(urlOrID); len(match) > 1 {
		return match[1]
	}

	if match := spreadsheetID.FindStringSubmatch(urlOrID); len(match) > 1 {
		return match[1]
	}

	return urlOrID
}

// FindEmailColumn returns the index of the first header column matching any
// of the known email column spellings, comparing case-insensitively and as
// a substring in either direction. Returns -1 if no column matches.
func FindEmailColumn(header []string) int {
	for i, name := range header {
		k := strings.ToLower(strings.TrimSpace(name))
		for _, pattern := range emailColumnPatterns {
			p := strings.ToLower(pattern)
			if strings.Contains(k, p) || (k != "" && strings.Contains(p, k)) {
				return i
			}
		}
	}

	return -1
}

// FindRouteColumn returns the index of an existing route column, scanning
// the header for an exact RouteColumn match. Returns len(header) - i.e. a
// new trailing column - if none exists.
func FindRouteColumn(header []string) int {
	for i, name := range header {
		if name == RouteColumn {
			return i
		}
	}

	return len(header)
}

// ColumnLetter converts a 0-based column index to spreadsheet column-letter
// notation (0 -> A, 25 -> Z, 26 -> AA).
func ColumnLetter(index int) string {
	letters := ""
	n := index + 1
	for n > 0 {
		n -= 1
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}

	return letters
}
