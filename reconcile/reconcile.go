// Package reconcile matches the email addresses in a Google Spreadsheet
// against a UTAGE CSV export and writes the resolved registration routes
// back to the spreadsheet as the 'UTAGE登録経路' column.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/utagetools/utage-routes/pkg/errors"
)

// maxNotFoundEmails caps the list of unmatched emails returned to the
// caller - the counts are always exact.
const maxNotFoundEmails = 50

// Sheet is the worksheet the reconciliation reads from and writes to.
// Implemented by gsheet.Worksheet; faked in tests.
type Sheet interface {
	// ReadAll returns every row of the worksheet, header row first.
	ReadAll(ctx context.Context) ([][]string, error)

	// Update writes values to the given A1-notation range.
	Update(ctx context.Context, area string, values [][]string) error
}

// Result records the outcome for a single spreadsheet email.
type Result struct {
	Email  string   `json:"email"`
	Routes []string `json:"routes"`
	Found  bool     `json:"found"`
}

// Summary is the response body for a successful reconciliation.
type Summary struct {
	Success        bool     `json:"success"`
	TotalCount     int      `json:"total_count"`
	SuccessCount   int      `json:"success_count"`
	NotFoundCount  int      `json:"not_found_count"`
	NotFoundEmails []string `json:"not_found_emails"`
}

// Run executes the reconciliation pipeline against a worksheet: read all
// rows, locate the email column, build the index from the CSV export,
// match, then write the route column back (header cell first, data rows as
// a single ranged update). The header and data writes are two independent
// remote calls with no rollback - a failure in between leaves the header
// in place, matching the behaviour of re-running with the same inputs.
func Run(ctx context.Context, sheet Sheet, csvData []byte) (*Summary, error) {
	rows, err := sheet.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, pkgerrors.NewNotFoundError("spreadsheet", "スプレッドシートにデータがありません")
	}

	header := rows[0]
	emailIx := FindEmailColumn(header)
	if emailIx < 0 {
		return nil, pkgerrors.NewNotFoundError("email column", "メールアドレス列が見つかりません")
	}

	emails := []string{}
	for _, row := range rows[1:] {
		if emailIx < len(row) && row[emailIx] != "" {
			emails = append(emails, row[emailIx])
		}
	}

	if len(emails) == 0 {
		return nil, pkgerrors.NewNotFoundError("emails", "メールアドレスが見つかりません")
	}

	index, err := BuildIndex(csvData)
	if err != nil {
		return nil, err
	}

	// ... match
	results := []Result{}
	notFound := []string{}
	for _, email := range emails {
		routes := index.Routes(email)
		if len(routes) > 0 {
			results = append(results, Result{Email: email, Routes: routes, Found: true})
		} else {
			results = append(results, Result{Email: email, Routes: []string{}, Found: false})
			notFound = append(notFound, email)
		}
	}

	// ... write back
	routeIx := FindRouteColumn(header)
	letter := ColumnLetter(routeIx)

	if err := sheet.Update(ctx, fmt.Sprintf("%s1", letter), [][]string{{RouteColumn}}); err != nil {
		return nil, err
	}

	resolved := map[string]string{}
	for _, r := range results {
		resolved[NormalizeEmail(r.Email)] = strings.Join(r.Routes, ", ")
	}

	values := [][]string{}
	for _, row := range rows[1:] {
		v := ""
		if emailIx < len(row) {
			v = resolved[NormalizeEmail(row[emailIx])]
		}

		values = append(values, []string{v})
	}

	if len(values) > 0 {
		area := fmt.Sprintf("%s2:%s%d", letter, letter, len(values)+1)
		if err := sheet.Update(ctx, area, values); err != nil {
			return nil, err
		}
	}

	truncated := notFound
	if len(truncated) > maxNotFoundEmails {
		truncated = truncated[:maxNotFoundEmails]
	}

	return &Summary{
		Success:        true,
		TotalCount:     len(emails),
		SuccessCount:   len(emails) - len(notFound),
		NotFoundCount:  len(notFound),
		NotFoundEmails: truncated,
	}, nil
}
