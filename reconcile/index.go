package reconcile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	pkgerrors "github.com/utagetools/utage-routes/pkg/errors"
)

// UTAGE CSV exports carry these exact column names.
const (
	CSVEmailColumn = "メールアドレス"
	CSVRouteColumn = "登録経路"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Index maps normalized emails to their registration routes, deduped and in
// first-seen order. Built once per request and read-only thereafter.
type Index map[string][]string

// Routes returns the routes recorded for an email, or nil if none.
func (ix Index) Routes(email string) []string {
	return ix[NormalizeEmail(email)]
}

// BuildIndex decodes a UTAGE CSV export and builds the email-to-routes
// index. The file is decoded as UTF-8 first, falling back to CP932
// (Shift-JIS) - UTAGE exports come in both, depending on how they were
// downloaded. Rows with an empty email are skipped; duplicate routes for
// the same normalized email are recorded once, preserving first-seen order.
func BuildIndex(data []byte) (Index, error) {
	decoded, err := decodeCSV(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, pkgerrors.NewValidationError("csv_file", "CSVファイルが空です")
	} else if err != nil {
		return nil, pkgerrors.NewValidationError("csv_file", fmt.Sprintf("CSVヘッダーの読み取りに失敗しました (%v)", err))
	}

	index := map[string]int{}
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{CSVEmailColumn, CSVRouteColumn} {
		if _, ok := index[required]; !ok {
			return nil, pkgerrors.NewValidationError("csv_file", fmt.Sprintf("CSVに「%s」列がありません", required))
		}
	}

	emailIx := index[CSVEmailColumn]
	routeIx := index[CSVRouteColumn]

	routes := Index{}
	line := 1
	for {
		line++
		record, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			log.Printf("%-5s CSV line %d: skipping unreadable record (%v)", "WARN", line, err)
			continue
		}

		email := field(record, emailIx)
		if email == "" {
			continue
		}

		route := field(record, routeIx)
		k := NormalizeEmail(email)

		if !contains(routes[k], route) {
			routes[k] = append(routes[k], route)
		}
	}

	return routes, nil
}

// decodeCSV returns the file content as UTF-8, stripping a BOM if present
// and transcoding from CP932 when the raw bytes are not valid UTF-8. No
// further fallbacks - a file that is neither is unreadable.
func decodeCSV(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return data, nil
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return nil, pkgerrors.NewValidationError("csv_file", "CSVファイルの文字コードを判定できません")
	}

	return decoded, nil
}

func field(record []string, ix int) string {
	if ix < len(record) {
		return strings.TrimSpace(record[ix])
	}

	return ""
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}

	return false
}
