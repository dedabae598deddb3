// Package gsheet wraps the Google Sheets API for the reconciliation
// service: service-account authentication from a JSON credential blob and
// read/write access to the first worksheet of a spreadsheet.
package gsheet

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	pkgerrors "github.com/utagetools/utage-routes/pkg/errors"
)

const SCOPE = "https://www.googleapis.com/auth/spreadsheets"

// Worksheet is the first sheet of a spreadsheet, opened for reading and
// writing. Implements reconcile.Sheet.
type Worksheet struct {
	service       *sheets.Service
	spreadsheetId string
	title         string
}

// Open authenticates with the service-account credentials (a JSON blob,
// not a file path) and resolves the first worksheet of the spreadsheet.
func Open(ctx context.Context, credentials []byte, spreadsheetId string) (*Worksheet, error) {
	if _, err := google.CredentialsFromJSON(ctx, credentials, SCOPE); err != nil {
		return nil, pkgerrors.NewUpstreamError("Google Sheets authentication/authorization error", err)
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credentials), option.WithScopes(SCOPE))
	if err != nil {
		return nil, pkgerrors.NewUpstreamError("unable to create new Google Sheets client", err)
	}

	spreadsheet, err := service.Spreadsheets.Get(spreadsheetId).Context(ctx).Do()
	if err != nil {
		return nil, pkgerrors.NewUpstreamError("failed to fetch spreadsheet", err)
	}

	if len(spreadsheet.Sheets) == 0 {
		return nil, pkgerrors.NewUpstreamError(fmt.Sprintf("spreadsheet %s has no worksheets", spreadsheetId), nil)
	}

	return &Worksheet{
		service:       service,
		spreadsheetId: spreadsheet.SpreadsheetId,
		title:         spreadsheet.Sheets[0].Properties.Title,
	}, nil
}

// ReadAll retrieves every populated row of the worksheet as strings, in
// row order.
func (ws *Worksheet) ReadAll(ctx context.Context) ([][]string, error) {
	response, err := ws.service.Spreadsheets.Values.Get(ws.spreadsheetId, fmt.Sprintf("'%s'", ws.title)).Context(ctx).Do()
	if err != nil {
		return nil, pkgerrors.NewUpstreamError("unable to retrieve data from sheet", err)
	}

	rows := [][]string{}
	for _, row := range response.Values {
		record := []string{}
		for _, v := range row {
			record = append(record, fmt.Sprintf("%v", v))
		}

		rows = append(rows, record)
	}

	return rows, nil
}

// Update writes values to a range of the worksheet, as literal strings
// ('RAW' - routes are free text and must not be reinterpreted as formulas
// or dates).
func (ws *Worksheet) Update(ctx context.Context, area string, values [][]string) error {
	data := make([][]interface{}, len(values))
	for i, row := range values {
		record := make([]interface{}, len(row))
		for j, v := range row {
			record[j] = v
		}

		data[i] = record
	}

	rq := sheets.ValueRange{
		Range:  fmt.Sprintf("'%s'!%s", ws.title, area),
		Values: data,
	}

	if _, err := ws.service.Spreadsheets.Values.Update(ws.spreadsheetId, rq.Range, &rq).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return pkgerrors.NewUpstreamError(fmt.Sprintf("unable to update range %s", area), err)
	}

	return nil
}
