/*
Package routes reconciles the email addresses in a Google Spreadsheet against
a UTAGE CSV export and writes the resolved registration routes back to the
spreadsheet as the 'UTAGE登録経路' column.

The service exposes a single endpoint:

  - POST /api/process, a multipart/form-data request with a 'spreadsheet_url'
    field (full Google Sheets URL or bare spreadsheet ID) and a 'csv_file'
    field (the UTAGE export, UTF-8 or CP932)

and responds with the reconciliation counts and the (truncated) list of
unmatched email addresses. Matching is keyed on normalized email addresses -
trimmed, NFKC width-folded and lowercased - so full-width and mixed-case
variants of the same address are treated as equal.

Authentication is via a Google service account: the GOOGLE_CREDENTIALS
environment variable holds the credential JSON, scoped to spreadsheet
read/write.
*/
package routes
