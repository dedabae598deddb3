package httpd

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/utagetools/utage-routes/pkg/errors"
	"github.com/utagetools/utage-routes/reconcile"
)

// process handles a reconciliation request. Every failure anywhere in the
// pipeline - bad request, missing credentials, unreachable spreadsheet,
// invalid CSV - is terminal and surfaces as the uniform 500 envelope.
func (s *Server) process(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fail(c, pkgerrors.NewValidationError("Content-Type", "multipart/form-dataが必要です"))
		return
	}

	spreadsheetURL := c.PostForm("spreadsheet_url")
	upload, err := c.FormFile("csv_file")
	if spreadsheetURL == "" || err != nil {
		fail(c, pkgerrors.NewValidationError("spreadsheet_url", "スプレッドシートURLとCSVファイルが必要です"))
		return
	}

	if upload.Size > s.maxUpload {
		fail(c, pkgerrors.NewValidationError("csv_file", "CSVファイルが大きすぎます（最大10MB）"))
		return
	}

	// ... spool the upload to a request-scoped temp file
	tmp, err := os.CreateTemp(os.TempDir(), "utage-*.csv")
	if err != nil {
		fail(c, err)
		return
	}

	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			warnf("unable to remove temporary file %s (%v)", tmp.Name(), err)
		}
	}()

	tmp.Close()

	if err := c.SaveUploadedFile(upload, tmp.Name()); err != nil {
		fail(c, err)
		return
	}

	csvData, err := os.ReadFile(tmp.Name())
	if err != nil {
		fail(c, err)
		return
	}

	credentials, err := s.credentials()
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	spreadsheetId := reconcile.ExtractSpreadsheetID(spreadsheetURL)

	debugf("Spreadsheet - ID:%s  csv:%s (%d bytes)", spreadsheetId, upload.Filename, upload.Size)

	sheet, err := s.open(ctx, credentials, spreadsheetId)
	if err != nil {
		fail(c, err)
		return
	}

	summary, err := reconcile.Run(ctx, sheet, csvData)
	if err != nil {
		fail(c, err)
		return
	}

	infof("Reconciled %s - %d emails, %d matched, %d not found", spreadsheetId, summary.TotalCount, summary.SuccessCount, summary.NotFoundCount)

	c.JSON(http.StatusOK, summary)
}

func fail(c *gin.Context, err error) {
	warnf("%v", err)

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
