// Package httpd exposes the reconciliation as a single HTTP endpoint:
// POST /api/process with a multipart body holding a spreadsheet reference
// and a UTAGE CSV export.
package httpd

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/utagetools/utage-routes/gsheet"
	pkgerrors "github.com/utagetools/utage-routes/pkg/errors"
	"github.com/utagetools/utage-routes/reconcile"
)

// CREDENTIALS is the environment variable holding the service-account
// credential blob. Read per request, not at startup - rotating it takes
// effect immediately.
const CREDENTIALS = "GOOGLE_CREDENTIALS"

// MAX_UPLOAD caps the uploaded CSV at 10MB.
const MAX_UPLOAD = 10 * 1024 * 1024

// Server wires the HTTP surface to the reconciliation pipeline. The
// credential lookup and worksheet opener are injectable for testing.
type Server struct {
	credentials func() ([]byte, error)
	open        func(ctx context.Context, credentials []byte, spreadsheetId string) (reconcile.Sheet, error)
	maxUpload   int64
}

func NewServer() *Server {
	return &Server{
		credentials: credentialsFromEnv,
		open: func(ctx context.Context, credentials []byte, spreadsheetId string) (reconcile.Sheet, error) {
			return gsheet.Open(ctx, credentials, spreadsheetId)
		},
		maxUpload: MAX_UPLOAD,
	}
}

// Router builds the gin engine: permissive CORS on every response, OPTIONS
// preflight answered with 200 and no body.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/process", s.process)

	return router
}

func credentialsFromEnv() ([]byte, error) {
	credentials := os.Getenv(CREDENTIALS)
	if credentials == "" {
		return nil, pkgerrors.NewConfigurationError(CREDENTIALS, "GOOGLE_CREDENTIALS環境変数が設定されていません")
	}

	return []byte(credentials), nil
}
