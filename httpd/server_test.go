package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/utagetools/utage-routes/pkg/errors"
	"github.com/utagetools/utage-routes/reconcile"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeSheet struct {
	rows    [][]string
	updates int
}

func (f *fakeSheet) ReadAll(ctx context.Context) ([][]string, error) {
	return f.rows, nil
}

func (f *fakeSheet) Update(ctx context.Context, area string, values [][]string) error {
	f.updates++
	return nil
}

func testServer(sheet reconcile.Sheet) *Server {
	return &Server{
		credentials: func() ([]byte, error) {
			return []byte(`{"type":"service_account"}`), nil
		},
		open: func(ctx context.Context, credentials []byte, spreadsheetId string) (reconcile.Sheet, error) {
			return sheet, nil
		},
		maxUpload: MAX_UPLOAD,
	}
}

func multipartBody(t *testing.T, url string, csv []byte) (*bytes.Buffer, string) {
	var b bytes.Buffer

	w := multipart.NewWriter(&b)

	if url != "" {
		if err := w.WriteField("spreadsheet_url", url); err != nil {
			t.Fatalf("Unexpected error building request (%v)", err)
		}
	}

	if csv != nil {
		fw, err := w.CreateFormFile("csv_file", "utage.csv")
		if err != nil {
			t.Fatalf("Unexpected error building request (%v)", err)
		}

		if _, err := fw.Write(csv); err != nil {
			t.Fatalf("Unexpected error building request (%v)", err)
		}
	}

	w.Close()

	return &b, w.FormDataContentType()
}

func TestProcess(t *testing.T) {
	sheet := &fakeSheet{
		rows: [][]string{
			{"氏名", "メールアドレス"},
			{"Taro", "a@x.com"},
			{"Hanako", "b@x.com"},
		},
	}

	csv := []byte("メールアドレス,登録経路\n" +
		"A@X.COM,Route1\n" +
		"a@x.com,Route2\n" +
		"c@x.com,Route3\n")

	body, contentType := multipartBody(t, "https://docs.google.com/spreadsheets/d/ABC123/edit", csv)

	rq := httptest.NewRequest(http.MethodPost, "/api/process", body)
	rq.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	testServer(sheet).Router().ServeHTTP(w, rq)

	if w.Code != http.StatusOK {
		t.Fatalf("Incorrect status code - expected %v, got %v (%s)", http.StatusOK, w.Code, w.Body.String())
	}

	if v := w.Header().Get("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("Missing CORS header on response - got %q", v)
	}

	response := struct {
		Success        bool     `json:"success"`
		TotalCount     int      `json:"total_count"`
		SuccessCount   int      `json:"success_count"`
		NotFoundCount  int      `json:"not_found_count"`
		NotFoundEmails []string `json:"not_found_emails"`
	}{}

	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unexpected error unmarshalling response (%v)", err)
	}

	if !response.Success || response.TotalCount != 2 || response.SuccessCount != 1 || response.NotFoundCount != 1 {
		t.Errorf("Incorrect response - got %+v", response)
	}

	if len(response.NotFoundEmails) != 1 || response.NotFoundEmails[0] != "b@x.com" {
		t.Errorf("Incorrect not-found list - got %v", response.NotFoundEmails)
	}

	if sheet.updates != 2 {
		t.Errorf("Expected header + data writes, got %v updates", sheet.updates)
	}
}

func TestProcessWithMissingFields(t *testing.T) {
	body, contentType := multipartBody(t, "", []byte("メールアドレス,登録経路\n"))

	rq := httptest.NewRequest(http.MethodPost, "/api/process", body)
	rq.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	testServer(&fakeSheet{}).Router().ServeHTTP(w, rq)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Incorrect status code - expected %v, got %v", http.StatusInternalServerError, w.Code)
	}

	response := struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{}

	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unexpected error unmarshalling response (%v)", err)
	}

	if response.Success {
		t.Errorf("Expected success:false, got %+v", response)
	}

	if expected := "スプレッドシートURLとCSVファイルが必要です"; response.Error != expected {
		t.Errorf("Incorrect error message\n   expected: %q\n   got:      %q", expected, response.Error)
	}
}

func TestProcessWithoutMultipartContentType(t *testing.T) {
	rq := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewBufferString("spreadsheet_url=ABC123"))
	rq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	testServer(&fakeSheet{}).Router().ServeHTTP(w, rq)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Incorrect status code - expected %v, got %v", http.StatusInternalServerError, w.Code)
	}

	response := struct {
		Error string `json:"error"`
	}{}

	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unexpected error unmarshalling response (%v)", err)
	}

	if expected := "multipart/form-dataが必要です"; response.Error != expected {
		t.Errorf("Incorrect error message\n   expected: %q\n   got:      %q", expected, response.Error)
	}
}

func TestProcessWithMissingCredentials(t *testing.T) {
	srv := testServer(&fakeSheet{})
	srv.credentials = func() ([]byte, error) {
		return nil, pkgerrors.NewConfigurationError(CREDENTIALS, "GOOGLE_CREDENTIALS環境変数が設定されていません")
	}

	body, contentType := multipartBody(t, "ABC123", []byte("メールアドレス,登録経路\n"))

	rq := httptest.NewRequest(http.MethodPost, "/api/process", body)
	rq.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, rq)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Incorrect status code - expected %v, got %v", http.StatusInternalServerError, w.Code)
	}

	response := struct {
		Error string `json:"error"`
	}{}

	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unexpected error unmarshalling response (%v)", err)
	}

	if expected := "GOOGLE_CREDENTIALS環境変数が設定されていません"; response.Error != expected {
		t.Errorf("Incorrect error message\n   expected: %q\n   got:      %q", expected, response.Error)
	}
}

func TestProcessWithOversizedUpload(t *testing.T) {
	srv := testServer(&fakeSheet{})
	srv.maxUpload = 16

	body, contentType := multipartBody(t, "ABC123", []byte("メールアドレス,登録経路\na@x.com,Route1\n"))

	rq := httptest.NewRequest(http.MethodPost, "/api/process", body)
	rq.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, rq)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Incorrect status code - expected %v, got %v", http.StatusInternalServerError, w.Code)
	}
}

func TestPreflight(t *testing.T) {
	rq := httptest.NewRequest(http.MethodOptions, "/api/process", nil)

	w := httptest.NewRecorder()
	testServer(&fakeSheet{}).Router().ServeHTTP(w, rq)

	if w.Code != http.StatusOK {
		t.Fatalf("Incorrect status code - expected %v, got %v", http.StatusOK, w.Code)
	}

	if w.Body.Len() != 0 {
		t.Errorf("Expected empty preflight body, got %q", w.Body.String())
	}

	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}

	for header, expected := range headers {
		if v := w.Header().Get(header); v != expected {
			t.Errorf("Incorrect %v header - expected %q, got %q", header, expected, v)
		}
	}
}

func TestHealth(t *testing.T) {
	rq := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	w := httptest.NewRecorder()
	testServer(&fakeSheet{}).Router().ServeHTTP(w, rq)

	if w.Code != http.StatusOK {
		t.Fatalf("Incorrect status code - expected %v, got %v", http.StatusOK, w.Code)
	}
}
