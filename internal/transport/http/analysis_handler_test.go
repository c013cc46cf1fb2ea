package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "cbmflow/internal/errors"
	"cbmflow/internal/services"
	"cbmflow/internal/shared/testutil"
	"cbmflow/internal/store"
	"cbmflow/internal/validation"
)

const testUploadLimit = 64 << 10

func newAnalysisRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	validator := validation.NewFileValidator(logger, testUploadLimit, []string{".xlsx"})
	svc := services.NewAnalysisService(services.NewSessionStore(time.Hour, 10, logger), store.NopLedger{},
		validator, services.AnalysisOptions{MaxWindowDays: 366}, logger)

	eh := apierrors.NewErrorHandler(logger, false)
	r := chi.NewRouter()
	r.Mount("/api", NewAnalysisHandler(svc, testUploadLimit, logger, eh).Routes())
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func doUpload(t *testing.T, h http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doUpload(t, h, "orders.xlsx", testutil.ScenarioWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.SessionID
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func problemCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	code, _ := body["error_code"].(string)
	return code
}

func TestUploadHandler(t *testing.T) {
	h := newAnalysisRouter(t)

	rec := doUpload(t, h, "../../orders.xlsx", testutil.ScenarioWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "orders.xlsx", resp["filename"])
	assert.Equal(t, 3.0, resp["total_rows"])
	assert.NotEmpty(t, resp["session_id"])

	columns := resp["columns_detected"].(map[string]any)
	assert.Equal(t, "SI Total CBM", columns["si_total_cbm"])
	assert.Nil(t, columns["per_unit_cbm"])

	dates := resp["date_range"].(map[string]any)
	assert.Equal(t, "2025-09-15", dates["min_date"])
	assert.Equal(t, "2025-09-18", dates["max_date"])
}

func TestUploadHandlerErrors(t *testing.T) {
	h := newAnalysisRouter(t)

	tests := []struct {
		name       string
		filename   string
		content    []byte
		wantStatus int
		wantCode   string
	}{
		{"wrong extension", "orders.csv", []byte("a,b\n1,2"), http.StatusBadRequest, apierrors.CodeUnsupportedFileType},
		{"empty file", "orders.xlsx", nil, http.StatusUnprocessableEntity, apierrors.CodeEmptyFile},
		{"not a workbook", "orders.xlsx", []byte("PK but not really"), http.StatusUnprocessableEntity, apierrors.CodeInvalidWorkbook},
		{"too large", "orders.xlsx", make([]byte, testUploadLimit+10), http.StatusRequestEntityTooLarge, apierrors.CodeFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doUpload(t, h, tt.filename, tt.content)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, problemCode(t, rec))
		})
	}

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartUpload(t, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		rec := postJSON(h, "/api/upload", `{}`)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestAnalyzeHandler(t *testing.T) {
	h := newAnalysisRouter(t)
	id := uploadSession(t, h)

	rec := postJSON(h, "/api/analyze", `{"session_id":"`+id+`","date_from":"2025-09-15","date_to":"2025-09-18","group_by":"warehouse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res["daily"], 4)
	totals := res["totals"].(map[string]any)
	assert.Equal(t, 66.017872, totals["total_inbound_cbm"])
	assert.Equal(t, 60.75, totals["total_outbound_cbm_si"])
	grouped := res["grouped"].(map[string]any)
	assert.Equal(t, "Warehouse", grouped["column"])
}

func TestAnalyzeHandlerErrors(t *testing.T) {
	h := newAnalysisRouter(t)
	id := uploadSession(t, h)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"session_id":`, http.StatusBadRequest, ""},
		{"missing session", `{"date_from":"2025-09-15","date_to":"2025-09-18"}`, http.StatusBadRequest, ""},
		{"unknown session", `{"session_id":"5b0e3c1e-8a43-4c1a-9d6e-6a7d2f0f1b2c","date_from":"2025-09-15","date_to":"2025-09-18"}`,
			http.StatusNotFound, apierrors.CodeDatasetNotFound},
		{"reversed window", `{"session_id":"` + id + `","date_from":"2025-09-18","date_to":"2025-09-15"}`,
			http.StatusBadRequest, apierrors.CodeInvalidWindow},
		{"unparseable date", `{"session_id":"` + id + `","date_from":"soon","date_to":"2025-09-15"}`,
			http.StatusBadRequest, apierrors.CodeInvalidWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, "/api/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, problemCode(t, rec))
			}
		})
	}
}

func TestDownloadHandlers(t *testing.T) {
	h := newAnalysisRouter(t)
	id := uploadSession(t, h)

	query := url.Values{
		"session_id": {id},
		"date_from":  {"2025-09-15"},
		"date_to":    {"2025-09-18"},
	}

	t.Run("csv", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/csv?"+query.Encode(), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, `attachment; filename="cbm_analysis.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 5)
		assert.Equal(t, "2025-09-16,0.000000,0,20.500000,9,-20.500000,-9", strings.TrimSpace(lines[2]))
	})

	t.Run("report", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/report?"+query.Encode(), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, `attachment; filename="cbm_report.html"`, rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Body.String(), "CBM Analysis Report")
	})

	t.Run("summary", func(t *testing.T) {
		rec := postJSON(h, "/api/download/summary", `{"session_id":"`+id+`","date_from":"2025-09-15","date_to":"2025-09-18","group_by":"warehouse"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, `attachment; filename="cbm_summary.xlsx"`, rec.Header().Get("Content-Disposition"))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Summary")
	})

	t.Run("missing query parameters", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/csv?session_id="+id, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUploadsHandler(t *testing.T) {
	h := newAnalysisRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uploads":[],"count":0}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
