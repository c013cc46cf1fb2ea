package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbmflow/internal/config"
	"cbmflow/internal/shared/testutil"
	"cbmflow/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "data", "uploads.db")
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	app, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	return app
}

func do(t *testing.T, h http.Handler, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "orders.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return do(t, h, http.MethodPost, "/api/upload", mw.FormDataContentType(), body)
}

func TestNewApplicationRequiresConfig(t *testing.T) {
	_, err := NewApplication(nil, nil)
	assert.Error(t, err)
}

func TestNewApplicationRejectsUnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "mongodb"
	logger, _ := testutil.NewTestLogger(t)

	_, err := NewApplication(cfg, logger)
	assert.ErrorContains(t, err, "mongodb")
}

func TestApplicationEndToEnd(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	h := app.Router

	rec := upload(t, h, testutil.ScenarioWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var uploaded struct {
		SessionID string `json:"session_id"`
		TotalRows int    `json:"total_rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, 3, uploaded.TotalRows)

	window := fmt.Sprintf(`{"session_id":%q,"date_from":"2025-09-15","date_to":"2025-09-18","group_by":"warehouse"}`, uploaded.SessionID)

	rec = do(t, h, http.MethodPost, "/api/analyze", "application/json", strings.NewReader(window))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Daily  []map[string]any `json:"daily"`
		Totals map[string]any   `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Daily, 4)
	assert.Equal(t, 66.017872-60.75, res.Totals["total_net_flow_cbm"])

	query := "?session_id=" + uploaded.SessionID + "&date_from=2025-09-15&date_to=2025-09-18"
	rec = do(t, h, http.MethodGet, "/api/download/csv"+query, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "date,inbound_cbm,inbound_qty,outbound_cbm_si")

	rec = do(t, h, http.MethodPost, "/api/download/summary", "application/json", strings.NewReader(window))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(t, h, http.MethodGet, "/api/download/report"+query, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Summary Statistics")

	rec = do(t, h, http.MethodGet, "/api/uploads", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Uploads []store.UploadRecord `json:"uploads"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Equal(t, 1, history.Count)
	assert.Equal(t, uploaded.SessionID, history.Uploads[0].ID)
	assert.Equal(t, "2025-09-15", history.Uploads[0].MinDate.String())

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "datasets_built_total")
}

func TestApplicationProbes(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	for _, path := range []string{"/api/health", "/api/health/live", "/api/health/ready"} {
		rec := do(t, app.Router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(t, app.Router, http.MethodGet, "/api/health/ready", "", nil)
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ok", ready.Checks["ledger"])

	rec = do(t, app.Router, http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), config.AppVersion)
}

func TestApplicationErrors(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := do(t, app.Router, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "json")

	rec = do(t, app.Router, http.MethodDelete, "/api/upload", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, app.Router, http.MethodPost, "/api/analyze", "application/json",
		strings.NewReader(`{"session_id":"5b0e3c1e-8a43-4c1a-9d6e-6a7d2f0f1b2c","date_from":"2025-09-15","date_to":"2025-09-15"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data uploaded. Please upload a file first.")
}

func TestApplicationWithoutTelemetryOrStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.Enabled = false
	cfg.Storage.Driver = DriverNone
	app := newTestApp(t, cfg)

	rec := do(t, app.Router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = upload(t, app.Router, testutil.ScenarioWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app.Router, http.MethodGet, "/api/uploads", "", nil)
	assert.JSONEq(t, `{"uploads":[],"count":0}`, rec.Body.String())
}

func TestApplicationServeAndStop(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	assert.NoError(t, app.Stop(context.Background()))
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, 5*time.Minute, sweepInterval(2*time.Hour))
	assert.Equal(t, time.Minute, sweepInterval(2*time.Minute))
	assert.Equal(t, time.Second, sweepInterval(0))
}
