package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbmflow/internal/shared/testutil"
)

func TestErrorMiddleware_LogsRequests(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	m := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze?x=1",
		strings.NewReader(`{"session_id":"s","token":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	records := logs.GetRecordsByLevel(slog.LevelWarn)
	require.Len(t, records, 1)
	assert.Equal(t, "http request", records[0].Message)
	assert.Equal(t, "x=1", records[0].Attrs["query"])
	assert.Contains(t, records[0].Attrs["request_body"], "[REDACTED]")
	assert.NotContains(t, records[0].Attrs["request_body"], "abc")
}

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	m := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	h := m.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("unexpected")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestSanitizeRequestBody(t *testing.T) {
	assert.Equal(t, "not json", sanitizeRequestBody("not json"))
	assert.Equal(t, `{"password":"[REDACTED]"}`, sanitizeRequestBody(`{"password":"hunter2"}`))
}
