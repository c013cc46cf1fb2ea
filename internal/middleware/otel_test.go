package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbmflow/internal/config"
	"cbmflow/internal/infrastructure"
)

func TestOTelMiddlewareRecordsRouteMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "cbmflow-test",
		Exporter:    "none",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(t.Context()) })

	m, err := NewOTelMiddleware(providers, nil)
	require.NoError(t, err)

	var traceID string
	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/uploads/{id}", func(w http.ResponseWriter, r *http.Request) {
		traceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/uploads/7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, traceID, 32)

	metricsRec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(metricsRec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), `route="/api/uploads/{id}"`)
}

func TestNewOTelMiddlewareRequiresProviders(t *testing.T) {
	_, err := NewOTelMiddleware(nil, nil)
	assert.Error(t, err)
}

func TestGetRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	assert.Equal(t, "10.0.0.9:1234", GetRealIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetRealIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", GetRealIP(req))
}
