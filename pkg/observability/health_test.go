package observability_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
)

func serve(t *testing.T, h http.Handler, path string) (int, map[string]string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestHealthHandler_ReturnsOK(t *testing.T) {
	t.Parallel()

	code, body := serve(t, observability.HealthHandler(), "/healthz")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyHandler(t *testing.T) {
	t.Parallel()

	pass := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("store not writable") }

	code, body := serve(t, observability.ReadyHandler(pass, pass), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = serve(t, observability.ReadyHandler(pass, fail), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "store not writable", body["error"])

	code, _ = serve(t, observability.ReadyHandler(), "/readyz")
	assert.Equal(t, http.StatusOK, code)
}

func TestDiagnosticsServer_ServesEndpoints(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "sprintstat_diag_checks_total", Help: "diagnostics checks"})
	registry.MustRegister(counter)
	counter.Inc()

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", registry,
		nooptrace.NewTracerProvider().Tracer("test"), discardLogger())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, srv.Close(context.Background())) })

	base := "http://" + srv.Addr()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, getErr := http.Get(base + path) //nolint:noctx // test request
		require.NoError(t, getErr)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.NoError(t, resp.Body.Close())
	}

	resp, err := http.Get(base + "/metrics") //nolint:noctx // test request
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sprintstat_diag_checks_total 1")
}

func TestDiagnosticsServer_NoMetricsWithoutRegistry(t *testing.T) {
	t.Parallel()

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", nil,
		nooptrace.NewTracerProvider().Tracer("test"), discardLogger())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, srv.Close(context.Background())) })

	resp, err := http.Get("http://" + srv.Addr() + "/metrics") //nolint:noctx // test request
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
