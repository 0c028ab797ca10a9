package observability_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.NotNil(t, providers.Shutdown)

	// Shutdown should succeed without error.
	err = providers.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestInit_NoopSpanIsValid(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	// Creating a span should work even in no-op mode.
	ctx, span := providers.Tracer.Start(context.Background(), "test-op")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
}

func TestInit_WithResourceAttributes(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "test"
	cfg.Mode = observability.ModeMCP

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	// Providers should still be valid with custom resource attributes.
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
}

func TestInit_LoggerHasTracingHandler(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	// The logger returned by Init should be non-nil and usable.
	assert.NotNil(t, providers.Logger)

	// Should not panic when logging with context.
	providers.Logger.InfoContext(context.Background(), "init test")
}

func TestInit_ShutdownIdempotent(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	// Multiple shutdowns should not panic or error.
	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_PrometheusRegistryGathersInstruments(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Prometheus = true

	providers, err := observability.Init(cfg)
	require.NoError(t, err)
	require.NotNil(t, providers.Registry)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	runs, err := observability.NewRunMetrics(providers.Meter)
	require.NoError(t, err)

	runs.RecordRun(context.Background(), observability.RunStats{Items: 7, Iterations: 1})

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}

	assert.Contains(t, names, "sprintstat_items_fetched_total")
}

func TestInit_NoRegistryByDefault(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	assert.Nil(t, providers.Registry)
}

func TestInit_ShutdownPushesToGateway(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		paths  []string
		bodies []string
	)

	gateway := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		body, _ := io.ReadAll(hr.Body)

		mu.Lock()
		paths = append(paths, hr.Method+" "+hr.URL.Path)
		bodies = append(bodies, string(body))
		mu.Unlock()

		rw.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gateway.Close)

	cfg := observability.DefaultConfig()
	cfg.PushgatewayURL = gateway.URL
	cfg.PushJob = "sprintstat_test"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	runs, err := observability.NewRunMetrics(providers.Meter)
	require.NoError(t, err)

	runs.RecordRun(context.Background(), observability.RunStats{Items: 3})

	require.NoError(t, providers.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, paths, 1)
	assert.Equal(t, "PUT /metrics/job/sprintstat_test/mode/cli", paths[0])
	assert.NotEmpty(t, bodies[0])
}

func TestInit_ShutdownReportsPushFailure(t *testing.T) {
	t.Parallel()

	gateway := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(gateway.Close)

	cfg := observability.DefaultConfig()
	cfg.PushgatewayURL = gateway.URL

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	err = providers.Shutdown(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "push metrics")
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single", "key=value", map[string]string{"key": "value"}},
		{"multiple", "k1=v1,k2=v2", map[string]string{"k1": "v1", "k2": "v2"}},
		{"spaces", " k1 = v1 , k2 = v2 ", map[string]string{"k1": "v1", "k2": "v2"}},
		{"no_equals", "invalid", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := observability.ParseOTLPHeaders(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildResource_IncludesAppMode(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeMCP

	res, err := observability.BuildResource(cfg)
	require.NoError(t, err)

	found := false

	for _, attr := range res.Attributes() {
		if string(attr.Key) == "app.mode" {
			assert.Equal(t, "mcp", attr.Value.AsString())

			found = true
		}
	}

	assert.True(t, found, "app.mode attribute not found in resource")
}

func TestSelectSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		debug   bool
		ratio   float64
		sampled bool
	}{
		{"default samples every root", false, 0, true},
		{"full ratio samples every root", false, 1, true},
		{"tiny ratio drops roots", false, 1e-15, false},
		{"debug overrides ratio", true, 1e-15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := observability.DefaultConfig()
			cfg.DebugTrace = tt.debug
			cfg.SampleRatio = tt.ratio

			assert.Equal(t, tt.sampled, observability.RootSpanSampled(cfg))
		})
	}
}
