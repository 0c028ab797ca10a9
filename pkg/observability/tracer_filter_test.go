package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/sprintstat/pkg/observability"
)

func TestFilteringProvider_DropsHotPathSpans(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	base := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	tracer := observability.NewFilteringTracerProvider(base).Tracer("sprintstat/burndown")

	ctx, parent := tracer.Start(context.Background(), "burndown.History")

	for range 3 {
		_, day := tracer.Start(ctx, "burndown.day")
		day.End()
	}

	_, page := tracer.Start(ctx, "github.items")
	page.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "burndown.History", spans[0].Name)
}

func TestFilteringProvider_NoopSpanIsUsable(t *testing.T) {
	t.Parallel()

	tracer := observability.NewFilteringTracerProvider(nooptrace.NewTracerProvider()).Tracer("x")

	ctx, span := tracer.Start(context.Background(), "burndown.day")
	span.SetName("renamed")
	span.End()

	assert.NotNil(t, ctx)
}
