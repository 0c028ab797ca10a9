package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BuildResource exposes buildResource to external tests.
func BuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// RootSpanSampled reports whether the sampler selected for cfg records a root span.
func RootSpanSampled(cfg Config) bool {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(selectSampler(cfg)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("sampler").Start(context.Background(), "root")
	defer span.End()

	return span.SpanContext().IsSampled()
}
