package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "sprintstat.requests.total"
	metricRequestDuration  = "sprintstat.request.duration.seconds"
	metricErrorsTotal      = "sprintstat.errors.total"
	metricInflightRequests = "sprintstat.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK marks a successful request or run.
	StatusOK = "ok"
	// StatusError marks a failed request or run.
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 10min: single snapshot queries up to
// full runs against a large project.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// REDMetrics holds Rate, Error, Duration instruments for request-style work
// such as MCP tool calls.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	set := newInstrumentSet(mt)

	rm := &REDMetrics{
		requestsTotal:    set.counter(metricRequestsTotal, "MCP tool calls", "{request}"),
		requestDuration:  set.seconds(metricRequestDuration, "MCP tool call duration in seconds"),
		errorsTotal:      set.counter(metricErrorsTotal, "Failed MCP tool calls", "{error}"),
		inflightRequests: set.inflight(metricInflightRequests, "MCP tool calls in progress", "{request}"),
	}

	err := set.err()
	if err != nil {
		return nil, fmt.Errorf("red metrics: %w", err)
	}

	return rm, nil
}

// RecordRequest records a completed request with its operation, status, and duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}
