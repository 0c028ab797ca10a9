package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// groupingMode is the Pushgateway grouping label carrying the app mode.
const groupingMode = "mode"

// pushMetrics replaces the job's metric group on the Pushgateway with
// everything gathered from registry.
func pushMetrics(ctx context.Context, cfg Config, registry prometheus.Gatherer) error {
	job := cfg.PushJob
	if job == "" {
		job = defaultPushJob
	}

	pusher := push.New(cfg.PushgatewayURL, job).Gatherer(registry)

	if cfg.Mode != "" {
		pusher = pusher.Grouping(groupingMode, string(cfg.Mode))
	}

	err := pusher.PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", cfg.PushgatewayURL, err)
	}

	return nil
}

// PrometheusHandler serves the registry in the Prometheus exposition format.
func PrometheusHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
