package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const readHeaderTimeout = 5 * time.Second

// DiagnosticsServer serves /healthz, /readyz and /metrics for the
// long-running scheduler.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
}

// NewDiagnosticsServer starts listening on addr. Requests are traced with
// tracer; /metrics is served only when registry is non-nil.
func NewDiagnosticsServer(
	addr string, registry *prometheus.Registry, tracer trace.Tracer, logger *slog.Logger, checks ...ReadyCheck,
) (*DiagnosticsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/healthz", HealthHandler())
	mux.Handle("/readyz", ReadyHandler(checks...))

	if registry != nil {
		mux.Handle("/metrics", PrometheusHandler(registry))
	}

	var lc net.ListenConfig

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: HTTPMiddleware(tracer, mux), ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close shuts the server down, waiting for in-flight probes up to ctx.
func (d *DiagnosticsServer) Close(ctx context.Context) error {
	err := d.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
