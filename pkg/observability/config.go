// Package observability provides OpenTelemetry tracing, metrics and structured
// logging for every sprintstat mode (one-shot run, scheduler, MCP server).
package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command.
	ModeCLI AppMode = "cli"
	// ModeSchedule is the long-running cron scheduler.
	ModeSchedule AppMode = "schedule"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "sprintstat"
	defaultShutdownTimeoutSec = 5
	defaultPushJob            = "sprintstat"
)

// ErrUnknownLevel is returned by ParseLevel for an unrecognized level name.
var ErrUnknownLevel = errors.New("unknown log level")

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables OTLP export.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// PushgatewayURL receives the run's metrics on shutdown. Empty disables the push.
	PushgatewayURL string

	// PushJob is the Pushgateway job label.
	PushJob string

	// Prometheus attaches a Prometheus registry reader to the meter provider,
	// exposed as Providers.Registry.
	Prometheus bool

	// DebugTrace forces 100% trace sampling.
	DebugTrace bool

	// SampleRatio is the trace sampling ratio when DebugTrace is false.
	SampleRatio float64

	// TraceVerbose keeps per-page source spans.
	TraceVerbose bool

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON log output.
	LogJSON bool

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		PushJob:            defaultPushJob,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps debug, info, warn (or warning) and error to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}
