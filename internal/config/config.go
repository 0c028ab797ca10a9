// Package config loads sprintstat settings from file, environment, and defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Supported source kinds.
const (
	SourceGitHub = "github"
	SourceFile   = "file"
)

// maxGitHubPageSize is the largest page the GitHub GraphQL API serves.
const maxGitHubPageSize = 100

var (
	validThemes    = []string{"light", "dark"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the top-level configuration struct for sprintstat.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Source        SourceConfig        `mapstructure:"source"`
	Output        OutputConfig        `mapstructure:"output"`
	Snapshots     SnapshotsConfig     `mapstructure:"snapshots"`
	Schedule      ScheduleConfig      `mapstructure:"schedule"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// SourceConfig selects and configures the item source.
type SourceConfig struct {
	Kind   string       `mapstructure:"kind"`
	GitHub GitHubConfig `mapstructure:"github"`
	File   FileConfig   `mapstructure:"file"`
	Fields FieldsConfig `mapstructure:"fields"`
}

// GitHubConfig holds GitHub Projects access settings.
type GitHubConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Token         string        `mapstructure:"token"`
	Org           string        `mapstructure:"org"`
	ProjectNumber int           `mapstructure:"project_number"`
	PageSize      int           `mapstructure:"page_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// FileConfig holds the offline export file settings.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

// FieldsConfig names the project fields items are classified by.
type FieldsConfig struct {
	Iteration  string `mapstructure:"iteration"`
	Team       string `mapstructure:"team"`
	Status     string `mapstructure:"status"`
	QA         string `mapstructure:"qa"`
	Complexity string `mapstructure:"complexity"`
}

// OutputConfig controls where and how artifacts are written.
type OutputConfig struct {
	Dir              string `mapstructure:"dir"`
	Title            string `mapstructure:"title"`
	Theme            string `mapstructure:"theme"`
	RecentIterations int    `mapstructure:"recent_iterations"`
	CurrentDir       string `mapstructure:"current_dir"`
}

// SnapshotsConfig controls snapshot persistence.
type SnapshotsConfig struct {
	CompressItems bool `mapstructure:"compress_items"`
}

// ScheduleConfig controls the schedule command.
type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
	// DiagnosticsAddr serves /healthz, /readyz and /metrics while scheduling. Empty disables it.
	DiagnosticsAddr string `mapstructure:"diagnostics_addr"`
}

// ObservabilityConfig controls logging, tracing, and metrics export.
type ObservabilityConfig struct {
	LogLevel       string  `mapstructure:"log_level"`
	LogJSON        bool    `mapstructure:"log_json"`
	Environment    string  `mapstructure:"environment"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string  `mapstructure:"otlp_headers"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
	TraceVerbose   bool    `mapstructure:"trace_verbose"`
	PushgatewayURL string  `mapstructure:"pushgateway_url"`
	PushJob        string  `mapstructure:"push_job"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSourceKind indicates an unsupported source.kind.
	ErrInvalidSourceKind = errors.New("source.kind must be github or file")
	// ErrMissingToken indicates the GitHub source has no token.
	ErrMissingToken = errors.New("source.github.token is required")
	// ErrMissingOrg indicates the GitHub source has no organization.
	ErrMissingOrg = errors.New("source.github.org is required")
	// ErrInvalidProjectNumber indicates the project number is not positive.
	ErrInvalidProjectNumber = errors.New("source.github.project_number must be positive")
	// ErrInvalidPageSize indicates the page size is out of range.
	ErrInvalidPageSize = errors.New("source.github.page_size must be between 1 and 100")
	// ErrMissingFilePath indicates the file source has no path.
	ErrMissingFilePath = errors.New("source.file.path is required")
	// ErrMissingFieldName indicates a classification field name is empty.
	ErrMissingFieldName = errors.New("source.fields entries must be non-empty")
	// ErrInvalidOutputDir indicates the output directory is empty.
	ErrInvalidOutputDir = errors.New("output.dir must be non-empty")
	// ErrInvalidTheme indicates an unsupported chart theme.
	ErrInvalidTheme = errors.New("output.theme must be light or dark")
	// ErrInvalidRecentIterations indicates the recent iteration window is not positive.
	ErrInvalidRecentIterations = errors.New("output.recent_iterations must be positive")
	// ErrInvalidCurrentDir indicates the current badge directory is empty or nested.
	ErrInvalidCurrentDir = errors.New("output.current_dir must be a single directory name")
	// ErrInvalidTimezone indicates the schedule timezone cannot be loaded.
	ErrInvalidTimezone = errors.New("schedule.timezone is not a known location")
	// ErrInvalidLogLevel indicates an unsupported log level.
	ErrInvalidLogLevel = errors.New("observability.log_level must be debug, info, warn or error")
)

// Validate checks Config invariants and returns the first error found.
// Source credentials are checked separately by SourceConfig.Validate, so
// commands that only read snapshots work without them.
func (c *Config) Validate() error {
	outputErr := c.validateOutput()
	if outputErr != nil {
		return outputErr
	}

	if c.Schedule.Timezone != "" {
		_, err := time.LoadLocation(c.Schedule.Timezone)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Schedule.Timezone)
		}
	}

	if c.Observability.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(c.Observability.LogLevel)) {
		return ErrInvalidLogLevel
	}

	return nil
}

func (c *Config) validateOutput() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return ErrInvalidOutputDir
	}

	if c.Output.Theme != "" && !slices.Contains(validThemes, strings.ToLower(c.Output.Theme)) {
		return ErrInvalidTheme
	}

	if c.Output.RecentIterations < 1 {
		return ErrInvalidRecentIterations
	}

	if c.Output.CurrentDir == "" || strings.ContainsAny(c.Output.CurrentDir, `/\`) {
		return ErrInvalidCurrentDir
	}

	return nil
}

// Validate checks that the selected source is fully configured.
func (s *SourceConfig) Validate() error {
	for _, name := range []string{s.Fields.Iteration, s.Fields.Team, s.Fields.Status, s.Fields.QA, s.Fields.Complexity} {
		if strings.TrimSpace(name) == "" {
			return ErrMissingFieldName
		}
	}

	switch s.Kind {
	case SourceGitHub:
		return s.GitHub.validate()
	case SourceFile:
		if s.File.Path == "" {
			return ErrMissingFilePath
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSourceKind, s.Kind)
	}
}

func (g *GitHubConfig) validate() error {
	if g.Token == "" {
		return ErrMissingToken
	}

	if g.Org == "" {
		return ErrMissingOrg
	}

	if g.ProjectNumber <= 0 {
		return ErrInvalidProjectNumber
	}

	if g.PageSize < 1 || g.PageSize > maxGitHubPageSize {
		return ErrInvalidPageSize
	}

	return nil
}
