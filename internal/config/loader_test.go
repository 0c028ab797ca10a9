package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sprintstat/internal/config"
)

const (
	testProjectNumber    = 7
	testPageSize         = 50
	testRecentIterations = 2
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".sprintstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultSourceKind, cfg.Source.Kind)
	assert.Equal(t, config.DefaultGitHubEndpoint, cfg.Source.GitHub.Endpoint)
	assert.Equal(t, config.DefaultGitHubPageSize, cfg.Source.GitHub.PageSize)
	assert.Equal(t, config.DefaultGitHubTimeout, cfg.Source.GitHub.Timeout)
	assert.Equal(t, config.DefaultFieldStatus, cfg.Source.Fields.Status)
	assert.Equal(t, config.DefaultFieldComplexity, cfg.Source.Fields.Complexity)
	assert.Equal(t, config.DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, config.DefaultOutputRecentIterations, cfg.Output.RecentIterations)
	assert.Equal(t, config.DefaultOutputCurrentDir, cfg.Output.CurrentDir)
	assert.Equal(t, config.DefaultScheduleCron, cfg.Schedule.Cron)
	assert.Equal(t, config.DefaultLogLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Snapshots.CompressItems)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `source:
  kind: github
  github:
    token: secret
    org: acme
    project_number: 7
    page_size: 50
    timeout: 10s
  fields:
    complexity: Story Points
output:
  dir: out
  theme: dark
  recent_iterations: 2
snapshots:
  compress_items: true
schedule:
  cron: "@daily"
  timezone: Europe/Berlin
observability:
  log_level: debug
  log_json: true
  pushgateway_url: http://localhost:9091
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Source.GitHub.Token)
	assert.Equal(t, "acme", cfg.Source.GitHub.Org)
	assert.Equal(t, testProjectNumber, cfg.Source.GitHub.ProjectNumber)
	assert.Equal(t, testPageSize, cfg.Source.GitHub.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Source.GitHub.Timeout)
	assert.Equal(t, "Story Points", cfg.Source.Fields.Complexity)
	assert.Equal(t, config.DefaultFieldTeam, cfg.Source.Fields.Team)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "dark", cfg.Output.Theme)
	assert.Equal(t, testRecentIterations, cfg.Output.RecentIterations)
	assert.True(t, cfg.Snapshots.CompressItems)
	assert.Equal(t, "@daily", cfg.Schedule.Cron)
	assert.Equal(t, "Europe/Berlin", cfg.Schedule.Timezone)
	assert.True(t, cfg.Observability.LogJSON)
	assert.Equal(t, "http://localhost:9091", cfg.Observability.PushgatewayURL)
	require.NoError(t, cfg.Source.Validate())
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "output: [unclosed"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidValue_FailsValidation(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "output:\n  recent_iterations: 0\n"))
	require.ErrorIs(t, err, config.ErrInvalidRecentIterations)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SPRINTSTAT_OUTPUT_DIR", "/tmp/env-stats")
	t.Setenv("SPRINTSTAT_SOURCE_GITHUB_PROJECT_NUMBER", "12")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env-stats", cfg.Output.Dir)
	assert.Equal(t, 12, cfg.Source.GitHub.ProjectNumber)
}

func TestLoadConfig_LegacyEnv(t *testing.T) {
	t.Setenv("API_ACCESS_TOKEN", "legacy-token")
	t.Setenv("GH_ORG", "legacy-org")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "legacy-token", cfg.Source.GitHub.Token)
	assert.Equal(t, "legacy-org", cfg.Source.GitHub.Org)
}

func TestLoadConfig_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("API_ACCESS_TOKEN", "legacy-token")
	t.Setenv("SPRINTSTAT_SOURCE_GITHUB_TOKEN", "new-token")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "new-token", cfg.Source.GitHub.Token)
}
