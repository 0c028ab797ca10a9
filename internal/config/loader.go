package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".sprintstat"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for sprintstat settings.
const envPrefix = "SPRINTSTAT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// legacyEnv maps config keys to the unprefixed variables older deployments set.
var legacyEnv = map[string]string{
	"source.github.token": "API_ACCESS_TOKEN",
	"source.github.org":   "GH_ORG",
}

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	bindErr := bindLegacyEnv(viperCfg)
	if bindErr != nil {
		return nil, bindErr
	}

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// bindLegacyEnv binds each key to its prefixed name first, then its legacy name.
func bindLegacyEnv(viperCfg *viper.Viper) error {
	replacer := strings.NewReplacer(".", envKeySeparator)

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + envKeySeparator + strings.ToUpper(replacer.Replace(key))

		err := viperCfg.BindEnv(key, prefixed, legacy)
		if err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	return nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("source.kind", DefaultSourceKind)
	viperCfg.SetDefault("source.github.endpoint", DefaultGitHubEndpoint)
	viperCfg.SetDefault("source.github.token", "")
	viperCfg.SetDefault("source.github.org", "")
	viperCfg.SetDefault("source.github.project_number", 0)
	viperCfg.SetDefault("source.github.page_size", DefaultGitHubPageSize)
	viperCfg.SetDefault("source.github.timeout", DefaultGitHubTimeout)
	viperCfg.SetDefault("source.file.path", "")

	viperCfg.SetDefault("source.fields.iteration", DefaultFieldIteration)
	viperCfg.SetDefault("source.fields.team", DefaultFieldTeam)
	viperCfg.SetDefault("source.fields.status", DefaultFieldStatus)
	viperCfg.SetDefault("source.fields.qa", DefaultFieldQA)
	viperCfg.SetDefault("source.fields.complexity", DefaultFieldComplexity)

	viperCfg.SetDefault("output.dir", DefaultOutputDir)
	viperCfg.SetDefault("output.title", DefaultOutputTitle)
	viperCfg.SetDefault("output.theme", DefaultOutputTheme)
	viperCfg.SetDefault("output.recent_iterations", DefaultOutputRecentIterations)
	viperCfg.SetDefault("output.current_dir", DefaultOutputCurrentDir)

	viperCfg.SetDefault("snapshots.compress_items", DefaultSnapshotsCompressed)

	viperCfg.SetDefault("schedule.cron", DefaultScheduleCron)
	viperCfg.SetDefault("schedule.timezone", DefaultScheduleTimezone)
	viperCfg.SetDefault("schedule.diagnostics_addr", "")

	viperCfg.SetDefault("observability.log_level", DefaultLogLevel)
	viperCfg.SetDefault("observability.log_json", DefaultLogJSON)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.trace_verbose", false)
	viperCfg.SetDefault("observability.pushgateway_url", "")
	viperCfg.SetDefault("observability.push_job", DefaultPushJob)
}
