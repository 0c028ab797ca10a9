package config

import "time"

// Source defaults.
const (
	DefaultSourceKind          = SourceGitHub
	DefaultGitHubEndpoint      = "https://api.github.com/graphql"
	DefaultGitHubPageSize      = 100
	DefaultGitHubTimeout       = 30 * time.Second
	DefaultFieldIteration      = "Iteration"
	DefaultFieldTeam           = "Team"
	DefaultFieldStatus         = "Status"
	DefaultFieldQA             = "QA"
	DefaultFieldComplexity     = "Complexity"
	DefaultSnapshotsCompressed = false
)

// Output defaults.
const (
	DefaultOutputDir              = "stats"
	DefaultOutputTitle            = "Sprint statistics"
	DefaultOutputTheme            = "light"
	DefaultOutputRecentIterations = 4
	DefaultOutputCurrentDir       = "current"
)

// Schedule defaults.
const (
	DefaultScheduleCron     = "0 6 * * *"
	DefaultScheduleTimezone = "UTC"
)

// Observability defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
	DefaultPushJob  = "sprintstat"
)
