package config

// Config represents the core tact configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Executor  ExecutorConfig  `mapstructure:"executor"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig configures due-job selection for a run cycle
type SchedulerConfig struct {
	// BatchSize caps how many due jobs a single cycle may pick up.
	BatchSize int `mapstructure:"batch_size"`

	// StalenessHours bounds how far back a job with no recorded next run
	// must have last run before it is considered due again.
	StalenessHours int `mapstructure:"staleness_hours"`

	// ClaimSlackSeconds pads the claim window beyond the job timeout so a
	// concurrent invocation does not steal a job that is merely slow.
	ClaimSlackSeconds int `mapstructure:"claim_slack_seconds"`
}

// ExecutorConfig configures job execution
type ExecutorConfig struct {
	// DefaultTimeoutSeconds applies when a job row carries no timeout.
	DefaultTimeoutSeconds int `mapstructure:"default_timeout_seconds"`

	// AgentBinary is the command invoked for agent-delegated jobs.
	AgentBinary string `mapstructure:"agent_binary"`

	// MaxOutputChars and MaxErrorChars bound what the run ledger persists.
	MaxOutputChars int `mapstructure:"max_output_chars"`
	MaxErrorChars  int `mapstructure:"max_error_chars"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	JSON bool `mapstructure:"json"` // structured JSON instead of the console encoder
}

// Default scheduler constants. Config values <= 0 fall back to these.
const (
	DefaultBatchSize         = 5
	DefaultStalenessHours    = 24
	DefaultClaimSlackSeconds = 60
	DefaultTimeoutSeconds    = 300
	DefaultMaxOutputChars    = 10000
	DefaultMaxErrorChars     = 5000
)
