package config

import (
	"os"

	"github.com/spf13/viper"
)

// DefaultDirPermissions is used when creating the user config directory
const DefaultDirPermissions os.FileMode = 0755

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "tact.db")

	// Scheduler defaults
	v.SetDefault("scheduler.batch_size", DefaultBatchSize)
	v.SetDefault("scheduler.staleness_hours", DefaultStalenessHours)
	v.SetDefault("scheduler.claim_slack_seconds", DefaultClaimSlackSeconds)

	// Executor defaults
	v.SetDefault("executor.default_timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("executor.agent_binary", "tact-agent")
	v.SetDefault("executor.max_output_chars", DefaultMaxOutputChars)
	v.SetDefault("executor.max_error_chars", DefaultMaxErrorChars)

	// Logging defaults
	v.SetDefault("logging.json", false)
}
