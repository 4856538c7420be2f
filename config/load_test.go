package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tact.toml")
	content := `
[database]
path = "/var/lib/tact/jobs.db"

[scheduler]
batch_size = 3

[executor]
default_timeout_seconds = 120
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tact/jobs.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Scheduler.BatchSize)
	assert.Equal(t, 120, cfg.Executor.DefaultTimeoutSeconds)

	// Unset fields fall back to defaults
	assert.Equal(t, DefaultStalenessHours, cfg.Scheduler.StalenessHours)
	assert.Equal(t, DefaultMaxOutputChars, cfg.Executor.MaxOutputChars)
	assert.Equal(t, "tact-agent", cfg.Executor.AgentBinary)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestGetDatabasePathEnvOverride(t *testing.T) {
	Reset()
	t.Setenv("TACT_DB_PATH", "/tmp/override.db")

	path, err := GetDatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", path)
}

func TestDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBatchSize, cfg.Scheduler.BatchSize)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Executor.DefaultTimeoutSeconds)
	assert.False(t, cfg.Logging.JSON)
}
