package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .docsift/config.yml and .docsift/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values
// - Values set on a caller-provided viper win over env and file
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects each invalid field and reports all problems at once

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".docsift")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.Equal(t, 1024, cfg.Extract.CacheSize)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, []string{"**"}, cfg.Report.Include)
	assert.Empty(t, cfg.Report.Exclude)
	assert.Empty(t, cfg.Report.Sections)
	assert.Empty(t, cfg.Report.Warnings)
	assert.Equal(t, "", cfg.Storage.DBPath)
	assert.Equal(t, 20, cfg.Storage.KeepRuns)
	assert.Contains(t, cfg.Paths.Ignore, "**/__pycache__/**")

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Extract, cfg.Extract)
	assert.Equal(t, expected.Paths.Ignore, cfg.Paths.Ignore)
	assert.Equal(t, expected.Report.Format, cfg.Report.Format)
	assert.Equal(t, expected.Report.Include, cfg.Report.Include)
	assert.Empty(t, cfg.Report.Exclude)
	assert.Equal(t, expected.Storage, cfg.Storage)
}

func TestLoadConfig_LoadsFromConfigFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, name, `
extract:
  workers: 8
  cache_size: 0

paths:
  ignore:
    - "legacy/**"

report:
  format: yaml
  include: ["app.**"]
  exclude: ["**._*"]
  sections: [summary, deprecated]
  warnings: [missing_return_doc]

storage:
  db_path: .docsift/index.db
  keep_runs: 5
`)

			cfg, err := NewLoader(dir).Load()
			require.NoError(t, err)

			assert.Equal(t, 8, cfg.Extract.Workers)
			assert.Equal(t, 0, cfg.Extract.CacheSize)
			assert.Equal(t, []string{"legacy/**"}, cfg.Paths.Ignore)
			assert.Equal(t, "yaml", cfg.Report.Format)
			assert.Equal(t, []string{"app.**"}, cfg.Report.Include)
			assert.Equal(t, []string{"**._*"}, cfg.Report.Exclude)
			assert.Equal(t, []string{"summary", "deprecated"}, cfg.Report.Sections)
			assert.Equal(t, []string{"missing_return_doc"}, cfg.Report.Warnings)
			assert.Equal(t, ".docsift/index.db", cfg.Storage.DBPath)
			assert.Equal(t, 5, cfg.Storage.KeepRuns)
		})
	}
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "report:\n  format: yaml\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Report.Format)
	assert.Equal(t, []string{"**"}, cfg.Report.Include)
	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.Equal(t, 1024, cfg.Extract.CacheSize)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
extract:
  workers: 2
report:
  format: yaml
storage:
  db_path: file.db
`)

	t.Setenv("DOCSIFT_EXTRACT_WORKERS", "16")
	t.Setenv("DOCSIFT_STORAGE_DB_PATH", "env.db")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Extract.Workers)
	assert.Equal(t, "env.db", cfg.Storage.DBPath)
	// Not overridden, comes from the file
	assert.Equal(t, "yaml", cfg.Report.Format)
}

func TestLoadConfig_CallerViperWins(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "extract:\n  workers: 2\n")
	t.Setenv("DOCSIFT_EXTRACT_WORKERS", "3")

	v := viper.New()
	v.Set("extract.workers", 7)

	cfg, err := NewLoaderWithViper(dir, v).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Extract.Workers)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
report:
  format: "unclosed quote
  include: not-a-list
`)

	cfg, err := NewLoader(dir).Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "extract:\n  workers: 0\n")

	cfg, err := NewLoader(dir).Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero workers", func(c *Config) { c.Extract.Workers = 0 }, ErrInvalidWorkers},
		{"negative cache", func(c *Config) { c.Extract.CacheSize = -1 }, ErrInvalidCacheSize},
		{"unknown format", func(c *Config) { c.Report.Format = "toml" }, ErrInvalidFormat},
		{"bad include glob", func(c *Config) { c.Report.Include = []string{"app.[x"} }, ErrInvalidPattern},
		{"bad ignore glob", func(c *Config) { c.Paths.Ignore = []string{"[x"} }, ErrInvalidPattern},
		{"unknown section", func(c *Config) { c.Report.Sections = []string{"chapter"} }, ErrInvalidSection},
		{"unknown warning", func(c *Config) { c.Report.Warnings = []string{"typo"} }, ErrInvalidWarning},
		{"negative retention", func(c *Config) { c.Storage.KeepRuns = -1 }, ErrInvalidRetention},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_AcceptsYmlAlias(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Report.Format = "YML"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extract.Workers = -1
	cfg.Extract.CacheSize = -5
	cfg.Report.Format = ""
	cfg.Report.Sections = []string{"nope"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidSection)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "cache_size")
}
