package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	v       *viper.Viper
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
		v:       viper.New(),
	}
}

// NewLoaderWithViper creates a loader on top of an existing viper instance,
// so values the caller already bound (e.g. command line flags) win over
// environment and file values.
func NewLoaderWithViper(rootDir string, v *viper.Viper) Loader {
	return &loader{
		rootDir: rootDir,
		v:       v,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Values bound by the caller (flags)
// 2. Environment variables (DOCSIFT_*)
// 3. Config file (.docsift/config.yml or .docsift/config.yaml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := l.v

	// Set up config file search
	configDir := filepath.Join(l.rootDir, ".docsift")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("DOCSIFT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., DOCSIFT_EXTRACT_WORKERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Extract configuration
	v.BindEnv("extract.workers")
	v.BindEnv("extract.cache_size")

	// Report configuration
	v.BindEnv("report.format")

	// Storage configuration
	v.BindEnv("storage.db_path")
	v.BindEnv("storage.keep_runs")

	// Set defaults in viper
	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extract.workers", defaults.Extract.Workers)
	v.SetDefault("extract.cache_size", defaults.Extract.CacheSize)

	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("report.format", defaults.Report.Format)
	v.SetDefault("report.include", defaults.Report.Include)
	v.SetDefault("report.exclude", defaults.Report.Exclude)
	v.SetDefault("report.sections", defaults.Report.Sections)
	v.SetDefault("report.warnings", defaults.Report.Warnings)

	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
	v.SetDefault("storage.keep_runs", defaults.Storage.KeepRuns)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
