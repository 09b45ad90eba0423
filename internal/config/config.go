// Package config provides configuration loading for docsift.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command line flags (bound by the CLI)
//  2. Environment variables (DOCSIFT_*)
//  3. Project config (.docsift/config.yml)
//  4. Built-in defaults
//
// Nested keys map to environment variables with underscores, e.g.
// extract.workers becomes DOCSIFT_EXTRACT_WORKERS.
package config

// Config represents the complete docsift configuration.
// It can be loaded from .docsift/config.yml with environment variable overrides.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
}

// ExtractConfig tunes the annotation builder.
type ExtractConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`       // parallel subtrees, 1 = sequential
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // memoized docstrings, 0 disables
}

// PathsConfig defines which Python files are skipped during discovery.
type PathsConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns relative to the walked root
}

// ReportConfig controls what the report contains and how it is encoded.
type ReportConfig struct {
	Format   string   `yaml:"format" mapstructure:"format"`     // "json" or "yaml"
	Include  []string `yaml:"include" mapstructure:"include"`   // dotted-path globs
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`   // dotted-path globs
	Sections []string `yaml:"sections" mapstructure:"sections"` // section kinds, empty = all
	Warnings []string `yaml:"warnings" mapstructure:"warnings"` // warning classes, empty = all
}

// StorageConfig defines where runs are persisted.
type StorageConfig struct {
	DBPath   string `yaml:"db_path" mapstructure:"db_path"`     // empty disables persistence
	KeepRuns int    `yaml:"keep_runs" mapstructure:"keep_runs"` // 0 keeps every run
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Workers:   4,
			CacheSize: 1024,
		},
		Paths: PathsConfig{
			Ignore: []string{
				"**/__pycache__/**",
				"venv/**",
				".venv/**",
				"node_modules/**",
				"build/**",
				"dist/**",
			},
		},
		Report: ReportConfig{
			Format:   "json",
			Include:  []string{"**"},
			Exclude:  []string{},
			Sections: []string{},
			Warnings: []string{},
		},
		Storage: StorageConfig{
			DBPath:   "",
			KeepRuns: 20,
		},
	}
}
