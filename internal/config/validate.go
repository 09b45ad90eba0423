package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/docsift/internal/docstring"
)

var (
	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheSize indicates a negative docstring cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidFormat indicates an unsupported report format
	ErrInvalidFormat = errors.New("invalid report format")

	// ErrInvalidPattern indicates a glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidSection indicates an unknown section kind in report.sections
	ErrInvalidSection = errors.New("invalid section kind")

	// ErrInvalidWarning indicates an unknown warning class in report.warnings
	ErrInvalidWarning = errors.New("invalid warning class")

	// ErrInvalidRetention indicates a negative storage.keep_runs
	ErrInvalidRetention = errors.New("invalid run retention")
)

// Validate checks that the configuration is valid and complete.
// Every problem is reported, not just the first.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateReport(&cfg.Report); err != nil {
		errs = append(errs, err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateExtract(cfg *ExtractConfig) error {
	var errs []error

	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	// Zero disables the cache
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	return errors.Join(errs...)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error
	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: ignore pattern %q: %v", ErrInvalidPattern, pattern, err))
		}
	}
	return errors.Join(errs...)
}

func validateReport(cfg *ReportConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Format) {
	case "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'json' or 'yaml', got '%s'", ErrInvalidFormat, cfg.Format))
	}

	for _, pattern := range slices.Concat(cfg.Include, cfg.Exclude) {
		if _, err := glob.Compile(pattern, '.'); err != nil {
			errs = append(errs, fmt.Errorf("%w: path pattern %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	sections := docstring.AllSectionKinds()
	for _, name := range cfg.Sections {
		if !slices.Contains(sections, docstring.SectionKind(name)) {
			errs = append(errs, fmt.Errorf("%w: unknown section '%s'", ErrInvalidSection, name))
		}
	}

	warnings := docstring.AllWarningKinds()
	for _, name := range cfg.Warnings {
		if !slices.Contains(warnings, docstring.WarningKind(name)) {
			errs = append(errs, fmt.Errorf("%w: unknown warning '%s'", ErrInvalidWarning, name))
		}
	}

	return errors.Join(errs...)
}

func validateStorage(cfg *StorageConfig) error {
	// Zero keeps every run
	if cfg.KeepRuns < 0 {
		return fmt.Errorf("%w: keep_runs cannot be negative, got %d", ErrInvalidRetention, cfg.KeepRuns)
	}
	return nil
}
