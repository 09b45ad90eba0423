package report

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/docsift/internal/docstring"
)

var (
	// ErrInvalidPattern is returned when an include or exclude glob does not compile.
	ErrInvalidPattern = errors.New("invalid path pattern")
	// ErrUnknownSection is returned for a section filter naming no known kind.
	ErrUnknownSection = errors.New("unknown section kind")
	// ErrUnknownWarning is returned for a warning filter naming no known class.
	ErrUnknownWarning = errors.New("unknown warning class")
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Filter decides which symbols, sections and warnings end up in a report.
// Path patterns use '.' as the separator, so `pkg.*` matches direct members
// of pkg and `pkg.**` matches everything below it.
type Filter struct {
	include  []compiledPattern
	exclude  []compiledPattern
	sections map[docstring.SectionKind]bool // nil keeps all
	warnings map[docstring.WarningKind]bool // nil keeps all
}

// NewFilter compiles the report options into a Filter.
func NewFilter(opts Options) (*Filter, error) {
	f := &Filter{}

	var err error
	if f.include, err = compilePatterns(opts.Include); err != nil {
		return nil, err
	}
	if f.exclude, err = compilePatterns(opts.Exclude); err != nil {
		return nil, err
	}

	if len(opts.Sections) > 0 {
		known := docstring.AllSectionKinds()
		f.sections = make(map[docstring.SectionKind]bool, len(opts.Sections))
		for _, name := range opts.Sections {
			kind := docstring.SectionKind(name)
			if !slices.Contains(known, kind) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
			}
			f.sections[kind] = true
		}
	}

	if len(opts.Warnings) > 0 {
		known := docstring.AllWarningKinds()
		f.warnings = make(map[docstring.WarningKind]bool, len(opts.Warnings))
		for _, name := range opts.Warnings {
			kind := docstring.WarningKind(name)
			if !slices.Contains(known, kind) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownWarning, name)
			}
			f.warnings[kind] = true
		}
	}

	return f, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// MatchPath reports whether a dotted symbol path passes the include and
// exclude patterns. No include patterns means everything is included.
func (f *Filter) MatchPath(path string) bool {
	if len(f.include) > 0 && !matchesAnyPattern(path, f.include) {
		return false
	}
	return !matchesAnyPattern(path, f.exclude)
}

// KeepSection reports whether a section kind is reported.
func (f *Filter) KeepSection(kind docstring.SectionKind) bool {
	return f.sections == nil || f.sections[kind]
}

// KeepWarning reports whether a warning is reported.
func (f *Filter) KeepWarning(w docstring.Warning) bool {
	if f.warnings != nil && !f.warnings[w.Kind] {
		return false
	}
	return w.Path == "" || f.MatchPath(w.Path)
}

func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	return false
}
