package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/docsift/internal/docstring"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding for reports.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want json or yaml)", s)
	}
}

// Options control which parts of an extraction end up in a report.
type Options struct {
	Include  []string // dotted-path globs; empty includes everything
	Exclude  []string
	Sections []string // section kinds to keep; empty keeps all
	Warnings []string // warning classes to keep; empty keeps all
}

// Report is the serializable view of one extraction.
type Report struct {
	Symbols      []SymbolEntry      `json:"symbols" yaml:"symbols"`
	Todos        []TodoEntry        `json:"todos" yaml:"todos"`
	Deprecations []DeprecationEntry `json:"deprecations" yaml:"deprecations"`
	Warnings     []WarningEntry     `json:"warnings" yaml:"warnings"`
	Totals       Totals             `json:"totals" yaml:"totals"`
}

// Totals summarizes a report.
type Totals struct {
	Symbols      int `json:"symbols" yaml:"symbols"`
	Documented   int `json:"documented" yaml:"documented"`
	Todos        int `json:"todos" yaml:"todos"`
	Deprecations int `json:"deprecations" yaml:"deprecations"`
	Warnings     int `json:"warnings" yaml:"warnings"`
}

// SymbolEntry is one annotated symbol.
type SymbolEntry struct {
	Path        string           `json:"path" yaml:"path"`
	Kind        string           `json:"kind" yaml:"kind"`
	Summary     *string          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description *string          `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Field          `json:"params,omitempty" yaml:"params,omitempty"`
	KeywordArgs []Field          `json:"keyword_args,omitempty" yaml:"keyword_args,omitempty"`
	Receives    []Field          `json:"receives,omitempty" yaml:"receives,omitempty"`
	Attributes  []Field          `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Returns     *Return          `json:"returns,omitempty" yaml:"returns,omitempty"`
	Yields      *Return          `json:"yields,omitempty" yaml:"yields,omitempty"`
	Raises      []Field          `json:"raises,omitempty" yaml:"raises,omitempty"`
	Deprecated  *string          `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Since       *string          `json:"since,omitempty" yaml:"since,omitempty"`
	Todos       []string         `json:"todos,omitempty" yaml:"todos,omitempty"`
	SeeAlso     []string         `json:"see_also,omitempty" yaml:"see_also,omitempty"`
	Notes       []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Warnings    []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Examples    []string         `json:"examples,omitempty" yaml:"examples,omitempty"`
	Unknown     []UnknownSection `json:"unknown_sections,omitempty" yaml:"unknown_sections,omitempty"`
}

// Field is one entry of a parameter, attribute or raises list.
type Field struct {
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Type        *string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string  `json:"description" yaml:"description"`
	Unnamed     bool    `json:"unnamed,omitempty" yaml:"unnamed,omitempty"`
}

// Return documents a return or yield value.
type Return struct {
	Type        *string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string  `json:"description" yaml:"description"`
}

// UnknownSection keeps a section with an unrecognized header verbatim.
type UnknownSection struct {
	Header string `json:"header" yaml:"header"`
	Body   string `json:"body" yaml:"body"`
}

type TodoEntry struct {
	Path string `json:"path" yaml:"path"`
	Text string `json:"text" yaml:"text"`
}

type DeprecationEntry struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

type WarningEntry struct {
	Kind    string `json:"kind" yaml:"kind"`
	Path    string `json:"path" yaml:"path"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// New builds a report from an annotation tree, its aggregate index and the
// consistency warnings. Symbols are listed in pre-order. A symbol filtered out
// by path does not hide its descendants. The anonymous root is never listed.
func New(tree *docstring.Node, index *docstring.AggregateIndex, warnings []docstring.Warning, opts Options) (*Report, error) {
	filter, err := NewFilter(opts)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Symbols:      []SymbolEntry{},
		Todos:        []TodoEntry{},
		Deprecations: []DeprecationEntry{},
		Warnings:     []WarningEntry{},
	}

	tree.Walk(func(n *docstring.Node) bool {
		if n.Path == "" || !filter.MatchPath(n.Path) {
			return true
		}
		entry := symbolEntry(n, filter)
		if entry.documented() {
			r.Totals.Documented++
		}
		r.Symbols = append(r.Symbols, entry)
		return true
	})

	if index != nil {
		if filter.KeepSection(docstring.SectionTodo) {
			for _, t := range index.Todos {
				if filter.MatchPath(t.Path) {
					r.Todos = append(r.Todos, TodoEntry{Path: t.Path, Text: t.Text})
				}
			}
		}
		if filter.KeepSection(docstring.SectionDeprecated) {
			for _, d := range index.Deprecated {
				if filter.MatchPath(d.Path) {
					r.Deprecations = append(r.Deprecations, DeprecationEntry{Path: d.Path, Reason: d.Reason})
				}
			}
		}
	}

	for _, w := range warnings {
		if filter.KeepWarning(w) {
			r.Warnings = append(r.Warnings, WarningEntry{
				Kind:    string(w.Kind),
				Path:    w.Path,
				Name:    w.Name,
				Message: w.String(),
			})
		}
	}

	r.Totals.Symbols = len(r.Symbols)
	r.Totals.Todos = len(r.Todos)
	r.Totals.Deprecations = len(r.Deprecations)
	r.Totals.Warnings = len(r.Warnings)
	return r, nil
}

func symbolEntry(n *docstring.Node, filter *Filter) SymbolEntry {
	ann := n.Annotation
	entry := SymbolEntry{Path: n.Path}
	if n.Symbol != nil {
		entry.Kind = string(n.Symbol.Kind)
	}

	keep := filter.KeepSection
	if keep(docstring.SectionSummary) {
		entry.Summary = ann.Summary
	}
	if keep(docstring.SectionDescription) {
		entry.Description = ann.Description
	}
	if keep(docstring.SectionArgs) {
		entry.Params = fields(ann.Params)
	}
	if keep(docstring.SectionKeywordArgs) {
		entry.KeywordArgs = fields(ann.KeywordArgs)
	}
	if keep(docstring.SectionReceives) {
		entry.Receives = fields(ann.Receives)
	}
	if keep(docstring.SectionAttributes) {
		entry.Attributes = fields(ann.Attributes)
	}
	if keep(docstring.SectionReturns) {
		entry.Returns = returnDoc(ann.Returns)
	}
	if keep(docstring.SectionYields) {
		entry.Yields = returnDoc(ann.Yields)
	}
	if keep(docstring.SectionRaises) {
		entry.Raises = fields(ann.Raises)
	}
	if keep(docstring.SectionDeprecated) {
		entry.Deprecated = ann.Deprecated
	}
	if keep(docstring.SectionSince) {
		entry.Since = ann.Since
	}
	if keep(docstring.SectionTodo) {
		entry.Todos = ann.Todos
	}
	if keep(docstring.SectionSeeAlso) {
		entry.SeeAlso = ann.SeeAlso
	}
	if keep(docstring.SectionNote) {
		entry.Notes = ann.Notes
	}
	if keep(docstring.SectionWarning) {
		entry.Warnings = ann.Warnings
	}
	if keep(docstring.SectionExample) {
		entry.Examples = ann.Examples
	}
	if keep(docstring.SectionUnknown) {
		for _, u := range ann.UnknownSections {
			entry.Unknown = append(entry.Unknown, UnknownSection{Header: u.Header, Body: u.Body})
		}
	}
	return entry
}

func (e SymbolEntry) documented() bool {
	return e.Summary != nil || e.Description != nil
}

func fields(in []docstring.FieldEntry) []Field {
	if len(in) == 0 {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		out[i] = Field{Name: f.Name, Type: f.TypeHint, Description: f.Description, Unnamed: f.Unnamed}
	}
	return out
}

func returnDoc(r *docstring.ReturnDoc) *Return {
	if r == nil {
		return nil
	}
	return &Return{Type: r.TypeHint, Description: r.Description}
}

// Write encodes the report to w.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteFile writes the report atomically: a temp file in the target directory
// is renamed over path once fully written.
func (r *Report) WriteFile(path string, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docsift-report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if err := r.Write(tmp, format); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Clean up temp file on error
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
