package docstring

import (
	"fmt"
	"strings"
)

// WarningKind classifies a documentation/signature mismatch.
type WarningKind string

const (
	WarnMissingParamDoc  WarningKind = "missing_param_doc"
	WarnUnknownParamDoc  WarningKind = "unknown_param_doc"
	WarnMissingReturnDoc WarningKind = "missing_return_doc"
)

// AllWarningKinds lists every warning class.
func AllWarningKinds() []WarningKind {
	return []WarningKind{WarnMissingParamDoc, WarnUnknownParamDoc, WarnMissingReturnDoc}
}

// Warning is a non-fatal consistency finding.
type Warning struct {
	Kind WarningKind
	Path string // dotted path; empty when produced by Check directly
	Name string // parameter name, empty for return warnings
}

func (w Warning) String() string {
	var msg string
	switch w.Kind {
	case WarnMissingParamDoc:
		msg = fmt.Sprintf("parameter %q is not documented", w.Name)
	case WarnUnknownParamDoc:
		msg = fmt.Sprintf("documented parameter %q is not in the signature", w.Name)
	case WarnMissingReturnDoc:
		msg = "return value is not documented"
	default:
		msg = string(w.Kind)
	}
	if w.Path == "" {
		return msg
	}
	return w.Path + ": " + msg
}

// MissingParamDoc builds a warning for an undocumented declared parameter.
func MissingParamDoc(name string) Warning {
	return Warning{Kind: WarnMissingParamDoc, Name: name}
}

// UnknownParamDoc builds a warning for a documented parameter missing from
// the signature.
func UnknownParamDoc(name string) Warning {
	return Warning{Kind: WarnUnknownParamDoc, Name: name}
}

// MissingReturnDoc builds a warning for an undocumented non-void return.
func MissingReturnDoc() Warning {
	return Warning{Kind: WarnMissingReturnDoc}
}

// Check compares an annotation against the symbol's declared signature. It
// returns nil when the symbol carries no signature and never modifies ann.
// Names compare with leading '*' stripped. Keyword argument entries satisfy
// declared parameters (and a declared **kwargs) but are never reported as
// unknown; a Yields section satisfies a declared return.
func Check(sym *Symbol, ann Annotation) []Warning {
	if sym == nil || sym.Signature == nil {
		return nil
	}

	documented := make(map[string]bool)
	for _, f := range ann.Params {
		if !f.Unnamed {
			documented[paramKey(f.Name)] = true
		}
	}
	for _, f := range ann.KeywordArgs {
		if !f.Unnamed {
			documented[paramKey(f.Name)] = true
		}
	}

	var warnings []Warning
	declared := make(map[string]bool, len(sym.Signature))
	for _, p := range sym.Signature {
		key := paramKey(p.Name)
		declared[key] = true
		if documented[key] {
			continue
		}
		if strings.HasPrefix(p.Name, "**") && len(ann.KeywordArgs) > 0 {
			continue
		}
		warnings = append(warnings, MissingParamDoc(p.Name))
	}

	for _, f := range ann.Params {
		if f.Unnamed || declared[paramKey(f.Name)] {
			continue
		}
		warnings = append(warnings, UnknownParamDoc(f.Name))
	}

	if sym.ReturnDeclared != nil && *sym.ReturnDeclared && ann.Returns == nil && ann.Yields == nil {
		warnings = append(warnings, MissingReturnDoc())
	}
	return warnings
}

// CheckConsistency runs Check over every node of an annotation tree in
// pre-order, tagging each warning with the node's path.
func CheckConsistency(tree *Node) []Warning {
	var warnings []Warning
	tree.Walk(func(n *Node) bool {
		for _, w := range Check(n.Symbol, n.Annotation) {
			w.Path = n.Path
			warnings = append(warnings, w)
		}
		return true
	})
	return warnings
}

func paramKey(name string) string {
	return strings.TrimLeft(strings.TrimSpace(name), "*")
}
