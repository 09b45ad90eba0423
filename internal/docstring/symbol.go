package docstring

// SymbolKind identifies the kind of source entity a Symbol represents.
type SymbolKind string

const (
	KindModule   SymbolKind = "module"
	KindClass    SymbolKind = "class"
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
	KindField    SymbolKind = "field"
)

// Param is one declared parameter of a callable symbol.
type Param struct {
	Name         string
	DeclaredType string // empty when the parameter has no annotation
	HasDefault   bool
}

// Symbol is a node of the caller-owned symbol tree. Children must form a tree:
// no cycles and at most one parent per symbol.
type Symbol struct {
	Kind SymbolKind
	Name string

	// RawDoc is the documentation text as extracted from source. Nil means the
	// symbol has no documentation at all.
	RawDoc *string

	// Signature is non-nil only when the caller knows the declared parameters.
	// An empty, non-nil slice declares a callable with no parameters.
	Signature []Param

	// ReturnDeclared reports whether the declared return type is non-void.
	// Nil means unknown.
	ReturnDeclared *bool

	Children []*Symbol
}

// Doc returns the raw documentation text, or "" when absent.
func (s *Symbol) Doc() string {
	if s == nil || s.RawDoc == nil {
		return ""
	}
	return *s.RawDoc
}

// StringPtr returns a pointer to a copy of v.
func StringPtr(v string) *string {
	return &v
}

// BoolPtr returns a pointer to a copy of v.
func BoolPtr(v bool) *bool {
	return &v
}

// joinPath appends name to a dotted parent path. Empty names (an anonymous
// project root) contribute nothing.
func joinPath(parent, name string) string {
	switch {
	case name == "":
		return parent
	case parent == "":
		return name
	default:
		return parent + "." + name
	}
}
