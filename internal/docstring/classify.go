package docstring

import "strings"

// SectionKind is the canonical kind of a documentation section.
type SectionKind string

const (
	SectionSummary     SectionKind = "summary"
	SectionDescription SectionKind = "description"
	SectionArgs        SectionKind = "args"
	SectionKeywordArgs SectionKind = "keyword_args"
	SectionReceives    SectionKind = "receives"
	SectionReturns     SectionKind = "returns"
	SectionYields      SectionKind = "yields"
	SectionRaises      SectionKind = "raises"
	SectionExample     SectionKind = "example"
	SectionNote        SectionKind = "note"
	SectionWarning     SectionKind = "warning"
	SectionDeprecated  SectionKind = "deprecated"
	SectionSince       SectionKind = "since"
	SectionTodo        SectionKind = "todo"
	SectionSeeAlso     SectionKind = "see_also"
	SectionAttributes  SectionKind = "attributes"
	SectionUnknown     SectionKind = "unknown"
)

// headerKinds maps case-folded header spellings (inner whitespace collapsed) to
// their canonical kind.
var headerKinds = map[string]SectionKind{
	"args":              SectionArgs,
	"arguments":         SectionArgs,
	"parameters":        SectionArgs,
	"keyword args":      SectionKeywordArgs,
	"keyword arguments": SectionKeywordArgs,
	"other parameters":  SectionKeywordArgs,
	"receives":          SectionReceives,
	"returns":           SectionReturns,
	"return":            SectionReturns,
	"yields":            SectionYields,
	"yield":             SectionYields,
	"raises":            SectionRaises,
	"throws":            SectionRaises,
	"exceptions":        SectionRaises,
	"attributes":        SectionAttributes,
	"class attributes":  SectionAttributes,
	"example":           SectionExample,
	"examples":          SectionExample,
	"note":              SectionNote,
	"notes":             SectionNote,
	"warning":           SectionWarning,
	"warnings":          SectionWarning,
	"warns":             SectionWarning,
	"deprecated":        SectionDeprecated,
	"since":             SectionSince,
	"todo":              SectionTodo,
	"todos":             SectionTodo,
	"see also":          SectionSeeAlso,
	"seealso":           SectionSeeAlso,
	"references":        SectionSeeAlso,
}

// fieldTags maps Sphinx field tags to the kind of section they contribute to.
// `type`, `vartype`, `rtype` and `ytype` carry the type of an entry documented
// by a sibling tag.
var fieldTags = map[string]SectionKind{
	"param":      SectionArgs,
	"parameter":  SectionArgs,
	"arg":        SectionArgs,
	"argument":   SectionArgs,
	"type":       SectionArgs,
	"key":        SectionKeywordArgs,
	"keyword":    SectionKeywordArgs,
	"kwarg":      SectionKeywordArgs,
	"kwparam":    SectionKeywordArgs,
	"returns":    SectionReturns,
	"return":     SectionReturns,
	"rtype":      SectionReturns,
	"yields":     SectionYields,
	"yield":      SectionYields,
	"ytype":      SectionYields,
	"raises":     SectionRaises,
	"raise":      SectionRaises,
	"except":     SectionRaises,
	"exception":  SectionRaises,
	"var":        SectionAttributes,
	"ivar":       SectionAttributes,
	"cvar":       SectionAttributes,
	"vartype":    SectionAttributes,
	"deprecated": SectionDeprecated,
	"since":      SectionSince,
	"seealso":    SectionSeeAlso,
	"see":        SectionSeeAlso,
	"note":       SectionNote,
	"warning":    SectionWarning,
	"warns":      SectionWarning,
	"example":    SectionExample,
	"todo":       SectionTodo,
	"version":    SectionUnknown,
	"meta":       SectionUnknown,
}

// directives maps reST directives to section kinds.
var directives = map[string]SectionKind{
	"deprecated":     SectionDeprecated,
	"versionadded":   SectionSince,
	"versionchanged": SectionUnknown,
	"note":           SectionNote,
	"warning":        SectionWarning,
	"seealso":        SectionSeeAlso,
	"todo":           SectionTodo,
}

func fieldTagKind(tag string) (SectionKind, bool) {
	kind, ok := fieldTags[tag]
	return kind, ok
}

func directiveKind(name string) (SectionKind, bool) {
	kind, ok := directives[name]
	return kind, ok
}

// Classify maps a header spelling to its canonical kind. A trailing colon and
// surrounding whitespace are ignored. Anything not in the synonym table is
// SectionUnknown.
func Classify(header string) SectionKind {
	if kind, ok := lookupHeader(header); ok {
		return kind
	}
	return SectionUnknown
}

func lookupHeader(header string) (SectionKind, bool) {
	key := strings.TrimSpace(header)
	key = strings.TrimSpace(strings.TrimSuffix(key, ":"))
	key = strings.ToLower(strings.Join(strings.Fields(key), " "))
	kind, ok := headerKinds[key]
	return kind, ok
}

// IsFieldList reports whether sections of this kind hold a field list.
func (k SectionKind) IsFieldList() bool {
	switch k {
	case SectionArgs, SectionKeywordArgs, SectionReceives, SectionAttributes, SectionRaises:
		return true
	}
	return false
}

// AllSectionKinds lists every kind in declaration order.
func AllSectionKinds() []SectionKind {
	return []SectionKind{
		SectionSummary, SectionDescription, SectionArgs, SectionKeywordArgs,
		SectionReceives, SectionReturns, SectionYields, SectionRaises, SectionExample, SectionNote,
		SectionWarning, SectionDeprecated, SectionSince, SectionTodo,
		SectionSeeAlso, SectionAttributes, SectionUnknown,
	}
}
