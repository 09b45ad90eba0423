package docstring

import "strings"

// UnknownSection keeps a section whose header is not in the synonym table.
type UnknownSection struct {
	Header string
	Body   string
}

// Annotation is the structured form of one symbol's documentation. Optional
// values are nil when the corresponding section is absent, so an empty but
// present section stays distinguishable from a missing one.
type Annotation struct {
	Summary     *string
	Description *string

	Params      []FieldEntry
	KeywordArgs []FieldEntry
	Receives    []FieldEntry
	Attributes  []FieldEntry
	Returns     *ReturnDoc
	Yields      *ReturnDoc
	Raises      []FieldEntry

	Deprecated *string
	Since      *string

	Todos    []string
	SeeAlso  []string
	Notes    []string
	Warnings []string
	Examples []string

	UnknownSections []UnknownSection

	// Sections is the full ordered scan result, duplicates included.
	Sections []Section
}

// IsEmpty reports whether no section was found.
func (a *Annotation) IsEmpty() bool {
	return len(a.Sections) == 0
}

// Annotate scans, classifies and parses raw documentation text. Singular
// values (returns, yields, deprecated, since) keep the first occurrence;
// every occurrence stays visible in Sections. Description paragraphs split
// by Sphinx fields are joined.
func Annotate(raw string) Annotation {
	sections := Scan(raw)
	if len(sections) == 0 {
		return Annotation{}
	}

	ann := Annotation{Sections: sections}
	var types []Section
	for _, sec := range sections {
		if sec.Tag != "" {
			if isTypeTag(sec.Tag) {
				types = append(types, sec)
				continue
			}
			if ann.addTagged(sec) {
				continue
			}
		}

		switch sec.Kind {
		case SectionSummary:
			if ann.Summary == nil {
				ann.Summary = StringPtr(strings.Join(trimmedLines(sec.Body), " "))
			}
		case SectionDescription:
			text := flowText(sec.Body)
			if ann.Description == nil {
				ann.Description = StringPtr(text)
			} else {
				*ann.Description += "\n\n" + text
			}
		case SectionArgs:
			ann.Params = append(ann.Params, ParseFields(sec)...)
		case SectionKeywordArgs:
			ann.KeywordArgs = append(ann.KeywordArgs, ParseFields(sec)...)
		case SectionReceives:
			ann.Receives = append(ann.Receives, ParseFields(sec)...)
		case SectionAttributes:
			ann.Attributes = append(ann.Attributes, ParseFields(sec)...)
		case SectionRaises:
			ann.Raises = append(ann.Raises, ParseFields(sec)...)
		case SectionReturns:
			if ann.Returns == nil {
				doc := ParseReturns(sec)
				ann.Returns = &doc
			}
		case SectionYields:
			if ann.Yields == nil {
				doc := ParseReturns(sec)
				ann.Yields = &doc
			}
		case SectionDeprecated:
			if ann.Deprecated == nil {
				ann.Deprecated = StringPtr(deprecationReason(sec))
			}
		case SectionSince:
			if ann.Since == nil {
				text := flowText(sec.Body)
				if text == "" {
					text = sec.Arg
				}
				ann.Since = StringPtr(text)
			}
		case SectionTodo:
			ann.Todos = append(ann.Todos, listItems(sec)...)
		case SectionSeeAlso:
			ann.SeeAlso = append(ann.SeeAlso, listItems(sec)...)
		case SectionNote:
			ann.Notes = append(ann.Notes, flowText(sec.Body))
		case SectionWarning:
			ann.Warnings = append(ann.Warnings, flowText(sec.Body))
		case SectionExample:
			ann.Examples = append(ann.Examples, blockText(sec))
		default:
			ann.UnknownSections = append(ann.UnknownSections, UnknownSection{
				Header: sec.Header,
				Body:   blockText(sec),
			})
		}
	}

	for _, sec := range types {
		ann.applyType(sec)
	}
	return ann
}

// addTagged records a Sphinx field that documents a named entry or a return
// value. It reports false for tags handled like their header equivalents.
func (a *Annotation) addTagged(sec Section) bool {
	switch sec.Kind {
	case SectionArgs:
		a.Params = append(a.Params, taggedField(sec))
	case SectionKeywordArgs:
		a.KeywordArgs = append(a.KeywordArgs, taggedField(sec))
	case SectionAttributes:
		a.Attributes = append(a.Attributes, taggedField(sec))
	case SectionRaises:
		a.Raises = append(a.Raises, taggedField(sec))
	case SectionReturns:
		if a.Returns == nil {
			a.Returns = &ReturnDoc{}
		}
		if a.Returns.Description == "" {
			a.Returns.Description = flowText(sec.Body)
		}
	case SectionYields:
		if a.Yields == nil {
			a.Yields = &ReturnDoc{}
		}
		if a.Yields.Description == "" {
			a.Yields.Description = flowText(sec.Body)
		}
	default:
		return false
	}
	return true
}

// applyType attaches the type of a `:type x:`, `:vartype x:`, `:rtype:` or
// `:ytype:` field to what its sibling tag documented. Types given in the
// entry itself win.
func (a *Annotation) applyType(sec Section) {
	typ := flowText(sec.Body)
	if typ == "" {
		return
	}

	setHint := func(fields []FieldEntry) bool {
		for i := range fields {
			if fields[i].Name == sec.Arg {
				if fields[i].TypeHint == nil {
					fields[i].TypeHint = StringPtr(typ)
				}
				return true
			}
		}
		return false
	}

	switch sec.Tag {
	case "type":
		if !setHint(a.Params) {
			setHint(a.KeywordArgs)
		}
	case "vartype":
		setHint(a.Attributes)
	case "rtype":
		if a.Returns == nil {
			a.Returns = &ReturnDoc{}
		}
		if a.Returns.TypeHint == nil {
			a.Returns.TypeHint = StringPtr(typ)
		}
	case "ytype":
		if a.Yields == nil {
			a.Yields = &ReturnDoc{}
		}
		if a.Yields.TypeHint == nil {
			a.Yields.TypeHint = StringPtr(typ)
		}
	}
}

func isTypeTag(tag string) bool {
	switch tag {
	case "type", "vartype", "rtype", "ytype":
		return true
	}
	return false
}

// taggedField builds an entry from `:param [type] name: description`. A tag
// without a name degrades to an Unnamed entry.
func taggedField(sec Section) FieldEntry {
	desc := flowText(sec.Body)
	words := strings.Fields(sec.Arg)
	if len(words) == 0 {
		return FieldEntry{Description: desc, Unnamed: true}
	}
	entry := FieldEntry{Name: words[len(words)-1], Description: desc}
	if len(words) > 1 {
		entry.TypeHint = StringPtr(strings.Join(words[:len(words)-1], " "))
	}
	return entry
}

// deprecationReason is the flowed body of a Deprecated section.
func deprecationReason(sec Section) string {
	return flowText(sec.Body)
}

// flowText joins the lines of each paragraph with single spaces and separates
// paragraphs with a blank line.
func flowText(body []string) string {
	var paragraphs []string
	var current []string
	for _, line := range body {
		text := strings.TrimSpace(line)
		if text == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, strings.Join(current, " "))
				current = nil
			}
			continue
		}
		current = append(current, text)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}

// blockText keeps line structure, removing the section's base indentation.
func blockText(sec Section) string {
	out := make([]string, len(sec.Body))
	for i, line := range sec.Body {
		cut := sec.Indent
		if n := indentOf(line); n < cut {
			cut = n
		}
		out[i] = line[cut:]
	}
	return strings.Join(out, "\n")
}

// listItems splits a body into items: each base-indent line starts one
// (leading "-" or "*" bullets removed), deeper lines continue it.
func listItems(sec Section) []string {
	var items []string
	for _, line := range sec.Body {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if indentOf(line) > sec.Indent && len(items) > 0 {
			appendDescription(&items[len(items)-1], text)
			continue
		}
		items = append(items, stripBullet(text))
	}
	return items
}

func stripBullet(text string) string {
	for _, bullet := range []string{"- ", "* "} {
		if strings.HasPrefix(text, bullet) {
			return strings.TrimSpace(text[len(bullet):])
		}
	}
	return text
}

func trimmedLines(body []string) []string {
	out := make([]string, 0, len(body))
	for _, line := range body {
		if text := strings.TrimSpace(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// clone returns a deep copy so cached annotations are never shared.
func (a Annotation) clone() Annotation {
	out := a
	out.Summary = cloneString(a.Summary)
	out.Description = cloneString(a.Description)
	out.Params = cloneFields(a.Params)
	out.KeywordArgs = cloneFields(a.KeywordArgs)
	out.Receives = cloneFields(a.Receives)
	out.Attributes = cloneFields(a.Attributes)
	out.Returns = cloneReturn(a.Returns)
	out.Yields = cloneReturn(a.Yields)
	out.Raises = cloneFields(a.Raises)
	out.Deprecated = cloneString(a.Deprecated)
	out.Since = cloneString(a.Since)
	out.Todos = cloneStrings(a.Todos)
	out.SeeAlso = cloneStrings(a.SeeAlso)
	out.Notes = cloneStrings(a.Notes)
	out.Warnings = cloneStrings(a.Warnings)
	out.Examples = cloneStrings(a.Examples)
	if a.UnknownSections != nil {
		out.UnknownSections = append([]UnknownSection(nil), a.UnknownSections...)
	}
	if a.Sections != nil {
		out.Sections = make([]Section, len(a.Sections))
		for i, s := range a.Sections {
			s.Body = cloneStrings(s.Body)
			out.Sections[i] = s
		}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return StringPtr(*s)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneFields(fields []FieldEntry) []FieldEntry {
	if fields == nil {
		return nil
	}
	out := make([]FieldEntry, len(fields))
	for i, f := range fields {
		f.TypeHint = cloneString(f.TypeHint)
		out[i] = f
	}
	return out
}

func cloneReturn(r *ReturnDoc) *ReturnDoc {
	if r == nil {
		return nil
	}
	return &ReturnDoc{TypeHint: cloneString(r.TypeHint), Description: r.Description}
}
