package docstring

import (
	"regexp"
	"strings"
	"unicode"
)

// fieldName matches parameter, attribute and exception identifiers, including
// star-prefixed variadics and dotted exception paths.
var fieldName = regexp.MustCompile(`^\*{0,2}[A-Za-z_][A-Za-z0-9_.]*$`)

// FieldEntry is one item of a parameter, attribute or raised-error list.
type FieldEntry struct {
	Name        string
	TypeHint    *string
	Description string

	// Unnamed marks a line that did not match the field syntax. Its full text
	// is kept in Description.
	Unnamed bool
}

// ReturnDoc documents a return (or yield) value.
type ReturnDoc struct {
	TypeHint    *string
	Description string
}

// ParseFields parses the body of an Args, KeywordArgs, Attributes or Raises
// section. A line at the section's base indentation starts a field; deeper
// lines continue the previous field's description.
func ParseFields(sec Section) []FieldEntry {
	var fields []FieldEntry
	for _, line := range sec.Body {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if indentOf(line) > sec.Indent && len(fields) > 0 {
			appendDescription(&fields[len(fields)-1].Description, text)
			continue
		}
		fields = append(fields, parseFieldLine(text, sec.Underlined))
	}
	return fields
}

// parseFieldLine parses `name (type): desc`, `name: type: desc` or
// `name: desc`. In underlined sections `name : type` and a bare name are
// accepted as well.
func parseFieldLine(text string, underlined bool) FieldEntry {
	unnamed := FieldEntry{Description: text, Unnamed: true}

	colon := topLevelIndex(text, ':')
	if colon < 0 {
		if underlined && fieldName.MatchString(text) {
			return FieldEntry{Name: text}
		}
		return unnamed
	}

	head := text[:colon]
	rest := strings.TrimSpace(text[colon+1:])
	name, typeHint, ok := splitNameType(head)
	if !ok {
		return unnamed
	}

	if typeHint == nil {
		if underlined && strings.HasSuffix(head, " ") {
			if rest != "" {
				typeHint = StringPtr(rest)
			}
			return FieldEntry{Name: name, TypeHint: typeHint}
		}
		if t, desc, found := leadingType(rest); found && !proseWord(t) {
			typeHint = StringPtr(t)
			rest = desc
		}
	}

	return FieldEntry{Name: name, TypeHint: typeHint, Description: rest}
}

// proseWord reports a bare capitalized word such as `Either` or `Important`.
// In `name: Word: text` such a word usually opens the description, so only
// lower-case names (`str`, `int`) and qualified or subscripted expressions
// are read as inline types.
func proseWord(s string) bool {
	r := []rune(s)
	if !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

// splitNameType splits `name (type)` or `name` into its parts.
func splitNameType(head string) (string, *string, bool) {
	head = strings.TrimSpace(head)
	if strings.HasSuffix(head, ")") {
		if open := matchingOpen(head, len(head)-1); open > 0 {
			name := strings.TrimSpace(head[:open])
			typ := strings.TrimSpace(head[open+1 : len(head)-1])
			if fieldName.MatchString(name) && typ != "" {
				return name, StringPtr(typ), true
			}
			return "", nil, false
		}
	}
	if fieldName.MatchString(head) {
		return head, nil, true
	}
	return "", nil, false
}

// ParseReturns parses a Returns or Yields body: an optional leading
// `Type: description` on the first line, with the remaining lines joined into
// the description.
func ParseReturns(sec Section) ReturnDoc {
	var lines []string
	var indents []int
	for _, line := range sec.Body {
		if text := strings.TrimSpace(line); text != "" {
			lines = append(lines, text)
			indents = append(indents, indentOf(line))
		}
	}
	if len(lines) == 0 {
		return ReturnDoc{}
	}

	var doc ReturnDoc
	first, rest := lines[0], lines[1:]

	switch {
	case sec.Underlined && numpyTyped(first):
		colon := topLevelIndex(first, ':')
		doc.TypeHint = StringPtr(strings.TrimSpace(first[colon+1:]))
	case sec.Underlined && topLevelIndex(first, ':') < 0 && isTypeExpr(first) &&
		len(rest) > 0 && indents[1] > indents[0]:
		doc.TypeHint = StringPtr(first)
	default:
		if t, desc, found := leadingType(first); found {
			doc.TypeHint = StringPtr(t)
			doc.Description = desc
		} else {
			doc.Description = first
		}
	}

	for _, l := range rest {
		appendDescription(&doc.Description, l)
	}
	return doc
}

// numpyTyped matches the NumPy `name : type` form.
func numpyTyped(text string) bool {
	colon := topLevelIndex(text, ':')
	if colon <= 0 || !strings.HasSuffix(text[:colon], " ") {
		return false
	}
	return fieldName.MatchString(strings.TrimSpace(text[:colon])) && strings.TrimSpace(text[colon+1:]) != ""
}

// leadingType splits `Type: rest` when the text before the first top-level
// colon is a type expression and the colon ends a token.
func leadingType(text string) (typ, rest string, ok bool) {
	colon := topLevelIndex(text, ':')
	if colon <= 0 {
		return "", text, false
	}
	if colon+1 < len(text) && text[colon+1] != ' ' {
		return "", text, false
	}
	candidate := strings.TrimSpace(text[:colon])
	if !isTypeExpr(candidate) {
		return "", text, false
	}
	return candidate, strings.TrimSpace(text[colon+1:]), true
}

// isTypeExpr accepts annotation-like text such as `int`, `Optional[User]`,
// `dict[str, int]` or `int | None`: no whitespace outside brackets except
// around union bars.
func isTypeExpr(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	first := []rune(s)[0]
	if !unicode.IsLetter(first) && first != '_' && first != '\'' && first != '"' {
		return false
	}
	s = strings.ReplaceAll(s, " | ", "|")

	depth := 0
	for _, r := range s {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth < 0 {
				return false
			}
		default:
			if unicode.IsSpace(r) && depth == 0 {
				return false
			}
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) &&
				!strings.ContainsRune("_.,|'\"-*", r) {
				return false
			}
		}
	}
	return depth == 0
}

// topLevelIndex returns the index of the first sep outside brackets, or -1.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchingOpen returns the index of the bracket opening the one at close.
func matchingOpen(s string, close int) int {
	depth := 0
	for i := close; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func appendDescription(desc *string, text string) {
	if *desc == "" {
		*desc = text
		return
	}
	*desc += " " + text
}
