package docstring

import (
	"regexp"
	"strings"
	"unicode"
)

const tabWidth = 4

// Section is a contiguous, header-delimited span of documentation text.
type Section struct {
	Kind SectionKind

	// Header is the header label as written, without the trailing colon.
	// Field tags and directives keep their markup (`:param x:`,
	// `.. deprecated::`). Summary and Description sections have no header.
	Header string

	// Body holds the section lines after margin normalization, with leading and
	// trailing blank lines removed. Indentation is kept.
	Body []string

	// Indent is the indentation of the first non-blank body line.
	Indent int

	// StartLine and EndLine are 1-based line numbers in the raw text.
	StartLine int
	EndLine   int

	// Underlined marks a NumPy-style header followed by a dashed rule.
	Underlined bool

	// Tag is the lower-cased Sphinx field tag (`param`, `rtype`, ...) or reST
	// directive (`deprecated`, `versionadded`) that opened the section. Empty
	// for header sections.
	Tag string

	// Arg is the tag argument: `str user_id` for `:param str user_id:`, the
	// version for `.. deprecated:: 2.0`.
	Arg string
}

var (
	// fieldTagLine matches a Sphinx field such as `:param user_id: text`.
	fieldTagLine = regexp.MustCompile(`^:([A-Za-z]+)((?:\s+[^\s:]+)*)\s*:(?:\s+(.*))?$`)

	// directiveLine matches a reST directive such as `.. deprecated:: 2.0`.
	directiveLine = regexp.MustCompile(`^\.\.\s+([A-Za-z]+)::(?:\s+(.*))?$`)
)

// opener describes a line that starts a section.
type opener struct {
	label      string // as written, without a trailing colon
	kind       SectionKind
	underlined bool
	tag        string
	arg        string
	content    string // text after a field tag on the same line
}

type docLine struct {
	text   string // tabs expanded, right-trimmed
	indent int
	blank  bool
	num    int // 1-based line number in the raw text
}

// Scan splits raw documentation text into its ordered sections. The text
// before the first header becomes a Summary (its first paragraph) and an
// optional Description (everything after). Google and NumPy headers, Sphinx
// field tags and reST directives open sections. Empty text yields no sections.
func Scan(raw string) []Section {
	lines := normalizeLines(raw)
	if len(lines) == 0 {
		return nil
	}

	var sections []Section

	// Leading region up to the first header.
	i := 0
	for i < len(lines) {
		if _, ok := openerAt(lines, i); ok {
			break
		}
		i++
	}
	sections = append(sections, leadingSections(lines[:i])...)

	for i < len(lines) {
		op, ok := openerAt(lines, i)
		if !ok {
			// Margin prose after a field tag.
			start := i
			for i < len(lines) {
				if _, ok := openerAt(lines, i); ok {
					break
				}
				i++
			}
			if body := trimBlank(lines[start:i]); len(body) > 0 {
				sections = append(sections, Section{
					Kind:      SectionDescription,
					Body:      texts(body),
					Indent:    body[0].indent,
					StartLine: body[0].num,
					EndLine:   body[len(body)-1].num,
				})
			}
			continue
		}

		headerLine := lines[i]
		i++
		if op.underlined {
			i++
		}

		start := i
		for i < len(lines) {
			if _, ok := openerAt(lines, i); ok {
				break
			}
			// Tagged sections only continue on indented lines.
			if op.tag != "" && !lines[i].blank && lines[i].indent == 0 {
				break
			}
			i++
		}

		sec := Section{
			Kind:       op.kind,
			Header:     op.label,
			StartLine:  headerLine.num,
			EndLine:    headerLine.num,
			Underlined: op.underlined,
			Tag:        op.tag,
			Arg:        op.arg,
		}
		body := trimBlank(lines[start:i])
		if len(body) > 0 {
			sec.Indent = body[0].indent
			sec.EndLine = body[len(body)-1].num
			sec.Body = texts(body)
		}
		if op.content != "" {
			sec.Body = append([]string{op.content}, sec.Body...)
			sec.Indent = 0
		}
		sections = append(sections, sec)
	}

	return sections
}

// leadingSections turns the text before the first header into a Summary and
// an optional Description.
func leadingSections(lines []docLine) []Section {
	lines = trimBlank(lines)
	if len(lines) == 0 {
		return nil
	}

	end := 0
	for end < len(lines) && !lines[end].blank {
		end++
	}

	summary := lines[:end]
	out := []Section{{
		Kind:      SectionSummary,
		Body:      texts(summary),
		Indent:    summary[0].indent,
		StartLine: summary[0].num,
		EndLine:   summary[len(summary)-1].num,
	}}

	rest := trimBlank(lines[end:])
	if len(rest) > 0 {
		out = append(out, Section{
			Kind:      SectionDescription,
			Body:      texts(rest),
			Indent:    rest[0].indent,
			StartLine: rest[0].num,
			EndLine:   rest[len(rest)-1].num,
		})
	}
	return out
}

// openerAt reports whether lines[i] starts a section of any syntax.
func openerAt(lines []docLine, i int) (opener, bool) {
	l := lines[i]
	if l.blank || l.indent != 0 {
		return opener{}, false
	}
	if op, ok := taggedOpener(l.text); ok {
		return op, true
	}
	label, underlined, ok := headerAt(lines, i)
	if !ok {
		return opener{}, false
	}
	return opener{label: label, kind: Classify(label), underlined: underlined}, true
}

// taggedOpener recognizes `:tag arg: content` fields and `.. name:: arg`
// directives with a known tag.
func taggedOpener(text string) (opener, bool) {
	text = strings.TrimSpace(text)
	if m := fieldTagLine.FindStringSubmatch(text); m != nil {
		tag := strings.ToLower(m[1])
		kind, ok := fieldTagKind(tag)
		if !ok {
			return opener{}, false
		}
		return opener{
			label:   strings.TrimSpace(text[:len(text)-len(m[3])]),
			kind:    kind,
			tag:     tag,
			arg:     strings.Join(strings.Fields(m[2]), " "),
			content: strings.TrimSpace(m[3]),
		}, true
	}
	if m := directiveLine.FindStringSubmatch(text); m != nil {
		tag := strings.ToLower(m[1])
		kind, ok := directiveKind(tag)
		if !ok {
			return opener{}, false
		}
		op := opener{label: strings.TrimSpace(text[:len(text)-len(m[2])]), kind: kind, tag: tag}
		arg := strings.TrimSpace(m[2])
		if kind == SectionDeprecated || kind == SectionSince || kind == SectionUnknown {
			op.arg = arg
		} else {
			op.content = arg
		}
		return op, true
	}
	return opener{}, false
}

// headerAt reports whether lines[i] starts a section. Headers sit at the
// docstring margin. A known spelling must be followed by a blank line, a
// deeper-indented line, or a dashed underline; an unknown label needs a
// trailing colon and a deeper-indented next line.
func headerAt(lines []docLine, i int) (label string, underlined bool, ok bool) {
	l := lines[i]
	if l.blank || l.indent != 0 {
		return "", false, false
	}

	text := strings.TrimSpace(l.text)
	hasColon := strings.HasSuffix(text, ":")
	label = strings.TrimSpace(strings.TrimSuffix(text, ":"))
	if label == "" {
		return "", false, false
	}

	var next *docLine
	if i+1 < len(lines) {
		next = &lines[i+1]
	}

	if next != nil && !hasColon && isUnderline(next.text) && isLabel(label) {
		return label, true, true
	}

	if _, known := lookupHeader(label); known {
		switch {
		case next == nil:
			return label, false, hasColon
		case next.blank || next.indent > l.indent:
			return label, false, true
		}
		return "", false, false
	}

	if hasColon && isLabel(label) && next != nil && !next.blank && next.indent > l.indent {
		return label, false, true
	}
	return "", false, false
}

func isUnderline(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 3 && strings.Trim(s, "-") == ""
}

// isLabel accepts short title-like phrases: 1 to 4 words starting with a
// letter, made of letters, digits, '-' and '_'.
func isLabel(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	if !unicode.IsLetter([]rune(words[0])[0]) {
		return false
	}
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
				return false
			}
		}
	}
	return true
}

// normalizeLines normalizes line endings, expands leading tabs and removes the
// common indentation of every line after the first. When the first line opens
// a section and nothing sits at the margin but its body, the body keeps its
// indentation. Leading and trailing blank lines are dropped.
func normalizeLines(raw string) []docLine {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, "\n")
	lines := make([]docLine, len(parts))
	margin := -1
	for n, p := range parts {
		text := strings.TrimRightFunc(expandTabs(p), unicode.IsSpace)
		l := docLine{text: text, num: n + 1, blank: text == ""}
		if !l.blank {
			l.indent = len(text) - len(strings.TrimLeft(text, " "))
			if n > 0 && (margin < 0 || l.indent < margin) {
				margin = l.indent
			}
		}
		lines[n] = l
	}

	if margin > 0 && !lines[0].blank && opensSection(lines[0].text) {
		for _, l := range lines[1:] {
			if !l.blank {
				if l.indent == margin {
					margin = 0
				}
				break
			}
		}
	}

	for n := range lines {
		l := &lines[n]
		if l.blank {
			continue
		}
		cut := margin
		if n == 0 || cut < 0 {
			cut = l.indent
		}
		if cut > l.indent {
			cut = l.indent
		}
		l.text = l.text[cut:]
		l.indent -= cut
	}

	return trimBlank(lines)
}

// opensSection reports whether a single line looks like a header, field tag
// or directive, ignoring what follows it.
func opensSection(text string) bool {
	text = strings.TrimSpace(text)
	if _, ok := taggedOpener(text); ok {
		return true
	}
	label := strings.TrimSpace(strings.TrimSuffix(text, ":"))
	if label == "" {
		return false
	}
	if _, known := lookupHeader(label); known {
		return true
	}
	return strings.HasSuffix(text, ":") && isLabel(label)
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func trimBlank(lines []docLine) []docLine {
	for len(lines) > 0 && lines[0].blank {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1].blank {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func texts(lines []docLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return out
}

// indentOf returns the number of leading spaces of an already normalized line.
func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}
