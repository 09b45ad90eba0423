package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/docsift/internal/docstring"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonParser discovers documentable symbols in Python source.
type PythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *PythonParser {
	lang := sitter.NewLanguage(python.Language())
	return &PythonParser{
		treeSitterParser: newTreeSitterParser(lang, "python"),
	}
}

// ParseFile parses a Python file into a Module symbol named after the file.
func (p *PythonParser) ParseFile(ctx context.Context, filePath string) (*docstring.Symbol, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), ".py")
	return p.ParseSource(ctx, name, source)
}

// ParseSource parses Python source into a Module symbol called moduleName.
func (p *PythonParser) ParseSource(ctx context.Context, moduleName string, source []byte) (*docstring.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := p.parse(moduleName, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	return &docstring.Symbol{
		Kind:     docstring.KindModule,
		Name:     moduleName,
		RawDoc:   blockDocstring(root, source),
		Children: p.collectBody(root, source, false),
	}, nil
}

// ModuleName converts a file path relative to root into a dotted module name.
// Package initializers take the name of their directory. Files outside root
// are named after their base name.
func ModuleName(root, filePath string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(filePath)
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".py")
	rel = strings.TrimPrefix(rel, "./")
	if rel != "__init__" {
		rel = strings.TrimSuffix(rel, "/__init__")
	}
	return strings.ReplaceAll(rel, "/", ".")
}

// collectBody walks the statements of a module or class body in source order.
func (p *PythonParser) collectBody(block *sitter.Node, source []byte, inClass bool) []*docstring.Symbol {
	children := []*docstring.Symbol{}
	if block == nil {
		return children
	}

	count := block.NamedChildCount()
	for i := uint(0); i < count; i++ {
		stmt := block.NamedChild(i)
		def := stmt
		if stmt.Kind() == "decorated_definition" {
			def = stmt.ChildByFieldName("definition")
			if def == nil {
				continue
			}
		}

		switch def.Kind() {
		case "class_definition":
			children = append(children, p.classSymbol(def, source))
		case "function_definition":
			children = append(children, p.functionSymbol(def, source, inClass, hasDecorator(stmt, source, "staticmethod")))
		case "expression_statement":
			if !inClass {
				continue
			}
			var next *sitter.Node
			if i+1 < count {
				next = block.NamedChild(i + 1)
			}
			if field := fieldSymbol(stmt, next, source); field != nil {
				children = append(children, field)
			}
		}
	}
	return children
}

func (p *PythonParser) classSymbol(node *sitter.Node, source []byte) *docstring.Symbol {
	body := node.ChildByFieldName("body")
	return &docstring.Symbol{
		Kind:     docstring.KindClass,
		Name:     extractNodeText(node.ChildByFieldName("name"), source),
		RawDoc:   blockDocstring(body, source),
		Children: p.collectBody(body, source, true),
	}
}

func (p *PythonParser) functionSymbol(node *sitter.Node, source []byte, method, static bool) *docstring.Symbol {
	kind := docstring.KindFunction
	if method {
		kind = docstring.KindMethod
	}

	sym := &docstring.Symbol{
		Kind:      kind,
		Name:      extractNodeText(node.ChildByFieldName("name"), source),
		RawDoc:    blockDocstring(node.ChildByFieldName("body"), source),
		Signature: signature(node.ChildByFieldName("parameters"), source, method && !static),
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sym.ReturnDeclared = docstring.BoolPtr(strings.TrimSpace(extractNodeText(ret, source)) != "None")
	}
	return sym
}

// fieldSymbol turns a class-level `name = value` or `name: type` statement into
// a Field. A string statement directly after it is the field's docstring.
func fieldSymbol(stmt, next *sitter.Node, source []byte) *docstring.Symbol {
	assign := stmt.NamedChild(0)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}

	field := &docstring.Symbol{
		Kind: docstring.KindField,
		Name: extractNodeText(left, source),
	}
	if next != nil {
		field.RawDoc = stringStatement(next, source)
	}
	return field
}

// signature lists declared parameters. Leading self or cls is dropped for
// bound methods.
func signature(params *sitter.Node, source []byte, bound bool) []docstring.Param {
	out := []docstring.Param{}
	if params == nil {
		return out
	}

	for i := uint(0); i < params.NamedChildCount(); i++ {
		if param, ok := parameter(params.NamedChild(i), source); ok {
			out = append(out, param)
		}
	}

	if bound && len(out) > 0 && (out[0].Name == "self" || out[0].Name == "cls") {
		out = out[1:]
	}
	return out
}

func parameter(node *sitter.Node, source []byte) (docstring.Param, bool) {
	switch node.Kind() {
	case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
		return docstring.Param{Name: extractNodeText(node, source)}, true
	case "typed_parameter":
		return docstring.Param{
			Name:         extractNodeText(node.NamedChild(0), source),
			DeclaredType: extractNodeText(node.ChildByFieldName("type"), source),
		}, true
	case "default_parameter":
		return docstring.Param{
			Name:       extractNodeText(node.ChildByFieldName("name"), source),
			HasDefault: true,
		}, true
	case "typed_default_parameter":
		return docstring.Param{
			Name:         extractNodeText(node.ChildByFieldName("name"), source),
			DeclaredType: extractNodeText(node.ChildByFieldName("type"), source),
			HasDefault:   true,
		}, true
	default:
		// separators (`*`, `/`) and comments
		return docstring.Param{}, false
	}
}

func hasDecorator(stmt *sitter.Node, source []byte, name string) bool {
	for _, dec := range findChildrenByType(stmt, "decorator") {
		text := strings.TrimPrefix(strings.TrimSpace(extractNodeText(dec, source)), "@")
		if text == name {
			return true
		}
	}
	return false
}

// blockDocstring returns the docstring of a module, class or function body.
func blockDocstring(block *sitter.Node, source []byte) *string {
	stmt := firstStatement(block)
	if stmt == nil {
		return nil
	}
	return stringStatement(stmt, source)
}

// stringStatement returns the literal value when stmt is a bare string.
func stringStatement(stmt *sitter.Node, source []byte) *string {
	if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	lit := stmt.NamedChild(0)
	if lit.Kind() != "string" {
		return nil
	}
	return docstring.StringPtr(unquote(extractNodeText(lit, source)))
}

// unquote strips the prefix and quotes from a string literal. Escapes are left
// as written.
func unquote(lit string) string {
	lit = strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) && strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}
