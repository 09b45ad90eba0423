package docstring

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/maypok86/otter"
	"golang.org/x/sync/errgroup"
)

// Node is one entry of the annotation tree, mirroring the symbol tree 1:1.
type Node struct {
	Symbol     *Symbol
	Path       string // dotted path from the root
	Annotation Annotation
	Children   []*Node
}

// Walk visits the tree in pre-order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given dotted path, or nil.
func (n *Node) Find(path string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if node.Path == path {
			found = node
			return false
		}
		return true
	})
	return found
}

// TodoEntry is a todo item tagged with its owning symbol.
type TodoEntry struct {
	Path string
	Text string
}

// DeprecationEntry is a deprecation notice tagged with its owning symbol.
type DeprecationEntry struct {
	Path   string
	Reason string
}

// AggregateIndex collects project-wide todos and deprecations in traversal
// order.
type AggregateIndex struct {
	Todos      []TodoEntry
	Deprecated []DeprecationEntry
}

func (ix *AggregateIndex) collect(n *Node) {
	for _, todo := range n.Annotation.Todos {
		ix.Todos = append(ix.Todos, TodoEntry{Path: n.Path, Text: todo})
	}
	for _, sec := range n.Annotation.Sections {
		if sec.Kind == SectionDeprecated {
			ix.Deprecated = append(ix.Deprecated, DeprecationEntry{Path: n.Path, Reason: deprecationReason(sec)})
		}
	}
}

func (ix *AggregateIndex) merge(other *AggregateIndex) {
	ix.Todos = append(ix.Todos, other.Todos...)
	ix.Deprecated = append(ix.Deprecated, other.Deprecated...)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWorkers sets how many of the root's child subtrees are processed
// concurrently. Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		e.workers = n
	}
}

// WithCacheSize enables memoization of up to n distinct raw texts. Zero
// disables the cache; negative sizes are rejected by NewExtractor.
func WithCacheSize(n int) Option {
	return func(e *Extractor) {
		e.cacheSize = n
	}
}

// Extractor builds annotation trees. It is safe for concurrent use; the memo
// cache is shared between calls.
type Extractor struct {
	workers   int
	cacheSize int
	cache     *otter.Cache[string, Annotation]
}

// NewExtractor creates an extractor. Call Close to release the cache.
func NewExtractor(opts ...Option) (*Extractor, error) {
	e := &Extractor{workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize == 0 {
		return e, nil
	}

	builder, err := otter.NewBuilder[string, Annotation](e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to configure docstring cache: %w", err)
	}
	cache, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create docstring cache: %w", err)
	}
	e.cache = &cache
	return e, nil
}

// Close releases the memo cache.
func (e *Extractor) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Extract annotates every symbol of the tree rooted at root. The result is
// deterministic regardless of worker count. It fails only with a
// *StructureError when root is not a proper tree.
func (e *Extractor) Extract(root *Symbol) (*Node, *AggregateIndex, error) {
	if err := ValidateTree(root); err != nil {
		return nil, nil, err
	}

	index := &AggregateIndex{}
	if e.workers <= 1 || len(root.Children) < 2 {
		return e.walk(root, "", index), index, nil
	}

	node := e.visit(root, "")
	index.collect(node)

	children := make([]*Node, len(root.Children))
	locals := make([]*AggregateIndex, len(root.Children))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, child := range root.Children {
		g.Go(func() error {
			local := &AggregateIndex{}
			children[i] = e.walk(child, node.Path, local)
			locals[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to annotate subtrees: %w", err)
	}

	node.Children = children
	for _, local := range locals {
		index.merge(local)
	}
	return node, index, nil
}

// walk annotates sym and its descendants in pre-order.
func (e *Extractor) walk(sym *Symbol, parentPath string, index *AggregateIndex) *Node {
	node := e.visit(sym, parentPath)
	index.collect(node)
	if len(sym.Children) > 0 {
		node.Children = make([]*Node, len(sym.Children))
		for i, child := range sym.Children {
			node.Children[i] = e.walk(child, node.Path, index)
		}
	}
	return node
}

func (e *Extractor) visit(sym *Symbol, parentPath string) *Node {
	return &Node{
		Symbol:     sym,
		Path:       joinPath(parentPath, sym.Name),
		Annotation: e.annotate(sym),
	}
}

func (e *Extractor) annotate(sym *Symbol) Annotation {
	if sym.RawDoc == nil {
		return Annotation{}
	}
	raw := *sym.RawDoc
	if e.cache == nil {
		return Annotate(raw)
	}
	if ann, ok := e.cache.Get(raw); ok {
		return ann.clone()
	}
	ann := Annotate(raw)
	e.cache.Set(raw, ann)
	return ann.clone()
}

// Extract annotates a symbol tree sequentially without caching.
func Extract(root *Symbol) (*Node, *AggregateIndex, error) {
	e, err := NewExtractor()
	if err != nil {
		return nil, nil, err
	}
	defer e.Close()
	return e.Extract(root)
}

// ValidateTree checks that root spans a proper tree: no nil symbols, no
// cycles and no symbol with two parents. Each symbol is visited once, so
// malformed input cannot loop.
func ValidateTree(root *Symbol) error {
	if root == nil {
		return &StructureError{Err: ErrNilSymbol}
	}

	g := graph.New(func(s *Symbol) *Symbol { return s }, graph.Directed())
	if err := g.AddVertex(root); err != nil {
		return fmt.Errorf("failed to add root symbol: %w", err)
	}

	type frame struct {
		sym  *Symbol
		path string
	}
	stack := []frame{{sym: root, path: joinPath("", root.Name)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range f.sym.Children {
			if child == nil {
				return &StructureError{Path: f.path, Err: ErrNilSymbol}
			}
			childPath := joinPath(f.path, child.Name)

			if err := g.AddVertex(child); err != nil {
				if !errors.Is(err, graph.ErrVertexAlreadyExists) {
					return fmt.Errorf("failed to add symbol %s: %w", childPath, err)
				}
				cyclic, cerr := graph.CreatesCycle(g, f.sym, child)
				if cerr != nil {
					return fmt.Errorf("failed to check symbol %s: %w", childPath, cerr)
				}
				if cyclic {
					return &StructureError{Path: childPath, Err: ErrCyclicTree}
				}
				return &StructureError{Path: childPath, Err: ErrSharedSymbol}
			}
			if err := g.AddEdge(f.sym, child); err != nil {
				return fmt.Errorf("failed to link symbol %s: %w", childPath, err)
			}
			stack = append(stack, frame{sym: child, path: childPath})
		}
	}
	return nil
}
