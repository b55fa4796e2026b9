package frontend

import (
	"context"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// Options are the parse options forwarded to the front-end. Tree-sitter
// parses the raw text without preprocessing, so the standard and include
// roots are recorded but not interpreted; the system-path classifier
// uses its own fixed list of roots.
type Options struct {
	// Standard is the C language standard, e.g. "c11".
	Standard string
	// IncludeRoots are the include directories searched by the build.
	IncludeRoots []string
	// WarnAll requests all front-end diagnostics.
	WarnAll bool
	// DetailedPreprocessing requests a detailed preprocessing record.
	DetailedPreprocessing bool
	// KeepBodies retains function bodies in the tree.
	KeepBodies bool
}

// DefaultOptions returns the options the driver forwards by default.
func DefaultOptions() Options {
	return Options{
		Standard:              "c11",
		IncludeRoots:          []string{"/usr/include", "/usr/local/include"},
		WarnAll:               true,
		DetailedPreprocessing: true,
		KeepBodies:            true,
	}
}

// Parser wraps tree-sitter configured for C.
type Parser struct {
	parser *sitter.Parser
	opts   Options
}

// NewParser creates a C parser with the given options.
func NewParser(opts Options) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())
	return &Parser{parser: p, opts: opts}
}

// Parse parses C source and returns the translation unit.
func (p *Parser) Parse(source []byte) (*Unit, error) {
	return p.parse(source, "")
}

// ParseFile reads and parses a C source file.
func (p *Parser) ParseFile(path string) (*Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	return p.parse(source, path)
}

func (p *Parser) parse(source []byte, path string) (*Unit, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), File: path}
	}

	unit := &Unit{
		tree:   tree,
		root:   tree.RootNode(),
		source: source,
		path:   path,
		opts:   p.opts,
	}
	unit.indexFunctions()
	return unit, nil
}

// Close releases parser resources. After Close the parser must not be
// used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Unit is a parsed translation unit.
type Unit struct {
	tree   *sitter.Tree
	root   *sitter.Node
	source []byte
	path   string
	opts   Options

	// funcs indexes function definitions (and, where no definition
	// exists, prototypes) by name, for callee resolution.
	funcs map[string]*sitter.Node
}

// Root returns the translation unit's root entity.
func (u *Unit) Root() Entity {
	return u.entityFor(u.root)
}

// Path returns the source file path, empty for in-memory parses.
func (u *Unit) Path() string {
	return u.path
}

// Source returns the raw source text.
func (u *Unit) Source() []byte {
	return u.source
}

// Options returns the parse options this unit was created with.
func (u *Unit) Options() Options {
	return u.opts
}

// HasErrors reports whether the tree contains syntax errors.
func (u *Unit) HasErrors() bool {
	return u.root != nil && u.root.HasError()
}

// Close releases the parse tree resources.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
		u.root = nil
	}
}

// text returns the source text for a node.
func (u *Unit) text(node *sitter.Node) string {
	if node == nil || u.source == nil {
		return ""
	}
	if node.EndByte() > uint32(len(u.source)) {
		return ""
	}
	return node.Content(u.source)
}

// indexFunctions builds the name index used for callee resolution.
// Definitions take precedence over prototypes.
func (u *Unit) indexFunctions() {
	u.funcs = make(map[string]*sitter.Node)
	if u.root == nil {
		return
	}
	for i := 0; i < int(u.root.NamedChildCount()); i++ {
		child := u.root.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			if name := u.text(declaratorIdentifier(child.ChildByFieldName("declarator"))); name != "" {
				u.funcs[name] = child
			}
		case "declaration":
			if !isFunctionPrototype(child) {
				continue
			}
			name := u.text(declaratorIdentifier(firstDeclarator(child)))
			if name == "" {
				continue
			}
			if _, ok := u.funcs[name]; !ok {
				u.funcs[name] = child
			}
		}
	}
}

// lookupFunction resolves a function name to its definition (or
// prototype) entity.
func (u *Unit) lookupFunction(name string) (Entity, bool) {
	node, ok := u.funcs[name]
	if !ok {
		return Entity{}, false
	}
	return Entity{unit: u, node: node, kind: FunctionDecl}, true
}
