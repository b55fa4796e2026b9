// Package analysis builds the property graph from a parsed C translation
// unit. It runs three phases over the front-end's entity view: function
// discovery, the recursive AST pass, and reconciliation against
// source-scanner evidence.
//
// Graph construction never aborts on an unresolved symbol: resolution
// failures are traced in debug mode and skipped, and the graph is always
// produced in its current state.
package analysis

import (
	"fmt"
	"io"
	"os"

	"github.com/hargabyte/cpg/internal/classify"
	"github.com/hargabyte/cpg/internal/cpg"
	"github.com/hargabyte/cpg/internal/frontend"
	"github.com/hargabyte/cpg/internal/scan"
)

// allocators are the memory allocation primitives promoted to MemoryOp
// nodes when memory tracking is enabled.
var allocators = map[string]bool{
	"malloc":  true,
	"calloc":  true,
	"realloc": true,
}

// Options configure a run.
type Options struct {
	// Debug enables per-entity trace output.
	Debug bool
	// MemoryTracking enables MemoryOp promotion for allocators and free.
	MemoryTracking bool
	// DebugWriter receives trace output; defaults to stderr.
	DebugWriter io.Writer
	// UnsafeFunctions overrides the unsafe-function set; defaults to
	// the classifier's set.
	UnsafeFunctions map[string]bool
	// Parse are the front-end options; zero value means defaults.
	Parse frontend.Options
}

// Result is a finished run: the graph, the symbol tables, and the
// scanner evidence that fed reconciliation.
type Result struct {
	Graph           *cpg.Graph
	Symbols         *cpg.Symtab
	ScannedCalls    []scan.Call
	PthreadBindings []scan.Binding
}

// Analyzer holds the state shared by the passes of one run.
type Analyzer struct {
	g         *cpg.Graph
	syms      *cpg.Symtab
	processed map[string]bool
	unsafe    map[string]bool
	memTrack  bool
	debug     bool
	w         io.Writer
}

// New creates an analyzer for one run.
func New(opts Options) *Analyzer {
	unsafe := opts.UnsafeFunctions
	if unsafe == nil {
		unsafe = classify.UnsafeFunctions()
	}
	w := opts.DebugWriter
	if w == nil {
		w = os.Stderr
	}
	return &Analyzer{
		g:         cpg.New(),
		syms:      cpg.NewSymtab(),
		processed: make(map[string]bool),
		unsafe:    unsafe,
		memTrack:  opts.MemoryTracking,
		debug:     opts.Debug,
		w:         w,
	}
}

// AnalyzeFile reads, parses, and analyzes a C source file.
func AnalyzeFile(path string, opts Options) (*Result, error) {
	p := frontend.NewParser(parseOptions(opts))
	defer p.Close()

	unit, err := p.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}
	defer unit.Close()

	a := New(opts)
	return a.Run(unit, string(unit.Source())), nil
}

// AnalyzeSource parses and analyzes in-memory C source.
func AnalyzeSource(source []byte, opts Options) (*Result, error) {
	p := frontend.NewParser(parseOptions(opts))
	defer p.Close()

	unit, err := p.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing translation unit: %w", err)
	}
	defer unit.Close()

	a := New(opts)
	return a.Run(unit, string(source)), nil
}

func parseOptions(opts Options) frontend.Options {
	if opts.Parse.Standard == "" {
		return frontend.DefaultOptions()
	}
	return opts.Parse
}

// Run executes the three phases over a parsed unit and returns the
// finished graph. The source text feeds the regex scanner.
func (a *Analyzer) Run(unit *frontend.Unit, source string) *Result {
	root := unit.Root()

	a.discoverFunctions(root)
	a.analyze(root)

	calls := scan.Calls(source)
	bindings := scan.PthreadBindings(source)
	if a.debug {
		for _, c := range calls {
			a.debugf("source scanner: %s -> %s", c.Caller, c.Callee)
		}
		for _, b := range bindings {
			a.debugf("pthread binding: %s -> %s", b.Caller, b.Handler)
		}
	}

	a.reconcile(calls, bindings)

	return &Result{
		Graph:           a.g,
		Symbols:         a.syms,
		ScannedCalls:    calls,
		PthreadBindings: bindings,
	}
}

// identity returns the revisit-suppression key for an entity: name with
// position when named, kind with position otherwise.
func (a *Analyzer) identity(e frontend.Entity) string {
	id := classify.EntityID(e)
	if e.Name() == "" {
		if loc, ok := e.Location(); ok {
			id = fmt.Sprintf("%s:%d:%d", id, loc.Line, loc.Column)
		}
	}
	return id
}

// isAllocator reports whether a callee is a memory allocation primitive.
func isAllocator(name string) bool {
	return allocators[name]
}

// isMemoryPrimitive reports whether a callee is tracked as a MemoryOp.
func isMemoryPrimitive(name string) bool {
	return allocators[name] || name == "free"
}

func (a *Analyzer) debugf(format string, args ...any) {
	if !a.debug {
		return
	}
	fmt.Fprintf(a.w, format+"\n", args...)
}
