// Package scan extracts caller/callee evidence from raw C source text
// with regular expressions, independent of the AST. Its results feed the
// reconciliation pass; the scanner itself never mutates the graph.
//
// The scanner is a heuristic. The brace-depth counter that bounds
// function bodies does not account for braces inside string or character
// literals or comments, so a pathological body can be cut short. The
// function-definition pattern does not match definitions whose name is
// preceded by a pointer star, such as "void *handler(void *arg) {"; such
// functions are neither scanned as callers nor accepted as pthread
// handlers. The AST pass is the source of truth; scanner evidence only
// fills gaps.
package scan

import (
	"regexp"

	"github.com/hargabyte/cpg/internal/classify"
)

// Call is a (definer, callee) pair found in source text.
type Call struct {
	Caller string
	Callee string
}

// Binding is a (definer, handler) pair from a pthread_create call whose
// third argument names a function defined in the translation unit.
type Binding struct {
	Caller  string
	Handler string
}

var (
	// funcDefRe anchors function definitions: one or more type tokens,
	// the name, a parameter list, and an opening brace.
	funcDefRe = regexp.MustCompile(`(?m)^(?:\w+\s+)+(\w+)\s*\([^)]*\)\s*\{`)

	// callRe matches identifier( occurrences inside a body.
	callRe = regexp.MustCompile(`(\w+)\s*\(`)

	// pthreadRe matches pthread_create(<arg1>, <arg2>, <identifier>, ...).
	pthreadRe = regexp.MustCompile(`pthread_create\s*\([^,]+,\s*[^,]*,\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*,`)
)

// reserved words that the call regex would otherwise report as callees.
var reserved = map[string]bool{
	"if":     true,
	"for":    true,
	"while":  true,
	"switch": true,
	"return": true,
}

// Calls extracts (caller, callee) pairs from source text in source
// order. Callees in the standard library set and reserved words are
// filtered out.
func Calls(source string) []Call {
	var calls []Call
	for _, fn := range functionBodies(source) {
		for _, m := range callRe.FindAllStringSubmatch(fn.body, -1) {
			callee := m[1]
			if classify.IsStandardLibrary(callee) {
				continue
			}
			if reserved[callee] {
				continue
			}
			calls = append(calls, Call{Caller: fn.name, Callee: callee})
		}
	}
	return calls
}

// PthreadBindings extracts (caller, handler) pairs for pthread_create
// calls whose handler argument names a function defined in this source.
func PthreadBindings(source string) []Binding {
	defined := make(map[string]bool)
	for _, m := range funcDefRe.FindAllStringSubmatch(source, -1) {
		defined[m[1]] = true
	}

	var bindings []Binding
	for _, fn := range functionBodies(source) {
		for _, m := range pthreadRe.FindAllStringSubmatch(fn.body, -1) {
			handler := m[1]
			if !defined[handler] {
				continue
			}
			bindings = append(bindings, Binding{Caller: fn.name, Handler: handler})
		}
	}
	return bindings
}

// functionBody pairs a function name with its body text.
type functionBody struct {
	name string
	body string
}

// functionBodies locates each function definition and returns its body
// text, in source order.
func functionBodies(source string) []functionBody {
	var bodies []functionBody
	for _, m := range funcDefRe.FindAllStringSubmatchIndex(source, -1) {
		name := source[m[2]:m[3]]
		start := m[1] // position just past the opening brace
		end := matchingBrace(source, start)
		if end < 0 {
			continue
		}
		bodies = append(bodies, functionBody{name: name, body: source[start:end]})
	}
	return bodies
}

// matchingBrace returns the index of the brace closing the body opened
// just before start, or -1 if the braces never balance.
func matchingBrace(source string, start int) int {
	depth := 1
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
