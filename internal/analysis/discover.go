package analysis

import (
	"github.com/hargabyte/cpg/internal/classify"
	"github.com/hargabyte/cpg/internal/cpg"
	"github.com/hargabyte/cpg/internal/frontend"
)

// discoverFunctions seeds a graph node for every non-system function
// declaration so that call sites anywhere in the unit can resolve,
// regardless of definition order. Prototype-before-definition collapses
// onto the first registration.
func (a *Analyzer) discoverFunctions(e frontend.Entity) {
	if classify.IsSystem(e) {
		return
	}

	if e.Kind() == frontend.FunctionDecl {
		name := e.Name()
		if name == "" {
			return
		}
		if _, ok := a.syms.LookupName(name); ok {
			return
		}

		kind := cpg.Function
		if name == "main" {
			kind = cpg.Main
		}

		id := a.g.AddNode(cpg.Node{
			Name:     name,
			Kind:     kind,
			Line:     classify.LineOf(e),
			USR:      e.USR(),
			TypeInfo: e.ResultTypeName(),
		})
		a.syms.BindFunction(name, id)
		a.syms.BindUSR(e.USR(), id)
		return
	}

	for _, child := range e.Children() {
		a.discoverFunctions(child)
	}
}
