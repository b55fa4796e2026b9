package analysis

import (
	"github.com/hargabyte/cpg/internal/classify"
	"github.com/hargabyte/cpg/internal/cpg"
	"github.com/hargabyte/cpg/internal/frontend"
)

// calleeName determines the name a call expression invokes: the direct
// reference when the front-end resolved one, else the first child when
// it is a declaration reference. Calls with neither are dropped.
func calleeName(e frontend.Entity) (string, bool) {
	if ref, ok := e.Referenced(); ok {
		if name := ref.Name(); name != "" {
			return name, true
		}
	}
	children := e.Children()
	if len(children) > 0 && children[0].Kind() == frontend.DeclRefExpr {
		if name := children[0].Name(); name != "" {
			return name, true
		}
	}
	return "", false
}

// processCallExpression builds the call-site node, classifies it as
// Call, UnsafeCall, or MemoryOp, links it to the target function when
// resolvable, and sweeps the arguments for data-flow edges.
//
// memTracking is passed explicitly because assignment processing
// decomposes allocator calls itself and reprocesses the call without
// promotion.
func (a *Analyzer) processCallExpression(e frontend.Entity, parent cpg.NodeID, memTracking bool) {
	name, ok := calleeName(e)
	if !ok {
		a.debugf("call expression without resolvable callee")
		return
	}

	isUnsafe := a.unsafe[name]
	isMemOp := memTracking && isMemoryPrimitive(name)

	var (
		kind  cpg.NodeKind
		label string
	)
	switch {
	case isUnsafe:
		kind = cpg.UnsafeCall
		label = "Unsafe: " + name
	case isMemOp:
		kind = cpg.MemoryOp
		label = "MemoryOp: " + name
	default:
		kind = cpg.Call
		label = "Call: " + name
	}

	usr := ""
	if ref, refOK := e.Referenced(); refOK {
		usr = ref.USR()
	}

	callIdx := a.g.AddNode(cpg.Node{
		Name: label,
		Kind: kind,
		Line: classify.LineOf(e),
		USR:  usr,
	})
	a.g.AddEdge(parent, callIdx, cpg.Contains)

	// USR first, then name. A flat namespace can resolve a callee name
	// to a variable; Calls edges only ever target functions.
	fnIdx, found := a.syms.LookupUSR(usr)
	if !found {
		fnIdx, found = a.syms.LookupName(name)
	}
	if found {
		if k := a.g.Node(fnIdx).Kind; k != cpg.Function && k != cpg.Main {
			found = false
		}
	}
	if found {
		a.g.AddEdge(callIdx, fnIdx, cpg.Calls)
		a.debugf("added calls edge for %s", name)
	} else {
		a.debugf("no function definition found for: %s", name)
	}

	// The shadow node materializes the unsafe-construct annotation as
	// a distinct, visible graph element.
	if isUnsafe {
		shadowIdx := a.g.AddNode(cpg.Node{
			Name: "Unsafe: " + name,
			Kind: cpg.UnsafeCall,
		})
		a.g.AddEdge(shadowIdx, callIdx, cpg.Controls)
	}

	if isMemOp && name == "free" {
		args := e.Arguments()
		if len(args) > 0 && args[0].Kind() == frontend.DeclRefExpr {
			if ptrIdx, ptrOK := a.syms.LookupName(args[0].Name()); ptrOK {
				a.g.AddEdge(callIdx, ptrIdx, cpg.Frees)
			}
		}
	}

	for _, arg := range e.Arguments() {
		a.processCallArgument(arg, callIdx)
	}
	a.processFunctionPointerRefs(e, callIdx)
}

// processCallArgument walks the leftmost spine of an argument looking
// for a declaration reference, and records the call's use of that
// variable (and of its pointer target, when known).
func (a *Analyzer) processCallArgument(arg frontend.Entity, callIdx cpg.NodeID) {
	current := arg
	for current.IsValid() {
		if current.Kind() == frontend.DeclRefExpr {
			varIdx, ok := a.syms.LookupName(current.Name())
			if !ok {
				return
			}
			a.g.AddEdge(callIdx, varIdx, cpg.Uses)
			if targetIdx, hasTarget := a.syms.PointerTarget(varIdx); hasTarget {
				a.g.AddEdge(callIdx, targetIdx, cpg.Uses)
			}
			return
		}
		children := current.Children()
		if len(children) == 0 {
			return
		}
		current = children[0]
	}
}

// processFunctionPointerRefs records References edges for call
// arguments that name a defined function (e.g. a handler passed to
// pthread_create).
func (a *Analyzer) processFunctionPointerRefs(e frontend.Entity, parent cpg.NodeID) {
	if e.Kind() != frontend.CallExpr {
		for _, child := range e.Children() {
			a.processFunctionPointerRefs(child, parent)
		}
		return
	}

	for _, arg := range e.Arguments() {
		if arg.Kind() != frontend.DeclRefExpr && arg.Kind() != frontend.UnexposedExpr {
			continue
		}
		if name := arg.Name(); name != "" {
			a.addFunctionReference(name, parent)
		}
		for _, child := range arg.Children() {
			if child.Kind() == frontend.DeclRefExpr {
				a.addFunctionReference(child.Name(), parent)
			}
		}
	}
}

// addFunctionReference adds a References edge when the name resolves to
// a Function or Main node.
func (a *Analyzer) addFunctionReference(name string, parent cpg.NodeID) {
	fnIdx, ok := a.syms.LookupName(name)
	if !ok {
		return
	}
	kind := a.g.Node(fnIdx).Kind
	if kind != cpg.Function && kind != cpg.Main {
		return
	}
	a.debugf("function pointer reference: %s", name)
	a.g.AddEdge(parent, fnIdx, cpg.References)
}

// processAssignmentValue applies the right-hand-side rules of an
// assignment: allocator calls, variable copies (with pointer-alias
// recording), address-of, and a generic use sweep.
func (a *Analyzer) processAssignmentValue(e frontend.Entity, assignIdx, targetIdx cpg.NodeID) {
	switch e.Kind() {
	case frontend.CallExpr:
		if name, ok := calleeName(e); ok && a.memTrack && isAllocator(name) {
			a.debugf("memory allocation in assignment")
			memIdx := a.g.AddNode(cpg.Node{
				Name: "MemoryOp: " + name,
				Kind: cpg.MemoryOp,
				Line: classify.LineOf(e),
			})
			a.g.AddEdge(assignIdx, memIdx, cpg.Uses)
			a.g.AddEdge(targetIdx, memIdx, cpg.Allocates)
		}
		// Reprocess as a plain call for argument data flow; promotion
		// already happened above.
		a.processCallExpression(e, assignIdx, false)

	case frontend.DeclRefExpr:
		refIdx, ok := a.syms.LookupName(e.Name())
		if !ok {
			return
		}
		a.g.AddEdge(assignIdx, refIdx, cpg.Uses)
		refKind := a.g.Node(refIdx).Kind
		if refKind == cpg.Pointer || refKind == cpg.BufferParameter {
			a.syms.SetPointerTarget(targetIdx, refIdx)
		}

	case frontend.UnaryOperator:
		if e.OperatorText() != "&" {
			return
		}
		a.debugf("address-of operator in assignment")
		for _, child := range e.Children() {
			if child.Kind() != frontend.DeclRefExpr {
				continue
			}
			if refIdx, ok := a.syms.LookupName(child.Name()); ok {
				a.g.AddEdge(targetIdx, refIdx, cpg.Points)
				a.syms.SetPointerTarget(targetIdx, refIdx)
			}
		}

	default:
		for _, child := range e.Children() {
			if child.Kind() == frontend.DeclRefExpr {
				if refIdx, ok := a.syms.LookupName(child.Name()); ok {
					a.g.AddEdge(assignIdx, refIdx, cpg.Uses)
				}
				continue
			}
			a.processAssignmentValue(child, assignIdx, targetIdx)
		}
	}
}

// processUnaryOperator builds Dereference and AddressOf nodes; other
// unary operators recurse.
func (a *Analyzer) processUnaryOperator(e frontend.Entity, parent cpg.NodeID) {
	switch e.OperatorText() {
	case "*":
		a.debugf("pointer dereference")
		derefIdx := a.g.AddNode(cpg.Node{
			Name: "Dereference",
			Kind: cpg.Dereference,
			Line: classify.LineOf(e),
		})
		a.g.AddEdge(parent, derefIdx, cpg.Contains)

		for _, child := range e.Children() {
			if child.Kind() != frontend.DeclRefExpr {
				a.processStatement(child, derefIdx)
				continue
			}
			ptrIdx, ok := a.syms.LookupName(child.Name())
			if !ok {
				continue
			}
			a.g.AddEdge(derefIdx, ptrIdx, cpg.Uses)
			if targetIdx, hasTarget := a.syms.PointerTarget(ptrIdx); hasTarget {
				a.g.AddEdge(derefIdx, targetIdx, cpg.Accesses)
			}
		}

	case "&":
		a.debugf("address-of operator")
		addrIdx := a.g.AddNode(cpg.Node{
			Name: "AddressOf",
			Kind: cpg.AddressOf,
			Line: classify.LineOf(e),
		})
		a.g.AddEdge(parent, addrIdx, cpg.Contains)

		for _, child := range e.Children() {
			if child.Kind() != frontend.DeclRefExpr {
				a.processStatement(child, addrIdx)
				continue
			}
			if varIdx, ok := a.syms.LookupName(child.Name()); ok {
				a.g.AddEdge(addrIdx, varIdx, cpg.Uses)
			}
		}

	default:
		for _, child := range e.Children() {
			a.processStatement(child, parent)
		}
	}
}

// processMemberAccess builds a StructAccess node and links it to the
// accessed base when resolvable.
func (a *Analyzer) processMemberAccess(e frontend.Entity, parent cpg.NodeID) {
	a.debugf("struct/union member access")

	member := e.Name()
	if member == "" {
		member = "unknown_member"
	}

	accessIdx := a.g.AddNode(cpg.Node{
		Name: "StructAccess: " + member,
		Kind: cpg.StructAccess,
		Line: classify.LineOf(e),
	})
	a.g.AddEdge(parent, accessIdx, cpg.Contains)

	for _, child := range e.Children() {
		if child.Kind() != frontend.DeclRefExpr {
			a.processStatement(child, accessIdx)
			continue
		}
		if baseIdx, ok := a.syms.LookupName(child.Name()); ok {
			a.g.AddEdge(accessIdx, baseIdx, cpg.Accesses)
		}
	}
}

// processArrayAccess builds an ArrayAccess node, links the base with
// Accesses, and sweeps the index subtree for uses.
func (a *Analyzer) processArrayAccess(e frontend.Entity, parent cpg.NodeID) {
	a.debugf("array access")

	accessIdx := a.g.AddNode(cpg.Node{
		Name: "ArrayAccess",
		Kind: cpg.ArrayAccess,
		Line: classify.LineOf(e),
	})
	a.g.AddEdge(parent, accessIdx, cpg.Contains)

	children := e.Children()
	if len(children) >= 1 {
		base := children[0]
		if base.Kind() == frontend.DeclRefExpr {
			if arrIdx, ok := a.syms.LookupName(base.Name()); ok {
				a.g.AddEdge(accessIdx, arrIdx, cpg.Accesses)
			}
		} else {
			a.processStatement(base, accessIdx)
		}
	}
	if len(children) >= 2 {
		a.findVariableRefs(children[1], accessIdx, cpg.Uses)
	}
}

// findVariableRefs adds an edge of the given kind from parent to every
// resolvable declaration reference in the subtree.
func (a *Analyzer) findVariableRefs(e frontend.Entity, parent cpg.NodeID, kind cpg.EdgeKind) {
	if e.Kind() == frontend.DeclRefExpr {
		if varIdx, ok := a.syms.LookupName(e.Name()); ok {
			a.g.AddEdge(parent, varIdx, kind)
		}
	}
	for _, child := range e.Children() {
		a.findVariableRefs(child, parent, kind)
	}
}

// processIfStatement builds the IfStatement node, sweeps the condition
// for uses, and descends into the then and else branches.
func (a *Analyzer) processIfStatement(e frontend.Entity) cpg.NodeID {
	ifIdx := a.g.AddNode(cpg.Node{
		Name: "If statement",
		Kind: cpg.IfStatement,
		Line: classify.LineOf(e),
	})

	children := e.Children()

	// Condition: the first expression-kind child.
	for _, child := range children {
		switch child.Kind() {
		case frontend.BinaryOperator, frontend.UnaryOperator, frontend.DeclRefExpr:
			a.findVariableRefs(child, ifIdx, cpg.Uses)
		default:
			continue
		}
		break
	}

	// Then branch: the first compound-statement child.
	for _, child := range children {
		if child.Kind() != frontend.CompoundStmt {
			continue
		}
		thenIdx := a.g.AddNode(cpg.Node{
			Name: "BasicBlock: then",
			Kind: cpg.BasicBlock,
			Line: classify.LineOf(child),
		})
		a.g.AddEdge(ifIdx, thenIdx, cpg.Contains)
		for _, stmt := range child.Children() {
			a.processStatement(stmt, thenIdx)
		}
		break
	}

	// Else branch: a third compound-statement child; an else-if chain
	// recurses into a nested IfStatement instead.
	if len(children) >= 3 {
		alt := children[2]
		switch alt.Kind() {
		case frontend.CompoundStmt:
			elseIdx := a.g.AddNode(cpg.Node{
				Name: "BasicBlock: else",
				Kind: cpg.BasicBlock,
				Line: classify.LineOf(alt),
			})
			a.g.AddEdge(ifIdx, elseIdx, cpg.Contains)
			for _, stmt := range alt.Children() {
				a.processStatement(stmt, elseIdx)
			}
		case frontend.IfStmt:
			a.processStatement(alt, ifIdx)
		}
	}

	return ifIdx
}

// processLoop builds a ForLoop or WhileLoop node, sweeps the loop
// header for uses, and descends into the body.
func (a *Analyzer) processLoop(e frontend.Entity, kind cpg.NodeKind) cpg.NodeID {
	name := "While loop"
	if kind == cpg.ForLoop {
		name = "For loop"
	}

	loopIdx := a.g.AddNode(cpg.Node{
		Name: name,
		Kind: kind,
		Line: classify.LineOf(e),
	})

	for _, child := range e.Children() {
		switch child.Kind() {
		case frontend.BinaryOperator, frontend.UnaryOperator, frontend.DeclRefExpr:
			a.findVariableRefs(child, loopIdx, cpg.Uses)
		}
	}

	for _, child := range e.Children() {
		if child.Kind() != frontend.CompoundStmt {
			continue
		}
		bodyIdx := a.g.AddNode(cpg.Node{
			Name: "BasicBlock: loop body",
			Kind: cpg.BasicBlock,
			Line: classify.LineOf(child),
		})
		a.g.AddEdge(loopIdx, bodyIdx, cpg.Contains)
		for _, stmt := range child.Children() {
			a.processStatement(stmt, bodyIdx)
		}
		break
	}

	return loopIdx
}
