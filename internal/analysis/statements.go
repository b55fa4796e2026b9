package analysis

import (
	"strings"

	"github.com/hargabyte/cpg/internal/classify"
	"github.com/hargabyte/cpg/internal/cpg"
	"github.com/hargabyte/cpg/internal/frontend"
)

// analyze is the top-level walk of the AST pass. It prunes system
// entities, suppresses revisits, and dispatches to the per-kind
// processors.
func (a *Analyzer) analyze(e frontend.Entity) {
	if classify.IsSystem(e) {
		return
	}

	id := a.identity(e)
	if a.processed[id] {
		return
	}
	a.processed[id] = true

	if a.debug {
		if name := e.Name(); name != "" {
			a.debugf("processing entity: %s (%s)", name, e.Kind())
		} else {
			a.debugf("processing entity: %s", e.Kind())
		}
	}

	switch e.Kind() {
	case frontend.FunctionDecl:
		a.processFunction(e)
	case frontend.DeclStmt:
		// Global declarations: process each declarator without a
		// containing block.
		for _, child := range e.Children() {
			if child.Kind() == frontend.VarDecl {
				a.processVariableDecl(child)
			}
		}
	case frontend.VarDecl:
		a.processVariableDecl(e)
	case frontend.IfStmt:
		a.processIfStatement(e)
	case frontend.ForStmt:
		a.processLoop(e, cpg.ForLoop)
	case frontend.WhileStmt:
		a.processLoop(e, cpg.WhileLoop)
	default:
		for _, child := range e.Children() {
			a.analyze(child)
		}
	}
}

// processFunction builds the function node (or reuses the discovered
// one), its parameter nodes, and its entry basic block, then descends
// into the body.
func (a *Analyzer) processFunction(e frontend.Entity) {
	name := e.Name()
	if name == "" {
		return
	}

	fnIdx, ok := a.syms.LookupName(name)
	if !ok {
		kind := cpg.Function
		if name == "main" {
			kind = cpg.Main
		}
		fnIdx = a.g.AddNode(cpg.Node{
			Name:     name,
			Kind:     kind,
			Line:     classify.LineOf(e),
			USR:      e.USR(),
			TypeInfo: e.ResultTypeName(),
		})
		a.syms.BindName(name, fnIdx)
		a.syms.BindUSR(e.USR(), fnIdx)
	}

	for _, param := range e.Arguments() {
		paramName := param.Name()
		if paramName == "" {
			continue
		}
		paramType := param.TypeName()

		kind, label := classifyParameter(paramName, paramType)
		paramIdx := a.g.AddNode(cpg.Node{
			Name:     label,
			Kind:     kind,
			Line:     classify.LineOf(param),
			TypeInfo: paramType,
		})
		a.g.AddEdge(fnIdx, paramIdx, cpg.Contains)

		// Composite key for cross-function reference, bare name for
		// local lookups.
		a.syms.BindName(name+"_"+paramName, paramIdx)
		a.syms.BindName(paramName, paramIdx)
	}

	for _, child := range e.Children() {
		if child.Kind() != frontend.CompoundStmt {
			continue
		}
		bbIdx := a.g.AddNode(cpg.Node{
			Name: "BasicBlock: entry",
			Kind: cpg.BasicBlock,
			Line: classify.LineOf(child),
		})
		a.g.AddEdge(fnIdx, bbIdx, cpg.Contains)

		for _, stmt := range child.Children() {
			a.processStatement(stmt, bbIdx)
		}
		break
	}
}

// classifyParameter picks the node kind and display label for a
// declared parameter.
func classifyParameter(name, typ string) (cpg.NodeKind, string) {
	switch {
	case isBufferType(typ):
		return cpg.BufferParameter, "BufferParam: " + name + " (" + typ + ")"
	case strings.Contains(typ, "*"):
		return cpg.Pointer, "Pointer: " + name + " (" + typ + ")"
	default:
		return cpg.Parameter, "Param: " + name + " (" + typ + ")"
	}
}

func isBufferType(typ string) bool {
	return strings.Contains(typ, "char *") || strings.Contains(typ, "char*")
}

// processStatement dispatches one statement or expression inside a
// function body, with parent as the enclosing graph node.
func (a *Analyzer) processStatement(e frontend.Entity, parent cpg.NodeID) {
	switch e.Kind() {
	case frontend.CallExpr:
		a.processCallExpression(e, parent, a.memTrack)

	case frontend.DeclStmt:
		for _, child := range e.Children() {
			if child.Kind() != frontend.VarDecl {
				continue
			}
			if varIdx, ok := a.processVariableDecl(child); ok {
				a.g.AddEdge(parent, varIdx, cpg.Contains)
			}
		}

	case frontend.BinaryOperator, frontend.CompoundAssignOperator, frontend.CStyleCastExpr:
		a.processBinaryOperator(e, parent)

	case frontend.UnaryOperator:
		a.processUnaryOperator(e, parent)

	case frontend.IfStmt:
		ifIdx := a.processIfStatement(e)
		a.g.AddEdge(parent, ifIdx, cpg.Contains)

	case frontend.ForStmt:
		loopIdx := a.processLoop(e, cpg.ForLoop)
		a.g.AddEdge(parent, loopIdx, cpg.Contains)

	case frontend.WhileStmt:
		loopIdx := a.processLoop(e, cpg.WhileLoop)
		a.g.AddEdge(parent, loopIdx, cpg.Contains)

	case frontend.MemberRefExpr:
		a.processMemberAccess(e, parent)

	case frontend.ArraySubscriptExpr:
		a.processArrayAccess(e, parent)

	case frontend.CompoundStmt:
		for _, child := range e.Children() {
			a.processStatement(child, parent)
		}

	case frontend.DeclRefExpr:
		if varIdx, ok := a.syms.LookupName(e.Name()); ok {
			a.g.AddEdge(parent, varIdx, cpg.Uses)
		}

	default:
		for _, child := range e.Children() {
			a.processStatement(child, parent)
		}
	}
}

// processVariableDecl creates a node for a variable declarator,
// classified by its declared type, and processes its initializer.
func (a *Analyzer) processVariableDecl(e frontend.Entity) (cpg.NodeID, bool) {
	name := e.Name()
	if name == "" {
		return 0, false
	}
	varType := e.TypeName()

	var (
		kind  cpg.NodeKind
		label string
	)
	switch {
	case isBufferType(varType):
		kind = cpg.BufferParameter
		label = "BufferParam: " + name + " (" + varType + ")"
	case strings.Contains(varType, "*"):
		kind = cpg.Pointer
		label = "Pointer: " + name + " (" + varType + ")"
	case strings.Contains(varType, "[") && strings.Contains(varType, "]"):
		kind = cpg.Array
		label = "Array: " + name + " (" + varType + ")"
	default:
		kind = cpg.Variable
		label = "Var: " + name
	}

	varIdx := a.g.AddNode(cpg.Node{
		Name:     label,
		Kind:     kind,
		Line:     classify.LineOf(e),
		TypeInfo: varType,
	})
	a.syms.BindName(name, varIdx)

	for _, child := range e.Children() {
		switch child.Kind() {
		case frontend.BinaryOperator, frontend.CallExpr, frontend.UnaryOperator,
			frontend.IntegerLiteral, frontend.StringLiteral, frontend.DeclRefExpr:
			a.processInitializer(child, varIdx)
		default:
			continue
		}
		break
	}

	return varIdx, true
}

// processInitializer applies the assignment rules to a declaration-site
// initializer, with the declared variable as the target. Unlike an
// assigned call, a call initializer gets no call-site node: only the
// allocator MemoryOp (under memory tracking) with its Allocates edge is
// recorded, and calls nested in its arguments are swept for function
// references.
func (a *Analyzer) processInitializer(e frontend.Entity, varIdx cpg.NodeID) {
	switch e.Kind() {
	case frontend.CallExpr:
		if name, ok := calleeName(e); ok && a.memTrack && isAllocator(name) {
			a.debugf("memory allocation in variable initialization")
			memIdx := a.g.AddNode(cpg.Node{
				Name: "MemoryOp: " + name,
				Kind: cpg.MemoryOp,
				Line: classify.LineOf(e),
			})
			a.g.AddEdge(varIdx, memIdx, cpg.Allocates)
		}
		for _, arg := range e.Arguments() {
			a.processFunctionPointerRefs(arg, varIdx)
		}

	case frontend.DeclRefExpr:
		refIdx, ok := a.syms.LookupName(e.Name())
		if !ok {
			return
		}
		a.g.AddEdge(varIdx, refIdx, cpg.Uses)
		refKind := a.g.Node(refIdx).Kind
		if refKind == cpg.Pointer || refKind == cpg.BufferParameter {
			a.syms.SetPointerTarget(varIdx, refIdx)
		}

	case frontend.UnaryOperator:
		if e.OperatorText() != "&" {
			return
		}
		a.debugf("address-of operator in initialization")
		for _, child := range e.Children() {
			if child.Kind() != frontend.DeclRefExpr {
				continue
			}
			if refIdx, ok := a.syms.LookupName(child.Name()); ok {
				a.g.AddEdge(varIdx, refIdx, cpg.Points)
				a.syms.SetPointerTarget(varIdx, refIdx)
			}
		}

	default:
		for _, child := range e.Children() {
			a.processInitializer(child, varIdx)
		}
	}
}

// processBinaryOperator handles assignment decomposition; any other
// binary form recurses into its operands.
func (a *Analyzer) processBinaryOperator(e frontend.Entity, parent cpg.NodeID) {
	if e.OperatorText() != "=" {
		for _, child := range e.Children() {
			a.processStatement(child, parent)
		}
		return
	}

	children := e.Children()
	if len(children) < 2 {
		return
	}
	lhs, rhs := children[0], children[1]

	var (
		targetIdx cpg.NodeID
		ok        bool
	)
	if lhs.Kind() == frontend.DeclRefExpr {
		targetIdx, ok = a.syms.LookupName(lhs.Name())
	}
	if !ok {
		a.debugf("assignment target not resolvable")
		return
	}

	assignIdx := a.g.AddNode(cpg.Node{
		Name: "Assignment",
		Kind: cpg.Assignment,
		Line: classify.LineOf(e),
	})
	a.g.AddEdge(parent, assignIdx, cpg.Contains)
	a.g.AddEdge(assignIdx, targetIdx, cpg.Assigns)

	a.processAssignmentValue(rhs, assignIdx, targetIdx)
}
