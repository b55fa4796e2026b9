package analysis

import (
	"strings"

	"github.com/hargabyte/cpg/internal/classify"
	"github.com/hargabyte/cpg/internal/cpg"
	"github.com/hargabyte/cpg/internal/scan"
)

// reconcile closes the gaps the AST pass left: orphan call nodes are
// attached to their targets, scanner-derived calls are materialized
// under the caller's entry block, and pthread_create handler bindings
// are injected as References edges. All resolution failures are skipped
// silently; the AST remains the source of truth and scanner evidence
// never overrides it.
func (a *Analyzer) reconcile(calls []scan.Call, bindings []scan.Binding) {
	a.attachResidualCalls()
	a.injectScannedCalls(calls)
	a.injectPthreadBindings(bindings)
}

// attachResidualCalls connects Call/UnsafeCall nodes that have no
// outgoing Calls edge to the function their label names, when defined.
func (a *Analyzer) attachResidualCalls() {
	type pending struct {
		call cpg.NodeID
		fn   cpg.NodeID
	}
	var edges []pending

	for i := 0; i < a.g.NodeCount(); i++ {
		id := cpg.NodeID(i)
		node := a.g.Node(id)
		if node.Kind != cpg.Call && node.Kind != cpg.UnsafeCall {
			continue
		}

		callee, ok := calleeFromLabel(node.Name)
		if !ok {
			continue
		}
		if a.g.HasOutEdge(id, cpg.Calls) {
			continue
		}
		if fnIdx, found := a.syms.LookupName(callee); found {
			if k := a.g.Node(fnIdx).Kind; k == cpg.Function || k == cpg.Main {
				edges = append(edges, pending{call: id, fn: fnIdx})
			}
		}
	}

	for _, p := range edges {
		a.g.AddEdge(p.call, p.fn, cpg.Calls)
		a.debugf("attached residual call %s", a.g.Node(p.call).Name)
	}
}

// calleeFromLabel parses the callee name out of a call node label.
func calleeFromLabel(label string) (string, bool) {
	if name, ok := strings.CutPrefix(label, "Call: "); ok {
		return name, true
	}
	if name, ok := strings.CutPrefix(label, "Unsafe: "); ok {
		return name, true
	}
	return "", false
}

// entryBlocks maps each function name to its entry basic block.
func (a *Analyzer) entryBlocks() map[string]cpg.NodeID {
	blocks := make(map[string]cpg.NodeID)
	for i := 0; i < a.g.NodeCount(); i++ {
		id := cpg.NodeID(i)
		node := a.g.Node(id)
		if node.Kind != cpg.Function && node.Kind != cpg.Main {
			continue
		}
		for _, child := range a.g.ContainedBy(id) {
			if a.g.Node(child).Kind == cpg.BasicBlock {
				blocks[node.Name] = child
				break
			}
		}
	}
	return blocks
}

// injectScannedCalls materializes scanner-derived calls that the AST
// pass produced no connected call site for.
func (a *Analyzer) injectScannedCalls(calls []scan.Call) {
	blocks := a.entryBlocks()

	for _, c := range calls {
		if classify.IsStandardLibrary(c.Callee) {
			continue
		}
		fnIdx, fnOK := a.syms.LookupName(c.Callee)
		callerBlock, blockOK := blocks[c.Caller]
		if !fnOK || !blockOK {
			continue
		}
		if k := a.g.Node(fnIdx).Kind; k != cpg.Function && k != cpg.Main {
			continue
		}
		if a.hasConnectedCall(callerBlock, c.Callee, fnIdx) {
			continue
		}

		isUnsafe := a.unsafe[c.Callee]
		kind := cpg.Call
		label := "Call: " + c.Callee
		if isUnsafe {
			kind = cpg.UnsafeCall
			label = "Unsafe: " + c.Callee
		}

		callIdx := a.g.AddNode(cpg.Node{Name: label, Kind: kind})
		a.g.AddEdge(callerBlock, callIdx, cpg.Contains)
		a.g.AddEdge(callIdx, fnIdx, cpg.Calls)
		a.debugf("injected scanned call %s -> %s", c.Caller, c.Callee)
	}
}

// hasConnectedCall reports whether the entry block already holds a call
// node for this callee, connected to the target function, anywhere in
// its Contains closure. The closure matters: a call nested in an if or
// loop body is still evidence for the same (caller, callee) pair.
func (a *Analyzer) hasConnectedCall(block cpg.NodeID, callee string, fnIdx cpg.NodeID) bool {
	found := false
	a.walkContains(block, func(id cpg.NodeID) {
		node := a.g.Node(id)
		if node.Kind != cpg.Call && node.Kind != cpg.UnsafeCall {
			return
		}
		if node.Name != "Call: "+callee && node.Name != "Unsafe: "+callee {
			return
		}
		for _, edge := range a.g.OutEdges(id) {
			if edge.Kind == cpg.Calls && edge.To == fnIdx {
				found = true
			}
		}
	})
	return found
}

// walkContains visits every node in the Contains closure of a root.
func (a *Analyzer) walkContains(root cpg.NodeID, visit func(cpg.NodeID)) {
	seen := map[cpg.NodeID]bool{root: true}
	queue := []cpg.NodeID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range a.g.ContainedBy(id) {
			if seen[child] {
				continue
			}
			seen[child] = true
			visit(child)
			queue = append(queue, child)
		}
	}
}

// injectPthreadBindings creates a Call: pthread_create node with a
// References edge to the handler for each binding not already present.
func (a *Analyzer) injectPthreadBindings(bindings []scan.Binding) {
	blocks := a.entryBlocks()

	for _, b := range bindings {
		if _, ok := a.syms.LookupName(b.Caller); !ok {
			continue
		}
		handlerIdx, handlerOK := a.syms.LookupName(b.Handler)
		if !handlerOK {
			continue
		}

		block, blockOK := blocks[b.Caller]
		if !blockOK {
			continue
		}
		if a.hasHandlerReference(block, handlerIdx) {
			continue
		}

		callIdx := a.g.AddNode(cpg.Node{
			Name: "Call: pthread_create",
			Kind: cpg.Call,
		})
		a.g.AddEdge(block, callIdx, cpg.Contains)
		a.g.AddEdge(callIdx, handlerIdx, cpg.References)
		a.debugf("injected pthread handler %s -> %s", b.Caller, b.Handler)
	}
}

// hasHandlerReference reports whether the entry block, or any
// pthread_create call in its Contains closure, already references the
// handler.
func (a *Analyzer) hasHandlerReference(block, handlerIdx cpg.NodeID) bool {
	for _, edge := range a.g.OutEdges(block) {
		if edge.Kind == cpg.References && edge.To == handlerIdx {
			return true
		}
	}
	found := false
	a.walkContains(block, func(id cpg.NodeID) {
		if a.g.Node(id).Name != "Call: pthread_create" {
			return
		}
		for _, edge := range a.g.OutEdges(id) {
			if edge.Kind == cpg.References && edge.To == handlerIdx {
				found = true
			}
		}
	})
	return found
}
