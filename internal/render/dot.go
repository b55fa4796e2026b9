package render

import (
	"fmt"
	"strings"

	"github.com/hargabyte/cpg/internal/cpg"
)

// DOT renders the graph as a Graphviz digraph. Nodes are identified by
// their insertion index; shapes and colors follow the per-kind style
// table.
func DOT(g *cpg.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph {\n")

	sb.WriteString("    graph [fontname=\"Arial\", rankdir=TB, splines=true];\n")
	sb.WriteString("    node [fontname=\"Arial\"];\n")
	sb.WriteString("    edge [fontname=\"Arial\"];\n\n")

	for i := 0; i < g.NodeCount(); i++ {
		node := g.Node(cpg.NodeID(i))
		st := nodeStyles[node.Kind]
		fmt.Fprintf(&sb, "    %d [label=\"%s\", shape=%s, fillcolor=\"%s\", style=\"%s\"];\n",
			i, escapeDOT(nodeLabel(node)), st.shape, st.color, st.style)
	}

	for _, edge := range g.Edges() {
		st := edgeStyles[edge.Kind]
		fmt.Fprintf(&sb, "    %d -> %d [label=\"%s\", color=\"%s\"];\n",
			edge.From, edge.To, st.label, st.color)
	}

	sb.WriteString("}\n")
	return sb.String()
}

// escapeDOT escapes quotes and backslashes in a DOT label.
func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
