package render

import (
	"encoding/json"
	"fmt"

	"github.com/hargabyte/cpg/internal/cpg"
)

// jsonNode is one entry of the node-link document's nodes array.
type jsonNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
}

// jsonEdge is one entry of the node-link document's edges array.
type jsonEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color"`
	Dashes bool    `json:"dashes"`
}

// jsonDocument is the node-link document.
type jsonDocument struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// JSON renders the graph as a node-link document. Node ids combine a
// per-kind prefix with the node's insertion index; edge attributes
// follow the shared style table.
func JSON(g *cpg.Graph) ([]byte, error) {
	doc := jsonDocument{
		Nodes: make([]jsonNode, 0, g.NodeCount()),
		Edges: make([]jsonEdge, 0, g.EdgeCount()),
	}

	ids := make([]string, g.NodeCount())
	for i := 0; i < g.NodeCount(); i++ {
		node := g.Node(cpg.NodeID(i))
		id := fmt.Sprintf("%s_%d", idPrefixes[node.Kind], i)
		ids[i] = id
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:    id,
			Label: nodeLabel(node),
			Group: groups[node.Kind],
		})
	}

	for _, edge := range g.Edges() {
		st := edgeStyles[edge.Kind]
		doc.Edges = append(doc.Edges, jsonEdge{
			From:   ids[edge.From],
			To:     ids[edge.To],
			Label:  st.label,
			Weight: st.weight,
			Color:  st.color,
			Dashes: false,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
