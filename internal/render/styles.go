// Package render serializes a finished property graph as Graphviz DOT
// or as a node-link JSON document for visualization front-ends. Both
// renderers are pure over the graph: serializing the same graph twice
// yields byte-identical output.
package render

import "github.com/hargabyte/cpg/internal/cpg"

// nodeStyle is the DOT appearance of a node kind.
type nodeStyle struct {
	shape string
	color string
	style string
}

// nodeStyles maps node kinds to DOT shapes and fill colors.
var nodeStyles = map[cpg.NodeKind]nodeStyle{
	cpg.UnsafeCall:      {shape: "ellipse", color: "red", style: "filled"},
	cpg.Call:            {shape: "ellipse", color: "purple", style: "filled"},
	cpg.Main:            {shape: "ellipse", color: "green", style: "filled"},
	cpg.Function:        {shape: "ellipse", color: "lightblue", style: "filled"},
	cpg.BasicBlock:      {shape: "box", color: "red", style: "filled,rounded"},
	cpg.Parameter:       {shape: "ellipse", color: "orange", style: "filled"},
	cpg.BufferParameter: {shape: "ellipse", color: "blue", style: "filled"},
	cpg.Variable:        {shape: "ellipse", color: "green", style: "filled"},
	cpg.Pointer:         {shape: "ellipse", color: "darkblue", style: "filled"},
	cpg.Array:           {shape: "ellipse", color: "lightyellow", style: "filled"},
	cpg.IfStatement:     {shape: "diamond", color: "indigo", style: "filled"},
	cpg.ForLoop:         {shape: "box", color: "lightblue", style: "filled,rounded"},
	cpg.WhileLoop:       {shape: "box", color: "lightblue", style: "filled,rounded"},
	cpg.Assignment:      {shape: "ellipse", color: "grey", style: "filled"},
	cpg.MemoryOp:        {shape: "ellipse", color: "violet", style: "filled"},
	cpg.Dereference:     {shape: "ellipse", color: "darkred", style: "filled"},
	cpg.AddressOf:       {shape: "ellipse", color: "lightgreen", style: "filled"},
	cpg.Cast:            {shape: "ellipse", color: "cyan", style: "filled"},
	cpg.StructAccess:    {shape: "ellipse", color: "pink", style: "filled"},
	cpg.ArrayAccess:     {shape: "ellipse", color: "yellow", style: "filled"},
}

// idPrefixes maps node kinds to the prefix of their JSON node ids.
var idPrefixes = map[cpg.NodeKind]string{
	cpg.Function:        "func",
	cpg.Main:            "main",
	cpg.Variable:        "var",
	cpg.Parameter:       "param",
	cpg.BufferParameter: "buffer",
	cpg.Pointer:         "ptr",
	cpg.Array:           "array",
	cpg.Call:            "call",
	cpg.UnsafeCall:      "unsafe",
	cpg.BasicBlock:      "block",
	cpg.IfStatement:     "if",
	cpg.ForLoop:         "for",
	cpg.WhileLoop:       "while",
	cpg.Assignment:      "assign",
	cpg.MemoryOp:        "memop",
	cpg.Dereference:     "deref",
	cpg.AddressOf:       "addrof",
	cpg.Cast:            "cast",
	cpg.StructAccess:    "struct",
	cpg.ArrayAccess:     "arr_acc",
}

// groups maps node kinds to the JSON group tag consumed by the
// visualization front-end.
var groups = map[cpg.NodeKind]string{
	cpg.Function:        "function",
	cpg.Main:            "main_function",
	cpg.Variable:        "variable",
	cpg.Parameter:       "param",
	cpg.BufferParameter: "buffer_param",
	cpg.Pointer:         "pointer",
	cpg.Array:           "array",
	cpg.Call:            "call",
	cpg.UnsafeCall:      "unsafe_call",
	cpg.BasicBlock:      "basic",
	cpg.IfStatement:     "if_statement",
	cpg.ForLoop:         "for_loop",
	cpg.WhileLoop:       "while_loop",
	cpg.Assignment:      "assignment",
	cpg.MemoryOp:        "memory_op",
	cpg.Dereference:     "dereference",
	cpg.AddressOf:       "address_of",
	cpg.Cast:            "cast",
	cpg.StructAccess:    "struct_access",
	cpg.ArrayAccess:     "array_access",
}

// edgeStyle is the shared label/color/weight table for edge kinds.
type edgeStyle struct {
	label  string
	color  string
	weight float64
}

// edgeStyles maps edge kinds to their rendering attributes.
var edgeStyles = map[cpg.EdgeKind]edgeStyle{
	cpg.Calls:      {label: "calls", color: "blue", weight: 2.0},
	cpg.Contains:   {label: "contains", color: "gray", weight: 1.0},
	cpg.Uses:       {label: "uses", color: "green", weight: 2.0},
	cpg.Defines:    {label: "defines", color: "purple", weight: 2.0},
	cpg.References: {label: "references", color: "darkblue", weight: 2.0},
	cpg.Assigns:    {label: "assigns", color: "black", weight: 1.5},
	cpg.Points:     {label: "points_to", color: "darkorange", weight: 2.0},
	cpg.Casts:      {label: "casts", color: "cyan", weight: 1.5},
	cpg.Accesses:   {label: "accesses", color: "pink", weight: 1.5},
	cpg.Allocates:  {label: "allocates", color: "darkgreen", weight: 2.0},
	cpg.Frees:      {label: "frees", color: "red", weight: 2.0},
	cpg.Controls:   {label: "controls", color: "red", weight: 3.0},
}

// nodeLabel renders a node's display label, appending the type in
// brackets when present.
func nodeLabel(n *cpg.Node) string {
	if n.TypeInfo != "" {
		return n.Name + " [" + n.TypeInfo + "]"
	}
	return n.Name
}
