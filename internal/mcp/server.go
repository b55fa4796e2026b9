// Package mcp provides an MCP (Model Context Protocol) server for cpg.
// This lets AI agents analyze C source and read the resulting property
// graph through MCP tools instead of spawning CLI commands.
package mcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hargabyte/cpg/internal/analysis"
	"github.com/hargabyte/cpg/internal/cpg"
	"github.com/hargabyte/cpg/internal/render"
)

// Server wraps the MCP server with cpg-specific tools.
type Server struct {
	mcpServer *server.MCPServer
}

// New creates an MCP server exposing the cpg analysis tools.
func New(version string) *Server {
	mcpServer := server.NewMCPServer(
		"cpg",
		version,
		server.WithToolCapabilities(false),
	)

	s := &Server{mcpServer: mcpServer}
	s.registerAnalyzeTool()
	s.registerUnsafeTool()
	return s
}

// ServeStdio starts the server using stdio transport and blocks until
// the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerAnalyzeTool() {
	tool := mcp.NewTool("cpg_analyze",
		mcp.WithDescription("Analyze a C source file and return its property graph. "+
			"The graph models functions, calls, control flow, memory operations, and pointer relations."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the C source file to analyze")),
		mcp.WithString("format",
			mcp.Description("Output format: json (default) or dot")),
		mcp.WithBoolean("memory_tracking",
			mcp.Description("Enable MemoryOp promotion for malloc/calloc/realloc/free")),
	)
	s.mcpServer.AddTool(tool, s.handleAnalyze)
}

func (s *Server) registerUnsafeTool() {
	tool := mcp.NewTool("cpg_unsafe",
		mcp.WithDescription("List calls to known-unsafe functions (strcpy, gets, ...) in a C source file, "+
			"with the containing function for each call site."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path to the C source file to analyze")),
	)
	s.mcpServer.AddTool(tool, s.handleUnsafe)
}

func (s *Server) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	file, _ := args["file"].(string)
	if file == "" {
		return mcp.NewToolResultError("file parameter is required"), nil
	}
	format, _ := args["format"].(string)
	if format == "" {
		format = "json"
	}
	memTracking, _ := args["memory_tracking"].(bool)

	result, err := analysis.AnalyzeFile(file, analysis.Options{
		MemoryTracking: memTracking,
		DebugWriter:    io.Discard,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch format {
	case "json":
		data, err := render.JSON(result.Graph)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case "dot":
		return mcp.NewToolResultText(render.DOT(result.Graph)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (want json or dot)", format)), nil
	}
}

func (s *Server) handleUnsafe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	file, _ := args["file"].(string)
	if file == "" {
		return mcp.NewToolResultError("file parameter is required"), nil
	}

	result, err := analysis.AnalyzeFile(file, analysis.Options{DebugWriter: io.Discard})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	g := result.Graph
	count := 0
	for i := 0; i < g.NodeCount(); i++ {
		node := g.Node(cpg.NodeID(i))
		// Call sites only; shadow annotation nodes carry no line and
		// no inbound Contains edge.
		if node.Kind != cpg.UnsafeCall || !hasInboundContains(g, cpg.NodeID(i)) {
			continue
		}
		count++
		name := strings.TrimPrefix(node.Name, "Unsafe: ")
		caller := enclosingFunction(g, cpg.NodeID(i))
		if node.Line > 0 {
			fmt.Fprintf(&sb, "%s:%d: %s in %s\n", file, node.Line, name, caller)
		} else {
			fmt.Fprintf(&sb, "%s: %s in %s\n", file, name, caller)
		}
	}

	if count == 0 {
		return mcp.NewToolResultText("no unsafe calls found"), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// hasInboundContains reports whether any node contains the given one.
func hasInboundContains(g *cpg.Graph, id cpg.NodeID) bool {
	for _, edge := range g.Edges() {
		if edge.Kind == cpg.Contains && edge.To == id {
			return true
		}
	}
	return false
}

// enclosingFunction walks Contains edges backward to the Function or
// Main node enclosing a call site.
func enclosingFunction(g *cpg.Graph, id cpg.NodeID) string {
	current := id
	for depth := 0; depth < 64; depth++ {
		found := false
		for _, edge := range g.Edges() {
			if edge.Kind != cpg.Contains || edge.To != current {
				continue
			}
			parent := g.Node(edge.From)
			if parent.Kind == cpg.Function || parent.Kind == cpg.Main {
				return parent.Name
			}
			current = edge.From
			found = true
			break
		}
		if !found {
			break
		}
	}
	return "?"
}
