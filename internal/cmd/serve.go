package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hargabyte/cpg/internal/mcp"
)

// serveCmd starts the MCP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets AI agents analyze C source files and read the resulting
property graphs through MCP tools instead of spawning CLI commands.

Available Tools:
  cpg_analyze   Analyze a file, return the graph as JSON or DOT
  cpg_unsafe    List unsafe calls with their enclosing functions

Examples:
  cpg serve     # stdio transport, blocks until the client disconnects`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	return mcp.New(Version).ServeStdio()
}
