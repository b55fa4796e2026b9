// Package cmd contains all CLI commands for cpg.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cpg/internal/analysis"
	"github.com/hargabyte/cpg/internal/classify"
	"github.com/hargabyte/cpg/internal/config"
	"github.com/hargabyte/cpg/internal/frontend"
	"github.com/hargabyte/cpg/internal/render"
	"github.com/hargabyte/cpg/internal/store"
)

// Version is the current version of cpg.
var Version = "0.1.0"

var (
	outputPath     string
	outputFormat   string
	debug          bool
	memoryTracking bool
	dbPath         string
	configPath     string
)

// rootCmd is the base command; it performs the analysis itself.
var rootCmd = &cobra.Command{
	Use:   "cpg <input.c>",
	Short: "Build a property graph from a C translation unit",
	Long: `cpg ingests a single C source file and emits a typed, attributed
property graph modeling the program's static structure: function
definitions, parameters, variables, control flow, function calls,
memory operations, pointer relations, and data-flow uses.

The graph highlights potentially unsafe constructs (calls to strcpy,
gets, ...) and, with --memory-tracking, pairs allocations with the
variables that own them and frees with the pointers they release.

Output is a Graphviz DOT document by default, or a node-link JSON
document suitable for visualization front-ends with -f json. The
--db flag additionally writes the graph to a SQLite database for SQL
querying.

Examples:
  cpg input.c                        # DOT to stdout
  cpg input.c -f json -o graph.json  # JSON to a file
  cpg input.c --memory-tracking -d   # trace analysis to stderr
  cpg input.c --db graph.db          # also export to SQLite`,
	Args:          cobra.ExactArgs(1),
	RunE:          runAnalyze,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: stdout)")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format (dot|json)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "Verbose trace to stderr")
	rootCmd.Flags().BoolVar(&memoryTracking, "memory-tracking", false, "Enable MemoryOp promotion for allocators and free")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Also export the graph to a SQLite database at this path")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .cpg/config.yaml)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.Format
	}
	if format != "dot" && format != "json" {
		return fmt.Errorf("unknown format %q (want dot or json)", format)
	}

	unsafe := classify.UnsafeFunctions()
	for _, name := range cfg.Analysis.UnsafeFunctions {
		unsafe[name] = true
	}

	result, err := analysis.AnalyzeFile(input, analysis.Options{
		Debug:           debug,
		MemoryTracking:  memoryTracking || cfg.Analysis.MemoryTracking,
		UnsafeFunctions: unsafe,
		Parse: frontend.Options{
			Standard:              cfg.Parse.Standard,
			IncludeRoots:          cfg.Parse.IncludeRoots,
			WarnAll:               true,
			DetailedPreprocessing: true,
			KeepBodies:            true,
		},
	})
	if err != nil {
		return err
	}

	var output []byte
	switch format {
	case "dot":
		output = []byte(render.DOT(result.Graph))
	case "json":
		output, err = render.JSON(result.Graph)
		if err != nil {
			return fmt.Errorf("rendering JSON: %w", err)
		}
	}

	if err := writeOutput(output); err != nil {
		return err
	}

	if dbPath != "" {
		if err := store.Export(result.Graph, dbPath); err != nil {
			return fmt.Errorf("exporting graph to %s: %w", dbPath, err)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func writeOutput(data []byte) error {
	if outputPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing output %s: %w", outputPath, err)
	}
	return nil
}
