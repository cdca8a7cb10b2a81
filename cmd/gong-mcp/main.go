package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/gong-mcp/cmd/gong-mcp/commands"
	"github.com/teranos/gong-mcp/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gong-mcp",
	Short: "Gong call intelligence over Model Context Protocol",
	Long: `gong-mcp - Gong call intelligence MCP server.

Exposes Gong calls, transcripts, and participant data as MCP tools, with
an analysis pipeline that routes small datasets inline and runs large
ones as background jobs summarized through the Anthropic API.

Available commands:
  serve   - Start the MCP server on stdio
  jobs    - Inspect background analysis jobs
  config  - Show configuration
  version - Show version information

Examples:
  gong-mcp serve                  # Start the MCP server
  gong-mcp jobs ls                # List analysis jobs
  gong-mcp jobs show job_abc123   # Show one job
  gong-mcp config show            # Show merged configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// serve initializes the logger itself from config; the CLI
		// commands get a human-readable default
		if cmd.Name() != "serve" {
			if err := logger.Initialize(false); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.JobsCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
