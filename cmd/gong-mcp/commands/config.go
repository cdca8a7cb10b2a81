package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/gong-mcp/config"
)

// ConfigCmd groups configuration commands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gong-mcp configuration",
	Long: `Display gong-mcp configuration.

Configuration sources (in order of precedence):
1. Environment variables (GONG_MCP_* prefix, plus credential variables)
2. Project config (gong-mcp.toml, searched upward from the working directory)
3. User config (~/.gong-mcp/config.toml)
4. Default values

Examples:
  gong-mcp config show     # Show current configuration
  gong-mcp config path     # Show which project config file is in use`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the merged configuration from all sources. Secrets are elided.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		fmt.Println(cfg.String())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the project config file in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath()
		if path == "" {
			fmt.Println("No project config file found (using defaults and environment)")
			return nil
		}

		fmt.Println(path)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configPathCmd)
}
