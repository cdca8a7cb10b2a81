package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/db"
	"github.com/teranos/gong-mcp/logger"
	"github.com/teranos/gong-mcp/server"
)

// ServeCmd starts the MCP server on stdio
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the Gong MCP server, speaking Model Context Protocol over
stdin/stdout. Logs go to stderr so they never corrupt the protocol stream.

Credentials come from the environment or config file:
  GONG_ACCESS_KEY          Gong API access key
  GONG_ACCESS_KEY_SECRET   Gong API access key secret
  ANTHROPIC_API_KEY        Anthropic API key (required for background analysis)

Example MCP client config:
  {"command": "gong-mcp", "args": ["serve"]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Initialize(cfg.Server.LogJSON); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Cleanup()

	database, err := db.Open(cfg.Jobs.DBPath, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to open jobs database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database, logger.Logger); err != nil {
		return fmt.Errorf("failed to migrate jobs database: %w", err)
	}

	mcpServer := server.NewMCPServer(cfg, database)

	// Pick up config file edits without a restart. The analysis routing
	// threshold changes live; credentials and client wiring need a restart.
	if configPath := config.ProjectConfigPath(); configPath != "" {
		watcher, err := config.NewWatcher(configPath)
		if err != nil {
			logger.Warnw("Config watcher unavailable", "error", err, "path", configPath)
		} else {
			watcher.OnReload(func(newCfg *config.Config) error {
				mcpServer.ApplyConfig(newCfg)
				logger.Infow("Configuration reloaded",
					"config", newCfg.String(),
					"direct_token_limit_k", newCfg.DirectTokenLimitK())
				return nil
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	logger.Infow("Starting Gong MCP server",
		"db_path", cfg.Jobs.DBPath,
		"results_dir", cfg.Jobs.ResultsDir,
		"gong_configured", cfg.HasGongCredentials(),
		"anthropic_configured", cfg.HasAnthropicKey())

	if err := mcpServer.Serve(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	// Let in-flight analysis jobs persist their terminal state
	mcpServer.Shutdown()
	return nil
}
