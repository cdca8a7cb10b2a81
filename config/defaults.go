package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Gong API defaults
	v.SetDefault("gong.base_url", "https://api.gong.io")

	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.requests_per_minute", 50)

	// Analysis routing defaults
	v.SetDefault("analysis.direct_token_limit_k", "40")
	v.SetDefault("analysis.batch_token_limit", DefaultBatchTokenLimit)
	v.SetDefault("analysis.prompt_overhead_tokens", DefaultPromptOverheadTokens)
	v.SetDefault("analysis.seconds_per_batch", DefaultSecondsPerBatch)
	v.SetDefault("analysis.max_retries", DefaultMaxRetries)

	// Job store defaults
	v.SetDefault("jobs.db_path", "gong-mcp.db")
	v.SetDefault("jobs.results_dir", "results")

	// Server defaults
	v.SetDefault("server.log_json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("gong.access_key", "GONG_ACCESS_KEY")
	v.BindEnv("gong.secret", "GONG_ACCESS_KEY_SECRET")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	// Job store path override for dev mode
	v.BindEnv("jobs.db_path", "GONG_MCP_DB_PATH")
}
