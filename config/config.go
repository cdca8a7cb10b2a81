package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the core gong-mcp configuration
type Config struct {
	Gong      GongConfig      `mapstructure:"gong"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Server    ServerConfig    `mapstructure:"server"`
}

// GongConfig configures access to the Gong REST API
type GongConfig struct {
	AccessKey string `mapstructure:"access_key"` // Gong API access key
	Secret    string `mapstructure:"secret"`     // Gong API access key secret
	BaseURL   string `mapstructure:"base_url"`   // API base URL (default: https://api.gong.io)
}

// AnthropicConfig configures the Anthropic Messages API used for summarization
type AnthropicConfig struct {
	APIKey            string `mapstructure:"api_key"`             // Anthropic API key
	Model             string `mapstructure:"model"`               // Model identifier (default: claude-sonnet-4-20250514)
	MaxTokens         int    `mapstructure:"max_tokens"`          // Max output tokens per request
	RequestsPerMinute int    `mapstructure:"requests_per_minute"` // Client-side request pacing (0 = unlimited)
}

// AnalysisConfig configures the routing and batching behavior of call analysis
type AnalysisConfig struct {
	DirectTokenLimitK    string `mapstructure:"direct_token_limit_k"`   // Direct-mode threshold in thousands of tokens; <= 0 always routes direct
	BatchTokenLimit      int    `mapstructure:"batch_token_limit"`      // Token budget per batch request
	PromptOverheadTokens int    `mapstructure:"prompt_overhead_tokens"` // Tokens reserved for the prompt scaffold per batch
	SecondsPerBatch      int    `mapstructure:"seconds_per_batch"`      // Wall-clock estimate per batch for ETA reporting
	MaxRetries           int    `mapstructure:"max_retries"`            // Retry attempts per batch on rate limiting
}

// JobsConfig configures the async analysis job store
type JobsConfig struct {
	DBPath     string `mapstructure:"db_path"`     // SQLite database path
	ResultsDir string `mapstructure:"results_dir"` // Directory for completed result payloads
}

// ServerConfig configures the MCP server process
type ServerConfig struct {
	LogJSON bool `mapstructure:"log_json"` // Emit structured JSON logs instead of console output
}

// Analysis tuning constants. These match the documented behavior of the
// Gong analysis pipeline and are used when config values are absent or invalid.
const (
	DefaultDirectTokenLimitK    = 40
	DefaultBatchTokenLimit      = 24000
	DefaultPromptOverheadTokens = 3500
	DefaultSecondsPerBatch      = 65
	DefaultMaxRetries           = 3
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// HasGongCredentials reports whether both halves of the Gong API key pair are set
func (c *Config) HasGongCredentials() bool {
	return c.Gong.AccessKey != "" && c.Gong.Secret != ""
}

// HasAnthropicKey reports whether the Anthropic API key is configured
func (c *Config) HasAnthropicKey() bool {
	return c.Anthropic.APIKey != ""
}

// DirectTokenLimitK returns the direct-mode routing threshold in thousands of
// tokens. Malformed values fall back to the default; zero and negative values
// are preserved because they carry meaning (always route direct).
func (c *Config) DirectTokenLimitK() int {
	raw := strings.TrimSpace(c.Analysis.DirectTokenLimitK)
	if raw == "" {
		return DefaultDirectTokenLimitK
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultDirectTokenLimitK
	}
	return n
}

// BatchTokenLimit returns the per-batch token budget with defaults applied
func (c *Config) BatchTokenLimit() int {
	if c.Analysis.BatchTokenLimit <= 0 {
		return DefaultBatchTokenLimit
	}
	return c.Analysis.BatchTokenLimit
}

// PromptOverheadTokens returns the prompt scaffold reservation with defaults applied
func (c *Config) PromptOverheadTokens() int {
	if c.Analysis.PromptOverheadTokens <= 0 {
		return DefaultPromptOverheadTokens
	}
	return c.Analysis.PromptOverheadTokens
}

// SecondsPerBatch returns the per-batch duration estimate with defaults applied
func (c *Config) SecondsPerBatch() int {
	if c.Analysis.SecondsPerBatch <= 0 {
		return DefaultSecondsPerBatch
	}
	return c.Analysis.SecondsPerBatch
}

// MaxRetries returns the per-batch retry budget with defaults applied
func (c *Config) MaxRetries() int {
	if c.Analysis.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return c.Analysis.MaxRetries
}

// String returns a string representation of the config with secrets elided
func (c *Config) String() string {
	return fmt.Sprintf("Config{Gong: {BaseURL: %s, Credentials: %t}, Anthropic: {Model: %s, Key: %t}, Jobs: {DBPath: %s}}",
		c.Gong.BaseURL, c.HasGongCredentials(), c.Anthropic.Model, c.HasAnthropicKey(), c.Jobs.DBPath)
}
