package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectTokenLimitK(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"empty falls back to default", "", 40},
		{"explicit value", "150", 150},
		{"zero preserved", "0", 0},
		{"negative preserved", "-5", -5},
		{"malformed falls back to default", "forty", 40},
		{"whitespace trimmed", " 80 ", 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Analysis: AnalysisConfig{DirectTokenLimitK: tt.raw}}
			assert.Equal(t, tt.want, cfg.DirectTokenLimitK())
		})
	}
}

func TestAnalysisDefaultsAppliedForZeroValues(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, DefaultBatchTokenLimit, cfg.BatchTokenLimit())
	assert.Equal(t, DefaultPromptOverheadTokens, cfg.PromptOverheadTokens())
	assert.Equal(t, DefaultSecondsPerBatch, cfg.SecondsPerBatch())
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries())
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, "https://api.gong.io", v.GetString("gong.base_url"))
	assert.Equal(t, "40", v.GetString("analysis.direct_token_limit_k"))
	assert.Equal(t, DefaultBatchTokenLimit, v.GetInt("analysis.batch_token_limit"))
	assert.Equal(t, "gong-mcp.db", v.GetString("jobs.db_path"))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "gong-mcp.toml")

	content := `
[gong]
access_key = "test-key"
secret = "test-secret"

[anthropic]
api_key = "sk-test"
model = "claude-sonnet-4-20250514"

[analysis]
direct_token_limit_k = "150"
max_retries = 5
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.True(t, cfg.HasGongCredentials())
	assert.True(t, cfg.HasAnthropicKey())
	assert.Equal(t, 150, cfg.DirectTokenLimitK())
	assert.Equal(t, 5, cfg.MaxRetries())

	// Defaults still fill in unset sections
	assert.Equal(t, "https://api.gong.io", cfg.Gong.BaseURL)
	assert.Equal(t, DefaultBatchTokenLimit, cfg.BatchTokenLimit())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestStringElidesSecrets(t *testing.T) {
	cfg := &Config{
		Gong:      GongConfig{AccessKey: "ak", Secret: "very-secret", BaseURL: "https://api.gong.io"},
		Anthropic: AnthropicConfig{APIKey: "sk-secret", Model: "claude-sonnet-4-20250514"},
	}

	s := cfg.String()
	assert.NotContains(t, s, "very-secret")
	assert.NotContains(t, s, "sk-secret")
	assert.Contains(t, s, "https://api.gong.io")
}
