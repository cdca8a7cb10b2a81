package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/gong-mcp/config"
)

func TestDecideDirectUnderThreshold(t *testing.T) {
	// Threshold 150K, corpus of 3 transcripts totaling 50K tokens
	policy := RoutingPolicy{ThresholdTokens: 150_000}

	decision := policy.Decide(3, 50_000)

	assert.Equal(t, ModeDirect, decision.Mode)
	assert.Equal(t, 3, decision.CallCount)
	assert.Equal(t, 50_000, decision.EstimatedTokens)
	assert.Equal(t, 150_000, decision.ThresholdTokens)
	assert.Zero(t, decision.EstimatedBatches)
}

func TestDecideAsyncBatchEstimate(t *testing.T) {
	// 600K tokens over a 100K-per-batch budget => 6 batches
	policy := RoutingPolicy{
		ThresholdTokens: 150_000,
		BatchBudget:     100_000,
		SecondsPerBatch: 65,
	}

	decision := policy.Decide(40, 600_000)

	assert.Equal(t, ModeAsync, decision.Mode)
	assert.Equal(t, 6, decision.EstimatedBatches)
	assert.Equal(t, 6*65, decision.EstimatedSeconds)
	assert.Equal(t, 6, decision.EstimatedMinutes)
}

func TestDecideThresholdDisabledForcesDirect(t *testing.T) {
	// Routing disabled beats arbitrarily large corpora
	for _, threshold := range []int{0, -1, -1000} {
		policy := RoutingPolicy{ThresholdTokens: threshold}

		decision := policy.Decide(500, 2_000_000)

		assert.Equal(t, ModeDirect, decision.Mode, "threshold %d", threshold)
		assert.Zero(t, decision.ThresholdTokens)
	}
}

func TestDecideAtThresholdIsAsync(t *testing.T) {
	policy := RoutingPolicy{ThresholdTokens: 40_000}

	assert.Equal(t, ModeDirect, policy.Decide(1, 39_999).Mode)
	assert.Equal(t, ModeAsync, policy.Decide(1, 40_000).Mode)
}

func TestDecideAsyncAlwaysAtLeastOneBatch(t *testing.T) {
	policy := RoutingPolicy{ThresholdTokens: 1, BatchBudget: 24_000}

	decision := policy.Decide(1, 5)
	assert.Equal(t, ModeAsync, decision.Mode)
	assert.Equal(t, 1, decision.EstimatedBatches)
	assert.Equal(t, 1, decision.EstimatedMinutes)
}

func TestNewRoutingPolicyFromConfig(t *testing.T) {
	cfg := &config.Config{
		Analysis: config.AnalysisConfig{DirectTokenLimitK: "150"},
	}

	policy := NewRoutingPolicy(cfg)
	assert.Equal(t, 150_000, policy.ThresholdTokens)
	assert.Equal(t, config.DefaultBatchTokenLimit, policy.BatchBudget)
	assert.Equal(t, config.DefaultSecondsPerBatch, policy.SecondsPerBatch)
}

func TestNewRoutingPolicyMalformedThresholdFallsBack(t *testing.T) {
	cfg := &config.Config{
		Analysis: config.AnalysisConfig{DirectTokenLimitK: "lots"},
	}

	policy := NewRoutingPolicy(cfg)
	assert.Equal(t, config.DefaultDirectTokenLimitK*1000, policy.ThresholdTokens)
}
