package analysis

import (
	"fmt"

	"github.com/teranos/gong-mcp/config"
)

// Mode is the routing outcome for an analysis request
type Mode string

const (
	// ModeDirect returns transcripts inline for the caller to analyze
	ModeDirect Mode = "direct"

	// ModeAsync starts a background job and returns a job id for polling
	ModeAsync Mode = "async"
)

// Decision is the routing outcome with the inputs that produced it.
// ThresholdTokens is captured because it is configuration-derived and
// can change between calls.
type Decision struct {
	Mode             Mode   `json:"mode"`
	CallCount        int    `json:"call_count"`
	EstimatedTokens  int    `json:"estimated_tokens"`
	ThresholdTokens  int    `json:"threshold_tokens"` // 0 = routing disabled
	EstimatedBatches int    `json:"estimated_batches,omitempty"`
	EstimatedSeconds int    `json:"estimated_seconds,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
	Reason           string `json:"reason"`
}

// RoutingPolicy decides whether an analysis request is answered inline
// or handed to a background job
type RoutingPolicy struct {
	// ThresholdTokens is the direct-mode cutoff. Values <= 0 disable
	// routing entirely and force direct mode for any corpus size.
	ThresholdTokens int

	// BatchBudget is the token budget per summarization batch, used for
	// the batch-count estimate
	BatchBudget int

	// SecondsPerBatch is the wall-clock estimate per batch, including
	// rate-limit pacing
	SecondsPerBatch int
}

// NewRoutingPolicy builds a routing policy from configuration. The
// threshold is configured in thousands of tokens; malformed values have
// already fallen back to the default at the config layer.
func NewRoutingPolicy(cfg *config.Config) RoutingPolicy {
	return RoutingPolicy{
		ThresholdTokens: cfg.DirectTokenLimitK() * 1000,
		BatchBudget:     cfg.BatchTokenLimit(),
		SecondsPerBatch: cfg.SecondsPerBatch(),
	}
}

// Decide routes a corpus of the given size. It never fails; defaults
// cover any unset tuning field.
func (p RoutingPolicy) Decide(callCount, totalTokens int) Decision {
	decision := Decision{
		CallCount:       callCount,
		EstimatedTokens: totalTokens,
	}

	if p.ThresholdTokens <= 0 {
		decision.Mode = ModeDirect
		decision.Reason = "direct mode forced (routing disabled)"
		return decision
	}

	decision.ThresholdTokens = p.ThresholdTokens

	if totalTokens < p.ThresholdTokens {
		decision.Mode = ModeDirect
		decision.Reason = fmt.Sprintf("tokens (%d) under threshold (%d)", totalTokens, p.ThresholdTokens)
		return decision
	}

	budget := p.BatchBudget
	if budget <= 0 {
		budget = config.DefaultBatchTokenLimit
	}
	secondsPerBatch := p.SecondsPerBatch
	if secondsPerBatch <= 0 {
		secondsPerBatch = config.DefaultSecondsPerBatch
	}

	batches := (totalTokens + budget - 1) / budget
	if batches < 1 {
		batches = 1
	}
	seconds := batches * secondsPerBatch
	minutes := seconds / 60
	if minutes < 1 {
		minutes = 1
	}

	decision.Mode = ModeAsync
	decision.EstimatedBatches = batches
	decision.EstimatedSeconds = seconds
	decision.EstimatedMinutes = minutes
	decision.Reason = fmt.Sprintf("tokens (%d) exceed threshold (%d)", totalTokens, p.ThresholdTokens)
	return decision
}
