package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/teranos/gong-mcp/anthropic"
	"github.com/teranos/gong-mcp/errors"
)

// AnthropicSummarizer implements Summarizer on the Anthropic Messages API
type AnthropicSummarizer struct {
	client *anthropic.Client
}

// NewAnthropicSummarizer wraps an Anthropic client as a batch summarizer
func NewAnthropicSummarizer(client *anthropic.Client) *AnthropicSummarizer {
	return &AnthropicSummarizer{client: client}
}

// Summarize sends the prompt and the batch's transcripts in one request
func (s *AnthropicSummarizer) Summarize(ctx context.Context, prompt string, batch Batch) (*Summary, error) {
	batchJSON, err := json.MarshalIndent(batch.Transcripts, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal batch")
	}

	fullPrompt := fmt.Sprintf("%s\n\nTranscripts to analyze:\n%s", prompt, string(batchJSON))

	completion, err := s.client.Complete(ctx, fullPrompt)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Text:         completion.Text,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
		Cost:         completion.Cost,
	}, nil
}
