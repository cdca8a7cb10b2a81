package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/errors"
	"github.com/teranos/gong-mcp/internal/httpclient"
)

const (
	// DefaultModel is the default Claude model
	DefaultModel = "claude-sonnet-4-20250514"

	// BaseURL is the Anthropic API endpoint
	BaseURL = "https://api.anthropic.com/v1"

	// APIVersion is the required Anthropic API version header
	APIVersion = "2023-06-01"

	// DefaultMaxTokens is the default output token budget per request
	DefaultMaxTokens = 16000

	// defaultRetryAfter is assumed when a 429 response has no Retry-After header
	defaultRetryAfter = 60 * time.Second
)

// Client represents an Anthropic Messages API client with client-side
// request pacing
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an Anthropic API client from configuration
func NewClient(cfg *config.Config) *Client {
	model := cfg.Anthropic.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.Anthropic.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if rpm := cfg.Anthropic.RequestsPerMinute; rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(rpm)/60, 1)
	}

	saferClient := httpclient.NewSaferClient(180 * time.Second)

	return &Client{
		apiKey:     cfg.Anthropic.APIKey,
		baseURL:    BaseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: saferClient.Client,
		limiter:    limiter,
	}
}

// MessagesRequest represents a request to the Anthropic Messages API
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
}

// Message represents a message in the conversation
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// MessagesResponse represents the response from the Messages API
type MessagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// ContentBlock represents a content block in the response
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage represents token usage information
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Completion is the text result of a single Messages API call with its
// usage and computed cost
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// CheckCredentials returns a clear error when the API key is missing
func (c *Client) CheckCredentials() error {
	if c.apiKey != "" {
		return nil
	}

	err := errors.New("Anthropic API key not configured: ANTHROPIC_API_KEY must be set")
	return errors.WithHint(err, "add it to your MCP client config or environment")
}

// Complete sends a single-turn user prompt and returns the text response.
// Rate limiting (429) and overload (529) responses map to ErrRateLimited;
// a 429 carries the upstream Retry-After hint when present.
func (c *Client) Complete(ctx context.Context, prompt string) (*Completion, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait interrupted")
	}

	req := MessagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
	}

	resp, err := c.createMessages(ctx, req)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Completion{
		Text:         strings.TrimSpace(text.String()),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Cost:         CalculateCost(c.model, resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}, nil
}

// createMessages sends a request to the Anthropic Messages API and maps
// HTTP status codes to the error taxonomy
func (c *Client) createMessages(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", APIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.NewRateLimitedError(parseRetryAfter(resp.Header), "Anthropic API rate limited")
	case resp.StatusCode == 529:
		// Overloaded; no retry hint, callers back off on their own schedule
		return nil, errors.NewRateLimitedError(0, "Anthropic API overloaded")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Newf("Anthropic API authentication failed with status %d: check ANTHROPIC_API_KEY", resp.StatusCode)
	default:
		return nil, errors.Wrapf(errors.ErrUnavailable, "Anthropic API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(respBody, &messagesResp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	return &messagesResp, nil
}

// parseRetryAfter reads the Retry-After header in seconds, falling back
// to a conservative default when absent or malformed
func parseRetryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return defaultRetryAfter
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}

	return time.Duration(seconds) * time.Second
}

// SetHTTPClient allows overriding the HTTP client for testing
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetBaseURL allows overriding the API endpoint for testing
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}
