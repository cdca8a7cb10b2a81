package gong

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/errors"
	"github.com/teranos/gong-mcp/internal/httpclient"
)

const (
	// DefaultBaseURL is the Gong API endpoint
	DefaultBaseURL = "https://api.gong.io"

	// pageSize is the number of calls requested per page
	pageSize = 100

	// defaultMaxPages bounds pagination so a misbehaving cursor cannot
	// loop forever
	defaultMaxPages = 20
)

// Client is a client for the Gong API v2. Authentication is HTTP basic
// auth with the access key as username and the secret as password.
type Client struct {
	accessKey  string
	secret     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gong API client from configuration
func NewClient(cfg *config.Config) *Client {
	baseURL := cfg.Gong.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	saferClient := httpclient.NewSaferClient(60 * time.Second)

	return &Client{
		accessKey:  cfg.Gong.AccessKey,
		secret:     cfg.Gong.Secret,
		baseURL:    baseURL,
		httpClient: saferClient.Client,
	}
}

// CheckCredentials returns a ConfigError naming the missing credential
// halves, or nil when both are present. Tool handlers call this before
// touching the API so callers get a clear message instead of a 401.
func (c *Client) CheckCredentials() error {
	if c.accessKey != "" && c.secret != "" {
		return nil
	}

	var missing []string
	if c.accessKey == "" {
		missing = append(missing, "GONG_ACCESS_KEY")
	}
	if c.secret == "" {
		missing = append(missing, "GONG_ACCESS_KEY_SECRET")
	}

	err := errors.Newf("Gong API credentials not configured: %v must be set", missing)
	return errors.WithHint(err, "add them to your MCP client config or environment")
}

type callsRequest struct {
	Filter          callsFilter     `json:"filter"`
	ContentSelector contentSelector `json:"contentSelector,omitempty"`
	Limit           int             `json:"limit,omitempty"`
	Cursor          string          `json:"cursor,omitempty"`
}

type callsFilter struct {
	FromDateTime string   `json:"fromDateTime,omitempty"`
	ToDateTime   string   `json:"toDateTime,omitempty"`
	CallIDs      []string `json:"callIds,omitempty"`
}

type contentSelector struct {
	ExposedFields exposedFields `json:"exposedFields"`
}

type exposedFields struct {
	Parties bool `json:"parties"`
}

type transcriptResponse struct {
	CallTranscripts []Transcript `json:"callTranscripts"`
	Records         Records      `json:"records"`
}

// SearchCalls fetches one page of calls in the date range. Dates are
// ISO 8601 strings. Pass the cursor from the previous page to continue.
func (c *Client) SearchCalls(ctx context.Context, fromDate, toDate, cursor string) (*CallsPage, error) {
	req := callsRequest{
		Filter: callsFilter{
			FromDateTime: fromDate,
			ToDateTime:   toDate,
		},
		ContentSelector: contentSelector{
			ExposedFields: exposedFields{Parties: true},
		},
		Limit:  pageSize,
		Cursor: cursor,
	}

	var page CallsPage
	if err := c.post(ctx, "/v2/calls/extensive", req, &page); err != nil {
		return nil, errors.Wrap(err, "failed to search calls")
	}

	return &page, nil
}

// GetAllCalls fetches every call in the date range, following pagination
// cursors up to defaultMaxPages. Results are sorted most recent first.
func (c *Client) GetAllCalls(ctx context.Context, fromDate, toDate string) ([]Call, error) {
	var allCalls []Call
	cursor := ""

	for page := 0; page < defaultMaxPages; page++ {
		resp, err := c.SearchCalls(ctx, fromDate, toDate, cursor)
		if err != nil {
			return nil, err
		}

		if len(resp.Calls) == 0 {
			break
		}

		allCalls = append(allCalls, resp.Calls...)

		cursor = resp.Records.Cursor
		if cursor == "" || resp.Records.CurrentPageSize == 0 {
			break
		}
	}

	sort.Slice(allCalls, func(i, j int) bool {
		return allCalls[i].MetaData.Started > allCalls[j].MetaData.Started
	})

	return allCalls, nil
}

// GetCalls fetches metadata for specific calls by id
func (c *Client) GetCalls(ctx context.Context, callIDs []string) ([]Call, error) {
	req := callsRequest{
		Filter: callsFilter{CallIDs: callIDs},
		ContentSelector: contentSelector{
			ExposedFields: exposedFields{Parties: true},
		},
	}

	var page CallsPage
	if err := c.post(ctx, "/v2/calls/extensive", req, &page); err != nil {
		return nil, errors.Wrap(err, "failed to fetch calls")
	}

	return page.Calls, nil
}

// GetCall fetches metadata for a single call.
// Returns ErrNotFound when the call does not exist.
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	calls, err := c.GetCalls(ctx, []string{callID})
	if err != nil {
		return nil, err
	}

	if len(calls) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "call %s not found", callID)
	}

	return &calls[0], nil
}

// GetCallTranscript fetches the transcript for a single call.
// Returns ErrNotFound when the call has no transcript.
func (c *Client) GetCallTranscript(ctx context.Context, callID string) (*Transcript, error) {
	transcripts, err := c.GetTranscripts(ctx, []string{callID})
	if err != nil {
		return nil, err
	}

	if len(transcripts) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no transcript found for call %s", callID)
	}

	return &transcripts[0], nil
}

// GetTranscripts fetches transcripts for multiple calls in one request
func (c *Client) GetTranscripts(ctx context.Context, callIDs []string) ([]Transcript, error) {
	req := callsRequest{
		Filter: callsFilter{CallIDs: callIDs},
	}

	var resp transcriptResponse
	if err := c.post(ctx, "/v2/calls/transcript", req, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to fetch transcripts")
	}

	return resp.CallTranscripts, nil
}

// SearchCallsByEmails fetches calls in the date range and filters them by
// participant emails or domains. The Gong API has no server-side email
// filter, so matching happens client-side against the parties list.
func (c *Client) SearchCallsByEmails(ctx context.Context, fromDate, toDate string, emails, domains []string) ([]Call, error) {
	allCalls, err := c.GetAllCalls(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	if len(emails) == 0 && len(domains) == 0 {
		return allCalls, nil
	}

	filtered, _ := FilterCallsByEmails(allCalls, emails, domains)
	return filtered, nil
}

// post sends a JSON request to the Gong API and decodes the response,
// mapping HTTP status codes to the error taxonomy.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.accessKey, c.secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(errors.ErrNotFound, "Gong API returned 404: %s", string(respBody))
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.Wrapf(errors.ErrRateLimited, "Gong API rate limited: %s", string(respBody))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Newf("Gong API authentication failed with status %d: check GONG_ACCESS_KEY and GONG_ACCESS_KEY_SECRET", resp.StatusCode)
	default:
		return errors.Wrapf(errors.ErrUnavailable, "Gong API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}

	return nil
}

// SetHTTPClient allows overriding the HTTP client for testing
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
