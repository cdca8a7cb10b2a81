package server

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gong-mcp/config"
	qtesting "github.com/teranos/gong-mcp/internal/testing"
	"github.com/teranos/gong-mcp/jobs"
)

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Jobs.ResultsDir = t.TempDir()

	return NewMCPServer(cfg, qtesting.CreateTestDB(t))
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestDateRangeDefaults(t *testing.T) {
	fromISO, toISO, from, to := dateRange("", "", 7)

	assert.True(t, strings.HasSuffix(fromISO, "T00:00:00Z"))
	assert.True(t, strings.HasSuffix(toISO, "T23:59:59Z"))
	assert.NotEmpty(t, from)
	assert.NotEmpty(t, to)
}

func TestDateRangeExplicit(t *testing.T) {
	fromISO, toISO, from, to := dateRange("2026-08-01", "2026-08-15", 7)

	assert.Equal(t, "2026-08-01T00:00:00Z", fromISO)
	assert.Equal(t, "2026-08-15T23:59:59Z", toISO)
	assert.Equal(t, "2026-08-01", from)
	assert.Equal(t, "2026-08-15", to)
}

func TestHandleGetJobStatus(t *testing.T) {
	s := newTestServer(t)

	job, err := s.store.Create(jobs.Request{Prompt: "find risks", EstimatedBatches: 3})
	require.NoError(t, err)

	result, err := s.handleGetJobStatus(context.Background(), callRequest(map[string]interface{}{
		"job_id": job.ID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, job.ID)
	assert.Contains(t, text, "pending")
}

func TestHandleGetJobStatusUnknownID(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetJobStatus(context.Background(), callRequest(map[string]interface{}{
		"job_id": "job_missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetJobResultsNotReady(t *testing.T) {
	s := newTestServer(t)

	job, err := s.store.Create(jobs.Request{Prompt: "find risks", EstimatedBatches: 4})
	require.NoError(t, err)

	result, err := s.handleGetJobResults(context.Background(), callRequest(map[string]interface{}{
		"job_id": job.ID,
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not ready")
}

func TestHandleGetJobResultsComplete(t *testing.T) {
	s := newTestServer(t)

	job, err := s.store.Create(jobs.Request{Prompt: "find risks", EstimatedBatches: 1})
	require.NoError(t, err)
	require.NoError(t, s.store.Complete(job.ID, &jobs.Results{
		JobID:        job.ID,
		TotalBatches: 1,
		BatchResults: []jobs.BatchResult{{BatchNum: 1, Analysis: "all clear"}},
	}))

	result, err := s.handleGetJobResults(context.Background(), callRequest(map[string]interface{}{
		"job_id": job.ID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "all clear")
}

func TestHandleListJobs(t *testing.T) {
	s := newTestServer(t)

	_, err := s.store.Create(jobs.Request{Prompt: "a", EstimatedBatches: 1})
	require.NoError(t, err)
	_, err = s.store.Create(jobs.Request{Prompt: "b", EstimatedBatches: 1})
	require.NoError(t, err)

	result, err := s.handleListJobs(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"total_jobs": 2`)
}

func TestHandleListJobsInvalidStatus(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListJobs(context.Background(), callRequest(map[string]interface{}{
		"status": "done",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleAnalyzeCallsRequiresCredentials(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAnalyzeCalls(context.Background(), callRequest(map[string]interface{}{
		"prompt": "summarize everything",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "GONG_ACCESS_KEY")
}

func TestHandleGetTranscriptRequiresCallID(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetTranscript(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleListCallsRequiresCredentials(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListCalls(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
