package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teranos/gong-mcp/errors"
	"github.com/teranos/gong-mcp/jobs"
)

// handleAnalyzeCalls handles analyze_calls tool calls. Small corpora come
// back inline as transcripts for the caller to analyze; large ones start a
// background job and return its id.
func (s *MCPServer) handleAnalyzeCalls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.gong.CheckCredentials(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// The async path summarizes batches through Anthropic, so fail before
	// dispatch rather than inside a job that cannot succeed
	if err := s.anthropic.CheckCredentials(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fromISO, toISO, _, _ := dateRange(
		request.GetString("from_date", ""),
		request.GetString("to_date", ""),
		7,
	)

	req := jobs.Request{
		Prompt:   prompt,
		CallIDs:  request.GetStringSlice("call_ids", nil),
		Emails:   request.GetStringSlice("emails", nil),
		Domains:  request.GetStringSlice("domains", nil),
		FromDate: fromISO,
		ToDate:   toISO,
	}

	result, err := s.dispatcher.Analyze(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	return jsonResult(result)
}

// handleGetJobStatus handles get_job_status tool calls
func (s *MCPServer) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireString("job_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	job, err := s.store.Get(jobID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get job: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"job":              job,
		"progress_percent": job.Progress.Percentage(),
	})
}

// handleGetJobResults handles get_job_results tool calls
func (s *MCPServer) handleGetJobResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireString("job_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.store.LoadResults(jobID)
	if err != nil {
		if errors.Is(err, errors.ErrNotReady) {
			return mcp.NewToolResultError(fmt.Sprintf("Job not ready: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load results: %v", err)), nil
	}

	return jsonResult(results)
}

// handleListJobs handles list_jobs tool calls
func (s *MCPServer) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var statusFilter *jobs.Status
	if raw := request.GetString("status", ""); raw != "" {
		if !jobs.IsValidStatus(raw) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid status %q: must be pending, running, complete, or error", raw)), nil
		}
		status := jobs.Status(raw)
		statusFilter = &status
	}

	limit := request.GetInt("limit", 0)

	list, err := s.store.List(statusFilter, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list jobs: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"total_jobs": len(list),
		"jobs":       list,
	})
}
