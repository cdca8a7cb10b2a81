package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teranos/gong-mcp/gong"
)

// callSummary is the tool-facing view of one call
type callSummary struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Date         string            `json:"date"`
	Duration     string            `json:"duration"`
	URL          string            `json:"url,omitempty"`
	Participants gong.Participants `json:"participants"`
}

func summarizeCall(call *gong.Call) callSummary {
	return callSummary{
		ID:           call.ID(),
		Title:        call.MetaData.Title,
		Date:         gong.FormatISODate(call.MetaData.Started),
		Duration:     gong.FormatDuration(call.MetaData.Duration),
		URL:          call.MetaData.URL,
		Participants: gong.ExtractParticipants(call),
	}
}

func summarizeCalls(calls []gong.Call) []callSummary {
	summaries := make([]callSummary, 0, len(calls))
	for i := range calls {
		summaries = append(summaries, summarizeCall(&calls[i]))
	}
	return summaries
}

// handleListCalls handles list_calls tool calls
func (s *MCPServer) handleListCalls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.gong.CheckCredentials(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fromISO, toISO, fromDate, toDate := dateRange(
		request.GetString("from_date", ""),
		request.GetString("to_date", ""),
		7,
	)

	calls, err := s.gong.GetAllCalls(ctx, fromISO, toISO)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list calls: %v", err)), nil
	}

	total := len(calls)
	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(calls) {
		calls = calls[:limit]
	}

	return jsonResult(map[string]interface{}{
		"from_date":   fromDate,
		"to_date":     toDate,
		"total_calls": total,
		"calls":       summarizeCalls(calls),
	})
}

// handleGetTranscript handles get_transcript tool calls
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callID, err := request.RequireString("call_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.gong.CheckCredentials(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	call, err := s.gong.GetCall(ctx, callID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch call: %v", err)), nil
	}

	transcript, err := s.gong.GetCallTranscript(ctx, callID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch transcript: %v", err)), nil
	}

	if request.GetString("format", "text") == "json" {
		return jsonResult(gong.BuildTranscriptDocument(call, transcript))
	}

	includeTimestamps := request.GetBool("include_timestamps", true)
	return mcp.NewToolResultText(gong.BuildTranscriptText(call, transcript, includeTimestamps)), nil
}

// handleSearchCalls handles search_calls tool calls
func (s *MCPServer) handleSearchCalls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.gong.CheckCredentials(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := request.GetString("query", "")
	emails := request.GetStringSlice("emails", nil)
	domains := request.GetStringSlice("domains", nil)

	fromISO, toISO, fromDate, toDate := dateRange(
		request.GetString("from_date", ""),
		request.GetString("to_date", ""),
		30,
	)

	calls, err := s.gong.GetAllCalls(ctx, fromISO, toISO)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search calls: %v", err)), nil
	}

	var matchedEmails []string
	if len(emails) > 0 || len(domains) > 0 {
		calls, matchedEmails = gong.FilterCallsByEmails(calls, emails, domains)
	}

	if query != "" {
		needle := strings.ToLower(query)
		var kept []gong.Call
		for _, call := range calls {
			if strings.Contains(strings.ToLower(call.MetaData.Title), needle) {
				kept = append(kept, call)
			}
		}
		calls = kept
	}

	return jsonResult(map[string]interface{}{
		"query":          query,
		"from_date":      fromDate,
		"to_date":        toDate,
		"matched_emails": matchedEmails,
		"total_calls":    len(calls),
		"calls":          summarizeCalls(calls),
	})
}

// handleGetCallParticipants handles get_call_participants tool calls
func (s *MCPServer) handleGetCallParticipants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callIDs := request.GetStringSlice("call_ids", nil)
	if len(callIDs) == 0 {
		return mcp.NewToolResultError("call_ids is required and must not be empty"), nil
	}

	if err := s.gong.CheckCredentials(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calls, err := s.gong.GetCalls(ctx, callIDs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch calls: %v", err)), nil
	}

	type callParticipants struct {
		CallID       string            `json:"call_id"`
		Title        string            `json:"title"`
		Participants gong.Participants `json:"participants"`
	}

	results := make([]callParticipants, 0, len(calls))
	for i := range calls {
		results = append(results, callParticipants{
			CallID:       calls[i].ID(),
			Title:        calls[i].MetaData.Title,
			Participants: gong.ExtractParticipants(&calls[i]),
		})
	}

	return jsonResult(map[string]interface{}{
		"total_calls": len(results),
		"calls":       results,
	})
}
