// Package server exposes Gong call intelligence over the Model Context
// Protocol. Tools cover call listing, transcripts, participants, and the
// analysis pipeline with its background jobs.
package server

import (
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/teranos/gong-mcp/analysis"
	"github.com/teranos/gong-mcp/anthropic"
	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/gong"
	"github.com/teranos/gong-mcp/jobs"
)

const serverVersion = "1.0.0"

// MCPServer wraps the Gong and Anthropic clients and exposes them via
// Model Context Protocol over stdio
type MCPServer struct {
	cfg        *config.Config
	gong       *gong.Client
	anthropic  *anthropic.Client
	store      *jobs.Store
	dispatcher *analysis.Dispatcher
	server     *server.MCPServer
}

// NewMCPServer wires the full tool surface from configuration and an
// open jobs database
func NewMCPServer(cfg *config.Config, database *sql.DB) *MCPServer {
	gongClient := gong.NewClient(cfg)
	anthropicClient := anthropic.NewClient(cfg)
	store := jobs.NewStore(database, cfg.Jobs.ResultsDir)
	dispatcher := analysis.NewDispatcher(cfg, store,
		NewGongResolver(gongClient),
		analysis.NewAnthropicSummarizer(anthropicClient))

	s := &MCPServer{
		cfg:        cfg,
		gong:       gongClient,
		anthropic:  anthropicClient,
		store:      store,
		dispatcher: dispatcher,
	}

	s.server = server.NewMCPServer(
		"gong-mcp",
		serverVersion,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// registerTools registers all MCP tools for Gong operations
func (s *MCPServer) registerTools() {
	listCallsTool := mcp.NewTool("list_calls",
		mcp.WithDescription("List Gong calls in a date range with titles, durations, and participants"),
		mcp.WithString("from_date",
			mcp.Description("Start date in YYYY-MM-DD format (default: 7 days ago)"),
		),
		mcp.WithString("to_date",
			mcp.Description("End date in YYYY-MM-DD format (default: today)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of calls to return (default: all)"),
		),
	)
	s.server.AddTool(listCallsTool, s.handleListCalls)

	getTranscriptTool := mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the transcript of a Gong call with speaker names and affiliations"),
		mcp.WithString("call_id",
			mcp.Required(),
			mcp.Description("Gong call ID"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'text' for readable transcript, 'json' for structured document (default: text)"),
		),
		mcp.WithBoolean("include_timestamps",
			mcp.Description("Include MM:SS timestamps in text format (default: true)"),
		),
	)
	s.server.AddTool(getTranscriptTool, s.handleGetTranscript)

	searchCallsTool := mcp.NewTool("search_calls",
		mcp.WithDescription("Search Gong calls by title, participant emails, or email domains"),
		mcp.WithString("query",
			mcp.Description("Substring to match against call titles"),
		),
		mcp.WithArray("emails",
			mcp.Description("Participant email addresses to match"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("domains",
			mcp.Description("Participant email domains to match, e.g. 'acme.com'"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("from_date",
			mcp.Description("Start date in YYYY-MM-DD format (default: 30 days ago)"),
		),
		mcp.WithString("to_date",
			mcp.Description("End date in YYYY-MM-DD format (default: today)"),
		),
	)
	s.server.AddTool(searchCallsTool, s.handleSearchCalls)

	participantsTool := mcp.NewTool("get_call_participants",
		mcp.WithDescription("Get participants of one or more Gong calls, split into internal and external"),
		mcp.WithArray("call_ids",
			mcp.Required(),
			mcp.Description("Gong call IDs"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.server.AddTool(participantsTool, s.handleGetCallParticipants)

	analyzeTool := mcp.NewTool("analyze_calls",
		mcp.WithDescription("Analyze call transcripts with a custom prompt. Small datasets return transcripts inline; large ones run as a background job"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Analysis instructions, e.g. 'extract objections and next steps'"),
		),
		mcp.WithArray("call_ids",
			mcp.Description("Restrict analysis to these call IDs"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("emails",
			mcp.Description("Restrict analysis to calls with these participant emails"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("domains",
			mcp.Description("Restrict analysis to calls with these participant email domains"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("from_date",
			mcp.Description("Start date in YYYY-MM-DD format (default: 7 days ago)"),
		),
		mcp.WithString("to_date",
			mcp.Description("End date in YYYY-MM-DD format (default: today)"),
		),
	)
	s.server.AddTool(analyzeTool, s.handleAnalyzeCalls)

	jobStatusTool := mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status and progress of a background analysis job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID returned by analyze_calls"),
		),
	)
	s.server.AddTool(jobStatusTool, s.handleGetJobStatus)

	jobResultsTool := mcp.NewTool("get_job_results",
		mcp.WithDescription("Get the results of a completed analysis job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID returned by analyze_calls"),
		),
	)
	s.server.AddTool(jobResultsTool, s.handleGetJobResults)

	listJobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List recent analysis jobs, optionally filtered by status"),
		mcp.WithString("status",
			mcp.Description("Filter by status: pending, running, complete, or error"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of jobs to return (default: 20)"),
		),
	)
	s.server.AddTool(listJobsTool, s.handleListJobs)
}

// ApplyConfig applies a reloaded configuration to the running server.
// Routing decisions pick up the new direct-mode threshold immediately;
// credentials and client wiring still require a restart.
func (s *MCPServer) ApplyConfig(cfg *config.Config) {
	s.dispatcher.UpdateConfig(cfg)
}

// Serve starts the MCP server on stdio. Blocks until the client
// disconnects.
func (s *MCPServer) Serve() error {
	return server.ServeStdio(s.server)
}

// Shutdown waits for in-flight background jobs to finish
func (s *MCPServer) Shutdown() {
	s.dispatcher.Wait()
}

// jsonResult marshals v and wraps it as a tool result
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
