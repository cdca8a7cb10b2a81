package server

import (
	"context"
	"encoding/json"

	"github.com/teranos/gong-mcp/analysis"
	"github.com/teranos/gong-mcp/errors"
	"github.com/teranos/gong-mcp/gong"
	"github.com/teranos/gong-mcp/jobs"
	"github.com/teranos/gong-mcp/logger"
)

// GongResolver assembles an analysis corpus from the Gong API. It lists
// calls for the requested window, narrows them by ids, emails, or domains,
// and fetches transcripts for whatever survives the filters.
type GongResolver struct {
	client *gong.Client
}

func NewGongResolver(client *gong.Client) *GongResolver {
	return &GongResolver{client: client}
}

func (r *GongResolver) Resolve(ctx context.Context, req jobs.Request) ([]analysis.Transcript, error) {
	calls, err := r.client.GetAllCalls(ctx, req.FromDate, req.ToDate)
	if err != nil {
		return nil, errors.Wrap(err, "listing calls for analysis")
	}

	if len(req.CallIDs) > 0 {
		wanted := make(map[string]bool, len(req.CallIDs))
		for _, id := range req.CallIDs {
			wanted[id] = true
		}
		var kept []gong.Call
		for _, call := range calls {
			if wanted[call.ID()] {
				kept = append(kept, call)
			}
		}
		calls = kept
	}

	if len(req.Emails) > 0 || len(req.Domains) > 0 {
		calls, _ = gong.FilterCallsByEmails(calls, req.Emails, req.Domains)
	}

	if len(calls) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(calls))
	for _, call := range calls {
		ids = append(ids, call.ID())
	}

	transcripts, err := r.client.GetTranscripts(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "fetching transcripts for analysis")
	}
	byCall := make(map[string]gong.Transcript, len(transcripts))
	for _, t := range transcripts {
		byCall[t.CallID] = t
	}

	corpus := make([]analysis.Transcript, 0, len(calls))
	for _, call := range calls {
		transcript, ok := byCall[call.ID()]
		if !ok {
			logger.Debugw("call has no transcript, skipping", "call_id", call.ID())
			continue
		}
		doc := gong.BuildTranscriptDocument(&call, &transcript)
		text, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding transcript for call %s", call.ID())
		}
		corpus = append(corpus, analysis.Transcript{
			CallID: call.ID(),
			Title:  call.MetaData.Title,
			Text:   string(text),
		})
	}
	return corpus, nil
}
