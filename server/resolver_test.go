package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/gong"
	"github.com/teranos/gong-mcp/jobs"
)

func newFakeGong(t *testing.T, calls []gong.Call, transcripts []gong.Transcript) *gong.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v2/calls/extensive":
			json.NewEncoder(w).Encode(gong.CallsPage{Calls: calls})
		case "/v2/calls/transcript":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"callTranscripts": transcripts,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Gong.AccessKey = "key"
	cfg.Gong.Secret = "secret"
	cfg.Gong.BaseURL = srv.URL

	client := gong.NewClient(cfg)
	client.SetHTTPClient(srv.Client())
	return client
}

func resolverFixtures() ([]gong.Call, []gong.Transcript) {
	calls := []gong.Call{
		{
			MetaData: gong.CallMetaData{ID: "c1", Title: "Acme kickoff", Started: "2026-08-20T10:00:00Z"},
			Parties: []gong.Party{
				{SpeakerID: "s1", Name: "Dana", EmailAddress: "dana@acme.com", Affiliation: "External"},
			},
		},
		{
			MetaData: gong.CallMetaData{ID: "c2", Title: "Internal sync", Started: "2026-08-21T10:00:00Z"},
			Parties: []gong.Party{
				{SpeakerID: "s2", Name: "Rae", EmailAddress: "rae@vendor.io", Affiliation: "Internal"},
			},
		},
	}
	transcripts := []gong.Transcript{
		{
			CallID: "c1",
			Transcript: []gong.Monologue{
				{SpeakerID: "s1", Sentences: []gong.Sentence{{Start: 0, End: 1000, Text: "Hello from Acme"}}},
			},
		},
		{
			CallID: "c2",
			Transcript: []gong.Monologue{
				{SpeakerID: "s2", Sentences: []gong.Sentence{{Start: 0, End: 1000, Text: "Quick sync"}}},
			},
		},
	}
	return calls, transcripts
}

func TestResolveReturnsFullCorpus(t *testing.T) {
	calls, transcripts := resolverFixtures()
	resolver := NewGongResolver(newFakeGong(t, calls, transcripts))

	corpus, err := resolver.Resolve(context.Background(), jobs.Request{
		FromDate: "2026-08-01T00:00:00Z",
		ToDate:   "2026-08-28T23:59:59Z",
	})
	require.NoError(t, err)
	require.Len(t, corpus, 2)

	// Calls are sorted most recent first
	assert.Equal(t, "c2", corpus[0].CallID)
	assert.Equal(t, "c1", corpus[1].CallID)
	assert.Equal(t, "Acme kickoff", corpus[1].Title)
	assert.Contains(t, corpus[1].Text, "Hello from Acme")
}

func TestResolveFiltersByCallID(t *testing.T) {
	calls, transcripts := resolverFixtures()
	resolver := NewGongResolver(newFakeGong(t, calls, transcripts))

	corpus, err := resolver.Resolve(context.Background(), jobs.Request{
		CallIDs: []string{"c1"},
	})
	require.NoError(t, err)
	require.Len(t, corpus, 1)
	assert.Equal(t, "c1", corpus[0].CallID)
}

func TestResolveFiltersByDomain(t *testing.T) {
	calls, transcripts := resolverFixtures()
	resolver := NewGongResolver(newFakeGong(t, calls, transcripts))

	corpus, err := resolver.Resolve(context.Background(), jobs.Request{
		Domains: []string{"acme.com"},
	})
	require.NoError(t, err)
	require.Len(t, corpus, 1)
	assert.Equal(t, "c1", corpus[0].CallID)
}

func TestResolveEmptyWhenNothingMatches(t *testing.T) {
	calls, transcripts := resolverFixtures()
	resolver := NewGongResolver(newFakeGong(t, calls, transcripts))

	corpus, err := resolver.Resolve(context.Background(), jobs.Request{
		Domains: []string{"nowhere.example"},
	})
	require.NoError(t, err)
	assert.Empty(t, corpus)
}

func TestResolveSkipsCallsWithoutTranscripts(t *testing.T) {
	calls, transcripts := resolverFixtures()
	resolver := NewGongResolver(newFakeGong(t, calls, transcripts[:1]))

	corpus, err := resolver.Resolve(context.Background(), jobs.Request{})
	require.NoError(t, err)
	require.Len(t, corpus, 1)
	assert.Equal(t, "c1", corpus[0].CallID)
}
