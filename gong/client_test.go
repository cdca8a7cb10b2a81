package gong

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&config.Config{
		Gong: config.GongConfig{
			AccessKey: "test-key",
			Secret:    "test-secret",
			BaseURL:   server.URL,
		},
	})
	client.SetHTTPClient(server.Client())

	return client
}

func TestSearchCallsSendsBasicAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "test-key", user)
		assert.Equal(t, "test-secret", pass)
		assert.Equal(t, "/v2/calls/extensive", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		filter := req["filter"].(map[string]interface{})
		assert.Equal(t, "2026-01-01T00:00:00Z", filter["fromDateTime"])

		json.NewEncoder(w).Encode(CallsPage{
			Calls:   []Call{makeCall("c1")},
			Records: Records{CurrentPageSize: 1},
		})
	})

	page, err := client.SearchCalls(context.Background(), "2026-01-01T00:00:00Z", "2026-01-08T00:00:00Z", "")
	require.NoError(t, err)
	assert.Len(t, page.Calls, 1)
}

func TestGetAllCallsFollowsCursor(t *testing.T) {
	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++

		var req struct {
			Cursor string `json:"cursor"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch requests {
		case 1:
			assert.Empty(t, req.Cursor)
			json.NewEncoder(w).Encode(CallsPage{
				Calls: []Call{
					{MetaData: CallMetaData{ID: "old", Started: "2026-01-02T00:00:00Z"}},
				},
				Records: Records{Cursor: "next-page", CurrentPageSize: 1},
			})
		case 2:
			assert.Equal(t, "next-page", req.Cursor)
			json.NewEncoder(w).Encode(CallsPage{
				Calls: []Call{
					{MetaData: CallMetaData{ID: "new", Started: "2026-01-05T00:00:00Z"}},
				},
				Records: Records{CurrentPageSize: 1},
			})
		default:
			t.Fatalf("unexpected request %d", requests)
		}
	})

	calls, err := client.GetAllCalls(context.Background(), "2026-01-01T00:00:00Z", "2026-01-08T00:00:00Z")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, 2, requests)

	// Most recent first
	assert.Equal(t, "new", calls[0].ID())
	assert.Equal(t, "old", calls[1].ID())
}

func TestGetAllCallsStopsOnEmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CallsPage{})
	})

	calls, err := client.GetAllCalls(context.Background(), "2026-01-01T00:00:00Z", "2026-01-08T00:00:00Z")
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestGetCallTranscript(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/calls/transcript", r.URL.Path)

		var req struct {
			Filter struct {
				CallIDs []string `json:"callIds"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"c1"}, req.Filter.CallIDs)

		json.NewEncoder(w).Encode(transcriptResponse{
			CallTranscripts: []Transcript{{CallID: "c1"}},
		})
	})

	transcript, err := client.GetCallTranscript(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", transcript.CallID)
}

func TestGetCallTranscriptNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transcriptResponse{})
	})

	_, err := client.GetCallTranscript(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestPostErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"404 maps to not found", http.StatusNotFound, errors.ErrNotFound},
		{"429 maps to rate limited", http.StatusTooManyRequests, errors.ErrRateLimited},
		{"500 maps to unavailable", http.StatusInternalServerError, errors.ErrUnavailable},
		{"503 maps to unavailable", http.StatusServiceUnavailable, errors.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.SearchCalls(context.Background(), "2026-01-01T00:00:00Z", "2026-01-08T00:00:00Z", "")
			assert.True(t, errors.Is(err, tt.sentinel), "expected %v, got %v", tt.sentinel, err)
		})
	}
}

func TestPostAuthFailureMentionsCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SearchCalls(context.Background(), "2026-01-01T00:00:00Z", "2026-01-08T00:00:00Z", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GONG_ACCESS_KEY")
}

func TestCheckCredentials(t *testing.T) {
	t.Run("both present", func(t *testing.T) {
		client := NewClient(&config.Config{
			Gong: config.GongConfig{AccessKey: "k", Secret: "s"},
		})
		assert.NoError(t, client.CheckCredentials())
	})

	t.Run("missing secret names the env var", func(t *testing.T) {
		client := NewClient(&config.Config{
			Gong: config.GongConfig{AccessKey: "k"},
		})
		err := client.CheckCredentials()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GONG_ACCESS_KEY_SECRET")
	})

	t.Run("missing both names both", func(t *testing.T) {
		client := NewClient(&config.Config{})
		err := client.CheckCredentials()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GONG_ACCESS_KEY")
		assert.Contains(t, err.Error(), "GONG_ACCESS_KEY_SECRET")
	})
}
