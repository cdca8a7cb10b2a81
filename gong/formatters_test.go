package gong

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{42, "42s"},
		{0, "0s"},
		{330, "5m 30s"},
		{5025, "1h 23m 45s"},
		{3600, "1h 0m 0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:05", FormatTimestamp(5))
	assert.Equal(t, "05:30", FormatTimestamp(330))
	assert.Equal(t, "01:23:45", FormatTimestamp(5025))
}

func TestFormatISODate(t *testing.T) {
	assert.Equal(t, "Unknown", FormatISODate(""))
	assert.Equal(t, "not-a-date", FormatISODate("not-a-date"))
	// Valid RFC3339 parses without error (exact rendering depends on local timezone)
	out := FormatISODate("2026-01-15T10:30:00Z")
	assert.Contains(t, out, "2026")
	assert.Contains(t, out, "at")
}

func sampleCallAndTranscript() (*Call, *Transcript) {
	call := &Call{
		MetaData: CallMetaData{
			ID:       "c1",
			Title:    "Quarterly Review",
			Started:  "2026-01-15T10:30:00Z",
			Duration: 330,
		},
		Parties: []Party{
			{SpeakerID: "s1", Name: "Alice", EmailAddress: "alice@ourco.com", Affiliation: "Internal"},
			{SpeakerID: "s2", Name: "Bob", EmailAddress: "bob@client.com", Affiliation: "External"},
			{SpeakerID: "s3", Name: "Merged Audio"},
		},
	}

	transcript := &Transcript{
		CallID: "c1",
		Transcript: []Monologue{
			{
				SpeakerID: "s2",
				Sentences: []Sentence{
					{Start: 65000, Text: "Sounds good to me."},
				},
			},
			{
				SpeakerID: "s1",
				Sentences: []Sentence{
					{Start: 1000, Text: "Welcome everyone."},
					{Start: 30000, Text: "Let's get started."},
				},
			},
		},
	}

	return call, transcript
}

func TestBuildTranscriptText(t *testing.T) {
	call, transcript := sampleCallAndTranscript()

	text := BuildTranscriptText(call, transcript, true)

	assert.Contains(t, text, "# Quarterly Review")
	assert.Contains(t, text, "Duration: 5m 30s")

	// Sentences are ordered by start time regardless of monologue order
	lines := strings.Split(text, "\n")
	var conversation []string
	for _, line := range lines {
		if strings.HasPrefix(line, "[") {
			conversation = append(conversation, line)
		}
	}
	require.Len(t, conversation, 3)
	assert.Equal(t, "[00:01] Alice: Welcome everyone.", conversation[0])
	assert.Equal(t, "[00:30] Alice: Let's get started.", conversation[1])
	assert.Equal(t, "[01:05] Bob: Sounds good to me.", conversation[2])
}

func TestBuildTranscriptTextWithoutTimestamps(t *testing.T) {
	call, transcript := sampleCallAndTranscript()

	text := BuildTranscriptText(call, transcript, false)
	assert.Contains(t, text, "Alice: Welcome everyone.")
	assert.NotContains(t, text, "[00:01]")
}

func TestBuildTranscriptTextUnknownSpeaker(t *testing.T) {
	call, transcript := sampleCallAndTranscript()
	transcript.Transcript = append(transcript.Transcript, Monologue{
		SpeakerID: "speaker-9876",
		Sentences: []Sentence{{Start: 90000, Text: "Who am I?"}},
	})

	text := BuildTranscriptText(call, transcript, false)
	assert.Contains(t, text, "Speaker 9876: Who am I?")
}

func TestBuildTranscriptDocument(t *testing.T) {
	call, transcript := sampleCallAndTranscript()

	doc := BuildTranscriptDocument(call, transcript)

	assert.Equal(t, "c1", doc.Metadata.CallID)
	assert.Equal(t, "Quarterly Review", doc.Metadata.Title)
	assert.Equal(t, 330, doc.Metadata.DurationSeconds)
	assert.Equal(t, "5m 30s", doc.Metadata.DurationFormatted)

	require.Len(t, doc.Participants.Internal, 1)
	require.Len(t, doc.Participants.External, 1)

	require.Len(t, doc.Conversation, 3)
	assert.Equal(t, "00:01", doc.Conversation[0].Timestamp)
	assert.Equal(t, "Alice", doc.Conversation[0].Speaker)
	assert.Equal(t, "internal", doc.Conversation[0].Affiliation)
	assert.Equal(t, "external", doc.Conversation[2].Affiliation)
}

func TestBuildTranscriptDocumentUntitledCall(t *testing.T) {
	call, transcript := sampleCallAndTranscript()
	call.MetaData.Title = ""

	doc := BuildTranscriptDocument(call, transcript)
	assert.Equal(t, "Untitled Call", doc.Metadata.Title)
}
