package gong

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatDuration renders a duration in seconds as "1h 23m 45s", "5m 30s"
// or "42s" depending on magnitude
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatTimestamp renders an offset in seconds as MM:SS, or HH:MM:SS for
// offsets past the hour
func FormatTimestamp(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatISODate renders an ISO 8601 datetime as "Jan 15, 2026 at 10:30 AM".
// Unparseable input is returned as-is; empty input becomes "Unknown".
func FormatISODate(isoString string) string {
	if isoString == "" {
		return "Unknown"
	}

	t, err := time.Parse(time.RFC3339, isoString)
	if err != nil {
		return isoString
	}

	return t.Local().Format("Jan 2, 2006 at 3:04 PM")
}

// flatSentence is a transcript sentence resolved against the speaker map
type flatSentence struct {
	start       int64
	speaker     string
	affiliation string
	text        string
}

// speakerMaps builds lookups from every party identifier to display name
// and affiliation, skipping recording artifacts
func speakerMaps(parties []Party) (names, affiliations map[string]string) {
	names = make(map[string]string)
	affiliations = make(map[string]string)

	for i := range parties {
		party := &parties[i]
		name := party.DisplayName()
		if isNoiseParty(name) {
			continue
		}

		affiliation := strings.ToLower(party.Affiliation)
		if affiliation == "" {
			affiliation = "unknown"
		}

		for _, id := range party.speakerIDs() {
			names[id] = name
			affiliations[id] = affiliation
		}
	}

	return names, affiliations
}

// flattenTranscript resolves speaker IDs and produces sentences ordered
// by start time. Unknown speakers are labeled by the tail of their ID.
func flattenTranscript(transcript *Transcript, names, affiliations map[string]string) []flatSentence {
	var sentences []flatSentence

	for _, monologue := range transcript.Transcript {
		speakerID := monologue.SpeakerID

		speaker, ok := names[speakerID]
		if !ok {
			tail := speakerID
			if len(tail) > 4 {
				tail = tail[len(tail)-4:]
			}
			speaker = fmt.Sprintf("Speaker %s", tail)
		}

		affiliation, ok := affiliations[speakerID]
		if !ok {
			affiliation = "unknown"
		}

		for _, sentence := range monologue.Sentences {
			if sentence.Text == "" {
				continue
			}
			sentences = append(sentences, flatSentence{
				start:       sentence.Start,
				speaker:     speaker,
				affiliation: affiliation,
				text:        sentence.Text,
			})
		}
	}

	sort.SliceStable(sentences, func(i, j int) bool {
		return sentences[i].start < sentences[j].start
	})

	return sentences
}

// BuildTranscriptText renders a call transcript as plain text with a
// metadata header and one line per sentence, ordered by start time
func BuildTranscriptText(call *Call, transcript *Transcript, includeTimestamps bool) string {
	var b strings.Builder

	title := call.MetaData.Title
	if title == "" {
		title = "Untitled Call"
	}

	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "Date: %s\n", FormatISODate(call.MetaData.Started))
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(call.MetaData.Duration))
	b.WriteString("\n")

	names, affiliations := speakerMaps(call.Parties)
	sentences := flattenTranscript(transcript, names, affiliations)

	for i, s := range sentences {
		if i > 0 {
			b.WriteString("\n")
		}
		if includeTimestamps {
			fmt.Fprintf(&b, "[%s] %s: %s", FormatTimestamp(s.start/1000), s.speaker, s.text)
		} else {
			fmt.Fprintf(&b, "%s: %s", s.speaker, s.text)
		}
	}

	return b.String()
}

// TranscriptDocument is the structured rendering of a call transcript
type TranscriptDocument struct {
	Metadata     TranscriptMetadata `json:"metadata"`
	Participants Participants       `json:"participants"`
	Conversation []ConversationTurn `json:"conversation"`
}

// TranscriptMetadata summarizes the call a transcript belongs to
type TranscriptMetadata struct {
	CallID            string `json:"call_id"`
	Title             string `json:"title"`
	Date              string `json:"date"`
	DateFormatted     string `json:"date_formatted"`
	DurationSeconds   int    `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
}

// ConversationTurn is one sentence of the conversation with its speaker resolved
type ConversationTurn struct {
	Timestamp   string `json:"timestamp"`
	Speaker     string `json:"speaker"`
	Affiliation string `json:"affiliation"`
	Text        string `json:"text"`
}

// BuildTranscriptDocument renders a call transcript as a structured
// document with metadata, categorized participants, and the conversation
// ordered by start time
func BuildTranscriptDocument(call *Call, transcript *Transcript) *TranscriptDocument {
	title := call.MetaData.Title
	if title == "" {
		title = "Untitled Call"
	}

	doc := &TranscriptDocument{
		Metadata: TranscriptMetadata{
			CallID:            call.MetaData.ID,
			Title:             title,
			Date:              call.MetaData.Started,
			DateFormatted:     FormatISODate(call.MetaData.Started),
			DurationSeconds:   call.MetaData.Duration,
			DurationFormatted: FormatDuration(call.MetaData.Duration),
		},
		Participants: ExtractParticipants(call),
		Conversation: []ConversationTurn{},
	}

	names, affiliations := speakerMaps(call.Parties)
	for _, s := range flattenTranscript(transcript, names, affiliations) {
		doc.Conversation = append(doc.Conversation, ConversationTurn{
			Timestamp:   FormatTimestamp(s.start / 1000),
			Speaker:     s.speaker,
			Affiliation: s.affiliation,
			Text:        s.text,
		})
	}

	return doc
}
