// Package analysis implements the smart analysis router: token
// estimation, direct-versus-async routing, token-bounded batching, and
// the background runner that drives analysis jobs to completion.
package analysis

// charsPerToken is the character-to-token approximation used for
// routing and batching. Conservative for English text.
const charsPerToken = 4

// EstimateTokens estimates the token count of a text
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// Transcript is one call's transcript prepared for analysis. Text is the
// serialized document sent to the summarizer.
type Transcript struct {
	CallID string `json:"call_id"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
}

// Tokens estimates the transcript's token count
func (t *Transcript) Tokens() int {
	return EstimateTokens(t.Text)
}

// EstimateCorpus estimates total tokens across a transcript corpus as
// the sum of per-transcript estimates
func EstimateCorpus(transcripts []Transcript) int {
	total := 0
	for i := range transcripts {
		total += transcripts[i].Tokens()
	}
	return total
}
