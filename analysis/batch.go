package analysis

import "unicode/utf8"

// DefaultBatchSize is the maximum number of calls per batch regardless
// of token budget
const DefaultBatchSize = 20

// Batch is a token-budget-bounded subset of the corpus sent in one
// summarization call
type Batch struct {
	Transcripts []Transcript
	Tokens      int

	// Truncated marks that a single oversized transcript was cut to fit
	// the budget rather than dropped
	Truncated bool
}

// Batcher partitions a transcript corpus into batches under a token budget
type Batcher struct {
	MaxCalls       int // Max transcripts per batch (default DefaultBatchSize)
	TokenLimit     int // Token budget per batch request
	PromptOverhead int // Tokens reserved for the prompt scaffold
}

// safeLimit is the usable token budget per batch after the prompt
// reservation and a 10% safety margin
func (b Batcher) safeLimit() int {
	limit := b.TokenLimit
	if limit <= 0 {
		limit = 24000
	}
	overhead := b.PromptOverhead
	if overhead < 0 {
		overhead = 0
	}

	safe := limit*9/10 - overhead
	if safe < 1 {
		safe = 1
	}
	return safe
}

// Partition splits transcripts into batches, preserving order. A
// transcript whose estimate alone exceeds the budget forms its own batch
// with its text truncated to fit and the batch flagged; nothing is ever
// dropped or split mid-transcript.
func (b Batcher) Partition(transcripts []Transcript) []Batch {
	maxCalls := b.MaxCalls
	if maxCalls <= 0 {
		maxCalls = DefaultBatchSize
	}
	safe := b.safeLimit()

	var batches []Batch
	var current Batch

	flush := func() {
		if len(current.Transcripts) > 0 {
			batches = append(batches, current)
			current = Batch{}
		}
	}

	for _, transcript := range transcripts {
		tokens := transcript.Tokens()

		if tokens > safe {
			// Oversized transcript: own batch, truncated to the budget.
			// Back off to a rune boundary so the cut never leaves a
			// partial UTF-8 sequence at the end.
			flush()
			cut := safe * charsPerToken
			for cut > 0 && !utf8.RuneStart(transcript.Text[cut]) {
				cut--
			}
			truncated := transcript
			truncated.Text = transcript.Text[:cut]
			batches = append(batches, Batch{
				Transcripts: []Transcript{truncated},
				Tokens:      EstimateTokens(truncated.Text),
				Truncated:   true,
			})
			continue
		}

		wouldExceedSize := len(current.Transcripts) >= maxCalls
		wouldExceedTokens := current.Tokens+tokens > safe
		if len(current.Transcripts) > 0 && (wouldExceedSize || wouldExceedTokens) {
			flush()
		}

		current.Transcripts = append(current.Transcripts, transcript)
		current.Tokens += tokens
	}
	flush()

	return batches
}
