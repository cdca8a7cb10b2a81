package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/teranos/gong-mcp/errors"
	"github.com/teranos/gong-mcp/jobs"
	"github.com/teranos/gong-mcp/logger"
)

// Summary is the output of one summarization call
type Summary struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// Summarizer produces an analysis for one batch of transcripts.
// Rate limiting must surface as ErrRateLimited (with a retry hint where
// the upstream provided one); other failures as ErrUnavailable.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string, batch Batch) (*Summary, error)
}

// Runner executes analysis jobs: it partitions the corpus into batches,
// drives the summarizer sequentially with retry on rate limits, emits
// per-batch progress, and moves the job to a terminal state.
type Runner struct {
	store      *jobs.Store
	summarizer Summarizer
	batcher    Batcher
	maxRetries int
	sleep      func(time.Duration) // injectable for tests
}

// NewRunner creates a runner. A nil sleep uses time.Sleep.
func NewRunner(store *jobs.Store, summarizer Summarizer, batcher Batcher, maxRetries int, sleep func(time.Duration)) *Runner {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Runner{
		store:      store,
		summarizer: summarizer,
		batcher:    batcher,
		maxRetries: maxRetries,
		sleep:      sleep,
	}
}

// Run processes one job to completion or failure. Errors are recorded on
// the job record rather than propagated; the returned error mirrors the
// terminal state for callers that run synchronously (tests, CLI).
func (r *Runner) Run(ctx context.Context, jobID string, transcripts []Transcript, prompt string) error {
	batches := r.batcher.Partition(transcripts)
	total := len(batches)

	if err := r.store.UpdateProgress(jobID, 0, total,
		fmt.Sprintf("Created %d batches, starting analysis", total), 0); err != nil {
		r.failJob(jobID, err)
		return err
	}

	logger.Infow("Starting batch analysis",
		"job_id", jobID,
		"calls", len(transcripts),
		"batches", total)

	var batchResults []jobs.BatchResult
	totalCost := 0.0

	for i, batch := range batches {
		summary, err := r.summarizeBatch(ctx, prompt, batch, i+1, total)
		if err != nil {
			logger.Errorw("Batch analysis failed",
				"job_id", jobID,
				"batch", i+1,
				"error", err)
			r.failJob(jobID, err)
			return err
		}

		batchResults = append(batchResults, jobs.BatchResult{
			BatchNum:   i + 1,
			CallsCount: len(batch.Transcripts),
			Analysis:   summary.Text,
			Truncated:  batch.Truncated,
		})
		totalCost += summary.Cost

		if err := r.store.UpdateProgress(jobID, i+1, total,
			fmt.Sprintf("Processed batch %d/%d", i+1, total), totalCost); err != nil {
			// A broken progress write must not strand a live job in
			// running with no terminal record
			r.failJob(jobID, err)
			return err
		}
	}

	results := &jobs.Results{
		JobID:        jobID,
		TotalCalls:   len(transcripts),
		TotalBatches: total,
		TotalCost:    totalCost,
		PromptUsed:   prompt,
		BatchResults: batchResults,
	}

	if err := r.store.Complete(jobID, results); err != nil {
		logger.Errorw("Failed to record job completion",
			"job_id", jobID,
			"error", err)
		return err
	}

	logger.Infow("Batch analysis complete",
		"job_id", jobID,
		"batches", total,
		"cost", totalCost)

	return nil
}

// failJob records a job failure, logging when even that write fails (a
// terminal record is best effort once the store itself is erroring)
func (r *Runner) failJob(jobID string, cause error) {
	if failErr := r.store.Fail(jobID, cause); failErr != nil {
		logger.Errorw("Failed to record job failure",
			"job_id", jobID,
			"error", failErr)
	}
}

// summarizeBatch invokes the summarizer with bounded retry on rate
// limits. Any other error fails the batch immediately.
func (r *Runner) summarizeBatch(ctx context.Context, prompt string, batch Batch, num, total int) (*Summary, error) {
	retry := newRetrier(r.maxRetries, r.sleep)

	for {
		summary, err := r.summarizer.Summarize(ctx, prompt, batch)
		if err == nil {
			return summary, nil
		}

		if retry.Next(err) {
			logger.Warnw("Batch rate limited, retrying",
				"batch", num,
				"attempt", retry.Attempts())
			continue
		}

		if errors.Is(err, errors.ErrRateLimited) {
			return nil, errors.Wrapf(err, "batch %d/%d failed after %d attempts", num, total, retry.Attempts())
		}
		return nil, errors.Wrapf(err, "batch %d/%d failed", num, total)
	}
}
