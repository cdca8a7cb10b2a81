package analysis

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/teranos/gong-mcp/config"
	"github.com/teranos/gong-mcp/jobs"
	"github.com/teranos/gong-mcp/logger"
)

// CorpusResolver resolves an analysis request's filters into a concrete
// transcript set, paginating upstream as needed
type CorpusResolver interface {
	Resolve(ctx context.Context, req jobs.Request) ([]Transcript, error)
}

// Result is the outcome of an analyze call: transcripts inline for
// direct mode, or a job handle with estimates for async mode
type Result struct {
	Mode             Mode         `json:"mode"`
	Message          string       `json:"message,omitempty"`
	CallCount        int          `json:"call_count"`
	TotalTokens      int          `json:"total_tokens"`
	FromDate         string       `json:"from_date,omitempty"`
	ToDate           string       `json:"to_date,omitempty"`
	Transcripts      []Transcript `json:"transcripts,omitempty"`
	JobID            string       `json:"job_id,omitempty"`
	EstimatedBatches int          `json:"estimated_batches,omitempty"`
	EstimatedMinutes int          `json:"estimated_minutes,omitempty"`

	// NoCalls marks the distinguished empty-corpus outcome: nothing
	// matched the filters, no routing happened, no job was created
	NoCalls bool `json:"no_calls,omitempty"`
}

// Dispatcher is the analysis entry point. It resolves the corpus,
// applies the routing policy, and either answers inline or creates a job
// and schedules the runner in the background.
type Dispatcher struct {
	cfg      atomic.Pointer[config.Config]
	store    *jobs.Store
	resolver CorpusResolver
	runner   *Runner

	wg sync.WaitGroup
}

// NewDispatcher wires the analysis pipeline together
func NewDispatcher(cfg *config.Config, store *jobs.Store, resolver CorpusResolver, summarizer Summarizer) *Dispatcher {
	batcher := Batcher{
		MaxCalls:       DefaultBatchSize,
		TokenLimit:     cfg.BatchTokenLimit(),
		PromptOverhead: cfg.PromptOverheadTokens(),
	}

	d := &Dispatcher{
		store:    store,
		resolver: resolver,
		runner:   NewRunner(store, summarizer, batcher, cfg.MaxRetries(), nil),
	}
	d.cfg.Store(cfg)
	return d
}

// UpdateConfig swaps the configuration used for routing decisions, so a
// config reload changes the direct-mode threshold without a restart.
// Batching and retry limits stay as wired at construction; in-flight jobs
// are unaffected.
func (d *Dispatcher) UpdateConfig(cfg *config.Config) {
	d.cfg.Store(cfg)
}

// Analyze routes one analysis request. Direct mode returns transcripts
// synchronously; async mode creates a job, schedules the runner, and
// returns immediately with the job id and estimates.
func (d *Dispatcher) Analyze(ctx context.Context, req jobs.Request) (*Result, error) {
	transcripts, err := d.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(transcripts) == 0 {
		return &Result{
			Mode:     ModeDirect,
			NoCalls:  true,
			Message:  "No calls found matching the criteria",
			FromDate: req.FromDate,
			ToDate:   req.ToDate,
		}, nil
	}

	policy := NewRoutingPolicy(d.cfg.Load())
	decision := policy.Decide(len(transcripts), EstimateCorpus(transcripts))

	logger.Debugw("Routing decision",
		"mode", decision.Mode,
		"calls", decision.CallCount,
		"tokens", decision.EstimatedTokens,
		"reason", decision.Reason)

	if decision.Mode == ModeDirect {
		return &Result{
			Mode:        ModeDirect,
			Message:     "Transcripts returned, ready for inline analysis",
			CallCount:   decision.CallCount,
			TotalTokens: decision.EstimatedTokens,
			FromDate:    req.FromDate,
			ToDate:      req.ToDate,
			Transcripts: transcripts,
		}, nil
	}

	req.CallCount = decision.CallCount
	req.TotalTokens = decision.EstimatedTokens
	req.EstimatedBatches = decision.EstimatedBatches
	req.EstimatedMinutes = decision.EstimatedMinutes

	job, err := d.store.Create(req)
	if err != nil {
		return nil, err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// Detached from the request context: the job outlives the call
		// that spawned it and is observed only through the store.
		d.runner.Run(context.Background(), job.ID, transcripts, req.Prompt)
	}()

	return &Result{
		Mode:             ModeAsync,
		Message:          "Dataset too large for inline analysis, started background job",
		CallCount:        decision.CallCount,
		TotalTokens:      decision.EstimatedTokens,
		FromDate:         req.FromDate,
		ToDate:           req.ToDate,
		JobID:            job.ID,
		EstimatedBatches: decision.EstimatedBatches,
		EstimatedMinutes: decision.EstimatedMinutes,
	}, nil
}

// Wait blocks until all scheduled background jobs have finished.
// Used by tests and graceful shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
