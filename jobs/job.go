// Package jobs provides persistent tracking for asynchronous analysis jobs.
package jobs

import (
	"time"
)

// Status represents the current state of an analysis job
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// IsValidStatus returns true if the status string is a valid Status
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusRunning, StatusComplete, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states a job can never leave
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// Progress represents job progress in completed batches
type Progress struct {
	Completed int `json:"completed"` // Batches finished so far
	Total     int `json:"total"`     // Total batches planned
}

// Percentage calculates progress as a percentage (0-100)
func (p Progress) Percentage() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Request is the immutable snapshot of what a job was asked to do,
// recorded at creation time
type Request struct {
	Prompt           string   `json:"prompt"`
	CallIDs          []string `json:"call_ids,omitempty"`
	Emails           []string `json:"emails,omitempty"`
	Domains          []string `json:"domains,omitempty"`
	FromDate         string   `json:"from_date,omitempty"`
	ToDate           string   `json:"to_date,omitempty"`
	CallCount        int      `json:"call_count"`
	TotalTokens      int      `json:"total_tokens"`
	EstimatedBatches int      `json:"estimated_batches"`
	EstimatedMinutes int      `json:"estimated_minutes"`
}

// Job represents one asynchronous analysis run
type Job struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	Progress     Progress  `json:"progress"`
	Request      Request   `json:"request"`
	Message      string    `json:"message,omitempty"`
	CostSoFar    float64   `json:"cost_so_far"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ResultsRef   string    `json:"results_ref,omitempty"` // Path to the results payload once complete
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Results is the persisted output of a completed job
type Results struct {
	JobID        string        `json:"job_id"`
	TotalCalls   int           `json:"total_calls"`
	TotalBatches int           `json:"total_batches"`
	TotalCost    float64       `json:"total_cost"`
	PromptUsed   string        `json:"prompt_used"`
	BatchResults []BatchResult `json:"batch_results"`
}

// BatchResult is the analysis output for one batch of transcripts
type BatchResult struct {
	BatchNum   int    `json:"batch_num"`
	CallsCount int    `json:"calls_count"`
	Analysis   string `json:"analysis"`
	Truncated  bool   `json:"truncated,omitempty"`
}
