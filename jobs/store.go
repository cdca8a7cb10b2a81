package jobs

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/gong-mcp/errors"
)

// Store handles persistence of analysis jobs. Status rows live in SQLite;
// completed result payloads are written as JSON files next to the database
// and referenced by path.
type Store struct {
	db         *sql.DB
	resultsDir string
}

// NewStore creates a new analysis job store
func NewStore(db *sql.DB, resultsDir string) *Store {
	return &Store{db: db, resultsDir: resultsDir}
}

const jobColumns = `id, status, progress_completed, progress_total, request,
	message, cost_so_far, error_kind, error_message, results_ref,
	created_at, updated_at`

// Create inserts a new pending job with an immutable request snapshot
func (s *Store) Create(req Request) (*Job, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal job request")
	}

	now := time.Now().UTC()
	job := &Job{
		ID:     "job_" + uuid.NewString(),
		Status: StatusPending,
		Progress: Progress{
			Completed: 0,
			Total:     req.EstimatedBatches,
		},
		Request:   req,
		Message:   "Job created, waiting to start",
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO analysis_jobs (
			id, status, progress_completed, progress_total, request,
			message, cost_so_far, error_kind, error_message, results_ref,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, '', '', '', ?, ?)
	`

	_, err = s.db.Exec(query,
		job.ID,
		job.Status,
		job.Progress.Completed,
		job.Progress.Total,
		string(requestJSON),
		job.Message,
		job.CostSoFar,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create job")
	}

	return job, nil
}

// Get retrieves a job by ID. Returns ErrNotFound for unknown ids.
func (s *Store) Get(id string) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs WHERE id = ?`

	job, err := scanJob(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get job")
	}

	return job, nil
}

// UpdateProgress records batch progress on a job. The first update moves a
// pending job to running. Terminal jobs reject updates with
// ErrInvalidTransition, as does any attempt to move progress backwards.
func (s *Store) UpdateProgress(id string, completed, total int, message string, costSoFar float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	job, err := scanJob(tx.QueryRow(`SELECT `+jobColumns+` FROM analysis_jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load job for progress update")
	}

	if job.Status.IsTerminal() {
		return errors.Wrapf(errors.ErrInvalidTransition,
			"job %s is %s and cannot accept progress updates", id, job.Status)
	}
	if completed < job.Progress.Completed {
		return errors.Wrapf(errors.ErrInvalidTransition,
			"job %s progress cannot move backwards (%d -> %d)", id, job.Progress.Completed, completed)
	}

	if message == "" {
		message = job.Message
	}

	_, err = tx.Exec(`
		UPDATE analysis_jobs
		SET status = ?, progress_completed = ?, progress_total = ?,
		    message = ?, cost_so_far = ?, updated_at = ?
		WHERE id = ?`,
		StatusRunning, completed, total, message, costSoFar, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update job progress")
	}

	return errors.Wrap(tx.Commit(), "failed to commit progress update")
}

// Complete marks a job complete and persists its results payload. The
// payload is written to a temp file and renamed so readers never observe
// a partially written file. Terminal jobs reject completion; the check
// and the write share a transaction so two racing terminal transitions
// cannot both land.
func (s *Store) Complete(id string, results *Results) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	job, err := scanJob(tx.QueryRow(`SELECT `+jobColumns+` FROM analysis_jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load job for completion")
	}
	if job.Status.IsTerminal() {
		return errors.Wrapf(errors.ErrInvalidTransition,
			"job %s is already %s", id, job.Status)
	}

	resultsPath, err := s.writeResults(id, results)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE analysis_jobs
		SET status = ?, progress_completed = progress_total,
		    message = 'Analysis complete', cost_so_far = ?,
		    results_ref = ?, updated_at = ?
		WHERE id = ?`,
		StatusComplete, results.TotalCost, resultsPath, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark job complete")
	}

	return errors.Wrap(tx.Commit(), "failed to commit job completion")
}

// Fail marks a job failed, recording the error kind and message. Progress
// is left frozen at its last value. Terminal jobs reject the transition,
// checked and written in one transaction.
func (s *Store) Fail(id string, jobErr error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	job, err := scanJob(tx.QueryRow(`SELECT `+jobColumns+` FROM analysis_jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load job for failure")
	}
	if job.Status.IsTerminal() {
		return errors.Wrapf(errors.ErrInvalidTransition,
			"job %s is already %s", id, job.Status)
	}

	message := "Analysis failed"
	errorMessage := ""
	errorKind := "unavailable"
	if jobErr != nil {
		errorMessage = jobErr.Error()
		errorKind = errors.Kind(jobErr)
		message = "Analysis failed: " + errorMessage
	}

	_, err = tx.Exec(`
		UPDATE analysis_jobs
		SET status = ?, message = ?, error_kind = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		StatusError, message, errorKind, errorMessage, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark job failed")
	}

	return errors.Wrap(tx.Commit(), "failed to commit job failure")
}

// List returns jobs ordered most recent first, optionally filtered by status
func (s *Store) List(status *Status, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	var err error

	baseQuery := `SELECT ` + jobColumns + ` FROM analysis_jobs`
	if status != nil {
		rows, err = s.db.Query(baseQuery+` WHERE status = ? ORDER BY created_at DESC LIMIT ?`, *status, limit)
	} else {
		rows, err = s.db.Query(baseQuery+` ORDER BY created_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()

	var jobList []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan job")
		}
		jobList = append(jobList, job)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating jobs")
	}

	return jobList, nil
}

// LoadResults returns the results payload of a completed job. Unknown
// ids return ErrNotFound; jobs still in flight return ErrNotReady with
// the current status and progress attached.
func (s *Store) LoadResults(id string) (*Results, error) {
	job, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case StatusComplete:
		// Fall through to read the payload
	case StatusError:
		return nil, errors.Wrapf(errors.ErrNotReady,
			"job %s failed: %s", id, job.ErrorMessage)
	default:
		err := errors.Wrapf(errors.ErrNotReady,
			"job %s is %s (%d/%d batches)", id, job.Status, job.Progress.Completed, job.Progress.Total)
		return nil, errors.WithDetailf(err, "poll get_job_status until the job completes")
	}

	data, err := os.ReadFile(job.ResultsRef)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("results file missing for job %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read results file")
	}

	var results Results
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal results")
	}

	return &results, nil
}

// writeResults persists the results payload atomically via temp file + rename
func (s *Store) writeResults(id string, results *Results) (string, error) {
	if err := os.MkdirAll(s.resultsDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create results directory")
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal results")
	}

	finalPath := filepath.Join(s.resultsDir, id+"_results.json")
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write results file")
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", errors.Wrap(err, "failed to finalize results file")
	}

	return finalPath, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var requestJSON string

	err := row.Scan(
		&job.ID,
		&job.Status,
		&job.Progress.Completed,
		&job.Progress.Total,
		&requestJSON,
		&job.Message,
		&job.CostSoFar,
		&job.ErrorKind,
		&job.ErrorMessage,
		&job.ResultsRef,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(requestJSON), &job.Request); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal job request")
	}

	return &job, nil
}
