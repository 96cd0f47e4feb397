package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a formatting job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusAnalyzing  JobStatus = "analyzing"
	StatusChunking   JobStatus = "chunking"
	StatusProcessing JobStatus = "processing"
	StatusMerging    JobStatus = "merging"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one document's run through the pipeline.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	MaxTokens int `json:"max_tokens"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	sourceText string
	result     string
	errors     []string
}

// Progress tracks unit counts through the run. Failures lower the success
// ratio, never the content: failed units still contribute fallback output.
type Progress struct {
	TotalUnits     int      `json:"total_units"`
	UnitsProcessed int      `json:"units_processed"`
	UnitsSucceeded int      `json:"units_succeeded"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job for page-marked source text.
func NewJob(filename, title, sourceText string, maxTokens int) *Job {
	now := time.Now()
	return &Job{
		ID:         newULID(),
		Filename:   filename,
		Title:      title,
		Status:     StatusQueued,
		Phase:      "queued",
		MaxTokens:  maxTokens,
		CreatedAt:  now,
		UpdatedAt:  now,
		sourceText: sourceText,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalUnits records how many units the run will process.
func (j *Job) SetTotalUnits(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalUnits = n
	j.UpdatedAt = time.Now()
}

// RecordUnit counts one processed unit.
func (j *Job) RecordUnit(success bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.UnitsProcessed++
	if success {
		j.Progress.UnitsSucceeded++
	}
	j.UpdatedAt = time.Now()
}

// SourceText returns the page-marked input.
func (j *Job) SourceText() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sourceText
}

// SetResult stores the merged document.
func (j *Job) SetResult(doc string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = doc
	j.UpdatedAt = time.Now()
}

// Result returns the merged document, empty until the run finishes.
func (j *Job) Result() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// SuccessRatio is units succeeded over units processed, 1.0 for empty runs.
func (j *Job) SuccessRatio() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Progress.UnitsProcessed == 0 {
		return 1.0
	}
	return float64(j.Progress.UnitsSucceeded) / float64(j.Progress.UnitsProcessed)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	Filename     string    `json:"filename"`
	Title        string    `json:"title"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	Progress     Progress  `json:"progress"`
	SuccessRatio float64   `json:"success_ratio"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	ratio := 1.0
	if j.Progress.UnitsProcessed > 0 {
		ratio = float64(j.Progress.UnitsSucceeded) / float64(j.Progress.UnitsProcessed)
	}
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Title:    j.Title,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			TotalUnits:     j.Progress.TotalUnits,
			UnitsProcessed: j.Progress.UnitsProcessed,
			UnitsSucceeded: j.Progress.UnitsSucceeded,
			Errors:         errs,
		},
		SuccessRatio: ratio,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
