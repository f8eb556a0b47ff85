package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a batch affix job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDiscovering JobStatus = "discovering"
	StatusProcessing  JobStatus = "processing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// Outcome is what happened to a single page.
type Outcome string

const (
	OutcomeUpdated Outcome = "updated" // affix written into the placeholder
	OutcomeEmptied Outcome = "emptied" // no headings to show, placeholder hidden
	OutcomeSkipped Outcome = "skipped" // page has no placeholder
	OutcomeFailed  Outcome = "failed"
)

// Job tracks the state of a single batch run over a directory of pages.
type Job struct {
	mu sync.Mutex

	ID   string `json:"job_id"`
	Root string `json:"root"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalPages     int      `json:"total_pages"`
	PagesProcessed int      `json:"pages_processed"`
	PagesUpdated   int      `json:"pages_updated"`
	PagesEmptied   int      `json:"pages_emptied"`
	PagesSkipped   int      `json:"pages_skipped"`
	PagesFailed    int      `json:"pages_failed"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job for root.
func NewJob(root string) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Root:      root,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newJobID returns a UUIDv7. Its millisecond timestamp prefix makes job IDs
// sort by submission time.
func newJobID() string {
	return uuid.Must(uuid.NewV7()).String()
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
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

// SetTotalPages records the number of discovered pages.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// RecordPage counts one processed page.
func (j *Job) RecordPage(o Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesProcessed++
	switch o {
	case OutcomeUpdated:
		j.Progress.PagesUpdated++
	case OutcomeEmptied:
		j.Progress.PagesEmptied++
	case OutcomeSkipped:
		j.Progress.PagesSkipped++
	case OutcomeFailed:
		j.Progress.PagesFailed++
	}
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Root      string    `json:"root"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Root:      j.Root,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
