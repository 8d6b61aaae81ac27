package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a document processing job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusExtracting   JobStatus = "extracting"
	StatusDetecting    JobStatus = "detecting"
	StatusProcessing   JobStatus = "processing"
	StatusSynthesizing JobStatus = "synthesizing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
	StatusPartial      JobStatus = "partial"
)

// PageResult is the per-page outcome: the synthesis-ready chunks and, when
// synthesis ran, the total WAV bytes the engine produced for them.
type PageResult struct {
	Index      int      `json:"page"`
	Chunks     []string `json:"chunks"`
	AudioBytes int64    `json:"audio_bytes,omitempty"`
}

// Job tracks the state of a single document run.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`

	// Request options; empty strings select the configured defaults.
	Strategy   string `json:"strategy,omitempty"`
	Speaker    string `json:"speaker,omitempty"`
	Synthesize bool   `json:"synthesize"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	results  []PageResult
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalPages        int      `json:"total_pages"`
	PagesProcessed    int      `json:"pages_processed"`
	Chunks            int      `json:"chunks"`
	SynthesizedChunks int      `json:"synthesized_chunks"`
	Errors            []string `json:"errors"`
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

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a page or chunk level error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrPagesProcessed atomically increments the processed-page counter.
func (j *Job) IncrPagesProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesProcessed++
	j.UpdatedAt = time.Now()
}

// AddChunks records produced and synthesized chunk counts.
func (j *Job) AddChunks(produced, synthesized int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Chunks += produced
	j.Progress.SynthesizedChunks += synthesized
	j.UpdatedAt = time.Now()
}

// SetTotalPages records the page count found at extraction.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResults stores the ordered page results.
func (j *Job) SetResults(results []PageResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.UpdatedAt = time.Now()
}

// Results returns the ordered page results.
func (j *Job) Results() []PageResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.results
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string       `json:"job_id"`
	Filename    string       `json:"filename"`
	Strategy    string       `json:"strategy,omitempty"`
	Speaker     string       `json:"speaker,omitempty"`
	Synthesize  bool         `json:"synthesize"`
	Status      JobStatus    `json:"status"`
	Phase       string       `json:"phase"`
	ContentHash string       `json:"content_hash,omitempty"`
	Progress    Progress     `json:"progress"`
	Results     []PageResult `json:"results,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. Page results are only
// included once the job has settled.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		Strategy:    j.Strategy,
		Speaker:     j.Speaker,
		Synthesize:  j.Synthesize,
		Status:      j.Status,
		Phase:       j.Phase,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TotalPages:        j.Progress.TotalPages,
			PagesProcessed:    j.Progress.PagesProcessed,
			Chunks:            j.Progress.Chunks,
			SynthesizedChunks: j.Progress.SynthesizedChunks,
			Errors:            errs,
		},
	}
	switch j.Status {
	case StatusCompleted, StatusPartial:
		snap.Results = j.results
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
