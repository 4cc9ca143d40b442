package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// JobStore is an in-memory registry of import sessions. Sessions are
// short-lived and owned by a single process, so no persistence is needed;
// finished jobs are evicted after a retention window.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[uuid.UUID]*jobEntry
	maxAge  time.Duration
	maxJobs int
}

type jobEntry struct {
	job    *models.ImportJob
	cancel context.CancelFunc
}

// NewJobStore creates an empty registry.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:    make(map[uuid.UUID]*jobEntry),
		maxAge:  time.Hour,
		maxJobs: 1000,
	}
}

// Create registers a job.
func (s *JobStore) Create(job *models.ImportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.jobs[job.ID] = &jobEntry{job: job}
}

// BindCancel attaches the cancel function of the job's processing context so
// Cancel can interrupt it at the next batch boundary.
func (s *JobStore) BindCancel(id uuid.UUID, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[id]; ok {
		e.cancel = cancel
	}
}

// Get returns a snapshot of the job.
func (s *JobStore) Get(id uuid.UUID) (*models.ImportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *e.job
	return &snapshot, true
}

// Update mutates the job under the store lock.
func (s *JobStore) Update(id uuid.UUID, fn func(*models.ImportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[id]; ok {
		fn(e.job)
		e.job.UpdatedAt = time.Now().UTC()
	}
}

// Cancel requests cancellation of a running job. Returns false for unknown
// or already-terminal jobs.
func (s *JobStore) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok || e.job.Terminal() {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	return true
}

// evictLocked drops the oldest terminal jobs once the registry outgrows its
// bounds. Caller holds the write lock.
func (s *JobStore) evictLocked() {
	if len(s.jobs) < s.maxJobs {
		cutoff := time.Now().UTC().Add(-s.maxAge)
		for id, e := range s.jobs {
			if e.job.Terminal() && e.job.UpdatedAt.Before(cutoff) {
				delete(s.jobs, id)
			}
		}
		return
	}
	for id, e := range s.jobs {
		if e.job.Terminal() {
			delete(s.jobs, id)
		}
	}
}
