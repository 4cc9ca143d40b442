package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of an import session.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusReview     JobStatus = "awaiting_review"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ImportJob tracks one import session from upload to completion. Sessions are
// short-lived and held in memory; each owns its working buffers and no state
// is shared across sessions.
type ImportJob struct {
	ID           uuid.UUID        `json:"id"`
	FileName     string           `json:"file_name"`
	Status       JobStatus        `json:"status"`
	Decision     MappingDecision  `json:"decision,omitempty"`
	Detection    *DetectionResult `json:"detection,omitempty"`
	Progress     Progress         `json:"progress"`
	Summary      *ImportSummary   `json:"summary,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewImportJob creates a pending import job for an uploaded file.
func NewImportJob(fileName string) *ImportJob {
	now := time.Now().UTC()
	return &ImportJob{
		ID:        uuid.New(),
		FileName:  fileName,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the job has reached a final state.
func (j *ImportJob) Terminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}
