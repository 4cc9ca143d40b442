package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

func TestJobStoreCreateAndGet(t *testing.T) {
	store := NewJobStore()
	job := models.NewImportJob("applications.csv")
	store.Create(job)

	got, ok := store.Get(job.ID)
	if !ok {
		t.Fatal("job not found after Create")
	}
	if got.FileName != "applications.csv" {
		t.Errorf("FileName = %q", got.FileName)
	}
	if got.Status != models.JobStatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}

	if _, ok := store.Get(uuid.New()); ok {
		t.Error("Get of unknown id reported found")
	}
}

func TestJobStoreGetReturnsSnapshot(t *testing.T) {
	store := NewJobStore()
	job := models.NewImportJob("a.csv")
	store.Create(job)

	snapshot, _ := store.Get(job.ID)
	snapshot.Status = models.JobStatusFailed

	fresh, _ := store.Get(job.ID)
	if fresh.Status != models.JobStatusPending {
		t.Errorf("mutating a snapshot leaked into the store: %q", fresh.Status)
	}
}

func TestJobStoreUpdate(t *testing.T) {
	store := NewJobStore()
	job := models.NewImportJob("a.csv")
	store.Create(job)
	before := job.UpdatedAt

	store.Update(job.ID, func(j *models.ImportJob) {
		j.Status = models.JobStatusProcessing
		j.Progress = models.Progress{Stage: models.StageParsing, Percent: 10}
	})

	got, _ := store.Get(job.ID)
	if got.Status != models.JobStatusProcessing {
		t.Errorf("Status = %q, want processing", got.Status)
	}
	if got.Progress.Percent != 10 {
		t.Errorf("Progress.Percent = %v, want 10", got.Progress.Percent)
	}
	if !got.UpdatedAt.After(before) && !got.UpdatedAt.Equal(before) {
		t.Error("UpdatedAt not refreshed")
	}
}

func TestJobStoreCancel(t *testing.T) {
	store := NewJobStore()
	job := models.NewImportJob("a.csv")
	store.Create(job)

	ctx, cancel := context.WithCancel(context.Background())
	store.BindCancel(job.ID, cancel)

	if !store.Cancel(job.ID) {
		t.Fatal("Cancel returned false for a running job")
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("bound context not cancelled")
	}

	if store.Cancel(uuid.New()) {
		t.Error("Cancel of unknown job returned true")
	}
}

func TestJobStoreCancelTerminalJob(t *testing.T) {
	store := NewJobStore()
	job := models.NewImportJob("a.csv")
	store.Create(job)
	store.Update(job.ID, func(j *models.ImportJob) {
		j.Status = models.JobStatusCompleted
	})

	if store.Cancel(job.ID) {
		t.Error("Cancel of a completed job returned true")
	}
}
