package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// ApplicationStore abstracts persistence for Application records. The import
// pipeline only ever reads from it; writes happen after execution.
type ApplicationStore interface {
	GetAll(ctx context.Context) ([]*models.Application, error)
	CreateBatch(ctx context.Context, apps []*models.Application) (int, error)
	Update(ctx context.Context, app *models.Application) error
}

// JobStore tracks import sessions.
type JobStore interface {
	Create(job *models.ImportJob)
	Get(id uuid.UUID) (*models.ImportJob, bool)
	Update(id uuid.UUID, fn func(*models.ImportJob))
	Cancel(id uuid.UUID) bool
}
