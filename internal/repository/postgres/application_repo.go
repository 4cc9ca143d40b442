package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// ApplicationRepository persists Application records
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

type applicationRow struct {
	models.Application
	TagsRaw pq.StringArray `db:"tags"`
}

const applicationColumns = `id, company, position, location, status, type, priority,
	applied_date, response_date, interview_date, salary, notes,
	contact_person, contact_email, website, tags, created_at, updated_at`

// GetAll returns every stored application ordered by applied date descending.
func (r *ApplicationRepository) GetAll(ctx context.Context) ([]*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications ORDER BY applied_date DESC, id`, applicationColumns)

	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	apps := make([]*models.Application, 0, len(rows))
	for i := range rows {
		app := rows[i].Application
		app.Tags = []string(rows[i].TagsRaw)
		apps = append(apps, &app)
	}
	return apps, nil
}

// GetAllWithCursor streams applications in batches via the callback.
func (r *ApplicationRepository) GetAllWithCursor(ctx context.Context, batchSize int, fn func([]*models.Application) error) error {
	lastID := ""
	for {
		query := fmt.Sprintf(`SELECT %s FROM applications WHERE id > $1 ORDER BY id LIMIT $2`, applicationColumns)

		var rows []applicationRow
		if err := r.db.SelectContext(ctx, &rows, query, lastID, batchSize); err != nil {
			return fmt.Errorf("failed to fetch application batch: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		batch := make([]*models.Application, 0, len(rows))
		for i := range rows {
			app := rows[i].Application
			app.Tags = []string(rows[i].TagsRaw)
			batch = append(batch, &app)
		}
		if err := fn(batch); err != nil {
			return err
		}
		lastID = batch[len(batch)-1].ID
		if len(rows) < batchSize {
			return nil
		}
	}
}

// CreateBatch inserts applications in a single multi-row statement.
func (r *ApplicationRepository) CreateBatch(ctx context.Context, apps []*models.Application) (int, error) {
	if len(apps) == 0 {
		return 0, nil
	}

	valueStrings := make([]string, 0, len(apps))
	valueArgs := make([]interface{}, 0, len(apps)*18)
	for i, app := range apps {
		base := i * 18
		placeholders := make([]string, 18)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs,
			app.ID, app.Company, app.Position, app.Location, app.Status, app.Type,
			app.Priority, app.AppliedDate, app.ResponseDate, app.InterviewDate,
			app.Salary, app.Notes, app.ContactPerson, app.ContactEmail,
			app.Website, pq.StringArray(app.Tags), app.CreatedAt, app.UpdatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO applications (%s)
		VALUES %s
		ON CONFLICT (id) DO NOTHING`,
		applicationColumns, strings.Join(valueStrings, ", "))

	result, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert applications: %w", err)
	}
	count, _ := result.RowsAffected()
	return int(count), nil
}

// Update applies a merge intent produced by the import executor.
func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	query := `
		UPDATE applications SET
			company = $2, position = $3, location = $4, status = $5, type = $6,
			priority = $7, applied_date = $8, response_date = $9,
			interview_date = $10, salary = $11, notes = $12,
			contact_person = $13, contact_email = $14, website = $15,
			tags = $16, updated_at = $17
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		app.ID, app.Company, app.Position, app.Location, app.Status, app.Type,
		app.Priority, app.AppliedDate, app.ResponseDate, app.InterviewDate,
		app.Salary, app.Notes, app.ContactPerson, app.ContactEmail,
		app.Website, pq.StringArray(app.Tags), app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update application %s: %w", app.ID, err)
	}
	return nil
}

// Count returns the number of stored applications.
func (r *ApplicationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM applications`); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}
