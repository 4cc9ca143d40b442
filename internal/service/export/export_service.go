package exportservice

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
	"github.com/ummugulsunn/ai-application-tracker/internal/metrics"
)

// ApplicationSource streams stored applications in batches.
type ApplicationSource interface {
	GetAllWithCursor(ctx context.Context, batchSize int, fn func([]*models.Application) error) error
}

// exportColumns is the header row of every export. Re-importing an exported
// file maps cleanly because the column names match the detector's aliases.
var exportColumns = []string{
	"Company", "Position", "Location", "Status", "Type", "Priority",
	"Applied Date", "Response Date", "Interview Date", "Salary",
	"Notes", "Contact Person", "Contact Email", "Website", "Tags",
}

// Service streams stored applications as CSV.
type Service struct {
	source  ApplicationSource
	metrics *metrics.Collector
	logger  zerolog.Logger
	cfg     config.ExportConfig
}

// NewService creates an export service.
func NewService(source ApplicationSource, metricsCollector *metrics.Collector, logger zerolog.Logger, cfg config.ExportConfig) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	return &Service{
		source:  source,
		metrics: metricsCollector,
		logger:  logger,
		cfg:     cfg,
	}
}

// ExportCSV writes all stored applications to w as CSV, streaming in batches
// so exports never hold the full dataset in memory.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	startTime := time.Now()
	writer := csv.NewWriter(w)

	if err := writer.Write(exportColumns); err != nil {
		return 0, fmt.Errorf("failed to write export header: %w", err)
	}

	total := 0
	err := s.source.GetAllWithCursor(ctx, s.cfg.BatchSize, func(batch []*models.Application) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, app := range batch {
			if err := writer.Write(exportRecord(app)); err != nil {
				return fmt.Errorf("failed to write export row: %w", err)
			}
		}
		total += len(batch)
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return total, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return total, err
	}

	if s.metrics != nil {
		s.metrics.RecordExportRecords(total)
	}
	s.logger.Info().
		Int("records", total).
		Dur("duration", time.Since(startTime)).
		Msg("Export completed")
	return total, nil
}

func exportRecord(app *models.Application) []string {
	return []string{
		app.Company,
		app.Position,
		app.Location,
		string(app.Status),
		string(app.Type),
		string(app.Priority),
		formatDate(&app.AppliedDate),
		formatDate(app.ResponseDate),
		formatDate(app.InterviewDate),
		app.Salary,
		app.Notes,
		app.ContactPerson,
		app.ContactEmail,
		app.Website,
		strings.Join(app.Tags, "; "),
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
