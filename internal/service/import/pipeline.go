package importservice

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/import/parsers"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/validation"
)

// ProcessResult is the outcome of processing a file up to the point where the
// caller either proceeds to import or asks the user to review the mapping.
type ProcessResult struct {
	Data            []models.RawRow         `json:"data"`
	Columns         []string                `json:"columns"`
	DetectedMapping models.ColumnMapping    `json:"detected_mapping"`
	Confidence      models.ConfidenceMap    `json:"confidence"`
	Suggestions     []string                `json:"suggestions"`
	Encoding        string                  `json:"encoding"`
	TemplateID      string                  `json:"template_id,omitempty"`
	Decision        models.MappingDecision  `json:"decision"`
	Validation      *validation.Result      `json:"validation"`
}

// ProcessFile runs parse, detect and validate over raw CSV bytes, reporting
// progress at batch boundaries. Processing is cooperative: cancellation is
// checked between batches and a cancelled run returns ErrCancelled with no
// partial result. Fatal parse errors abort the whole operation.
func (s *Service) ProcessFile(
	ctx context.Context,
	data []byte,
	existing []*models.Application,
	onProgress models.ProgressFunc,
) (*ProcessResult, error) {
	start := time.Now()

	onProgress.Report(models.Progress{
		Stage:   models.StageParsing,
		Percent: 0,
		Message: "Parsing CSV file",
	})
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ErrCancelled
	}

	parsed, err := parsers.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	onProgress.Report(models.Progress{
		Stage:     models.StageParsing,
		Percent:   30,
		Message:   fmt.Sprintf("Parsed %d rows (%s)", len(parsed.Rows), parsed.Encoding),
		TotalRows: len(parsed.Rows),
		Warnings:  parsed.Warnings,
	})

	if err := ctx.Err(); err != nil {
		return nil, apperrors.ErrCancelled
	}
	onProgress.Report(models.Progress{
		Stage:     models.StageDetecting,
		Percent:   35,
		Message:   "Detecting column mapping",
		TotalRows: len(parsed.Rows),
	})
	detected := s.detector.DetectColumns(parsed.Headers)
	detected.Encoding = parsed.Encoding
	decision := s.detector.Decide(detected.Confidence)
	if s.metrics != nil {
		s.metrics.RecordDetection(detected.TemplateID, detected.Confidence[models.FieldCompany])
	}

	result := &ProcessResult{
		Data:            parsed.Rows,
		Columns:         parsed.Headers,
		DetectedMapping: detected.DetectedMapping,
		Confidence:      detected.Confidence,
		Suggestions:     detected.Suggestions,
		Encoding:        parsed.Encoding,
		TemplateID:      detected.TemplateID,
		Decision:        decision,
	}

	vr, err := s.validateBatched(ctx, parsed.Rows, detected.DetectedMapping, existing, onProgress)
	if err != nil {
		return nil, err
	}
	result.Validation = vr

	onProgress.Report(models.Progress{
		Stage:     models.StageCompleted,
		Percent:   100,
		Message:   fmt.Sprintf("Processed %d rows in %s", len(parsed.Rows), time.Since(start).Round(time.Millisecond)),
		TotalRows: len(parsed.Rows),
	})
	return result, nil
}

// validateBatched validates rows in batches so control returns to the caller
// between chunks; suspension points are batch boundaries, never mid-row.
func (s *Service) validateBatched(
	ctx context.Context,
	rows []models.RawRow,
	mapping models.ColumnMapping,
	existing []*models.Application,
	onProgress models.ProgressFunc,
) (*validation.Result, error) {
	vr := &validation.Result{}
	rowsWithWarnings := make(map[int]bool)

	for batchStart := 0; batchStart < len(rows); batchStart += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.ErrCancelled
		}
		batchEnd := batchStart + s.cfg.BatchSize
		if batchEnd > len(rows) {
			batchEnd = len(rows)
		}
		batchTime := time.Now()

		var batchErrors, batchWarnings []string
		for i := batchStart; i < batchEnd; i++ {
			errs, warns := s.validator.ValidateRow(i, rows[i], mapping)
			vr.Errors = append(vr.Errors, errs...)
			for _, e := range errs {
				batchErrors = append(batchErrors, e.Error())
				if s.metrics != nil {
					s.metrics.RecordFinding("error", e.Code)
				}
			}
			if len(warns) > 0 {
				rowsWithWarnings[i] = true
				vr.Warnings = append(vr.Warnings, warns...)
				for _, w := range warns {
					batchWarnings = append(batchWarnings, fmt.Sprintf("row %d: %s", w.RowIndex, w.Message))
					if s.metrics != nil {
						s.metrics.RecordFinding("warning", w.Code)
					}
				}
			}
		}

		if s.metrics != nil {
			s.metrics.RecordImportBatch(time.Since(batchTime).Seconds())
		}
		// Validation spans the 40-95% progress range.
		percent := 40 + float64(batchEnd)/float64(len(rows))*55
		onProgress.Report(models.Progress{
			Stage:      models.StageValidating,
			Percent:    percent,
			Message:    fmt.Sprintf("Validated %d of %d rows", batchEnd, len(rows)),
			CurrentRow: batchEnd,
			TotalRows:  len(rows),
			Errors:     batchErrors,
			Warnings:   batchWarnings,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.ErrCancelled
	}
	vr.DuplicateGroups = validation.DetectDuplicates(rows, mapping, existing)

	blocked := vr.BlockedRows()
	vr.Summary = models.ValidationSummary{
		TotalRows:       len(rows),
		ValidRows:       len(rows) - len(blocked),
		RowsWithErrors:  len(blocked),
		RowsWithWarning: len(rowsWithWarnings),
		DuplicateGroups: len(vr.DuplicateGroups),
	}
	return vr, nil
}
