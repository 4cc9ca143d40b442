package importservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
	"github.com/ummugulsunn/ai-application-tracker/internal/metrics"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/detection"
	"github.com/ummugulsunn/ai-application-tracker/internal/service/validation"
)

// IDGenerator produces application identifiers. The default is UUID-backed;
// tests inject deterministic generators. Generators are session-scoped, so
// independent import sessions never interfere.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// NewUUIDGenerator returns the default UUID-backed identifier source.
func NewUUIDGenerator() IDGenerator { return uuidGenerator{} }

// Options controls one import execution.
type Options struct {
	// ExistingApplications supplies stored records for duplicate detection and
	// identifier uniqueness. Read-only from the pipeline's perspective.
	ExistingApplications []*models.Application
	// DuplicateResolutions maps duplicate-group index to the confirmed
	// decision. Every detected group needs one; absence is "resolution
	// required", never silently resolved.
	DuplicateResolutions map[int]models.DuplicateResolution
	// SkipValidation trusts the caller's earlier validation pass.
	SkipValidation bool
	// OnlyValidRows imports the valid remainder when blocking errors exist,
	// counting erroring rows as skipped. Without it, blocking errors abort.
	OnlyValidRows bool
	// IDGen overrides the identifier source. Nil means UUID.
	IDGen IDGenerator
	// Now overrides the clock used for date defaults. Nil means time.Now.
	Now func() time.Time
}

// Result is the output of one executed import.
type Result struct {
	// Applications are the newly constructed records, in original row order.
	Applications []*models.Application `json:"applications"`
	// Updates are merge intents against matched existing records; applying
	// them is delegated to the external store.
	Updates []*models.Application `json:"updates,omitempty"`
	Summary models.ImportSummary  `json:"summary"`
}

// Service runs the import pipeline: parse, detect, validate, execute.
// Each call owns its working buffers; the service itself is stateless and
// safe for concurrent sessions.
type Service struct {
	detector  *detection.Detector
	validator *validation.Validator
	metrics   *metrics.Collector
	logger    zerolog.Logger
	cfg       config.ImportConfig
}

// NewService creates a new import service.
func NewService(
	detector *detection.Detector,
	metricsCollector *metrics.Collector,
	logger zerolog.Logger,
	cfg config.ImportConfig,
) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.IDMaxRetries <= 0 {
		cfg.IDMaxRetries = 5
	}
	return &Service{
		detector:  detector,
		validator: validation.NewValidator(),
		metrics:   metricsCollector,
		logger:    logger,
		cfg:       cfg,
	}
}

// Detector exposes the column detector used by this service.
func (s *Service) Detector() *detection.Detector { return s.detector }

// ValidateData validates mapped rows, including duplicate clustering against
// the optional existing records.
func (s *Service) ValidateData(rows []models.RawRow, mapping models.ColumnMapping, existing []*models.Application) *validation.Result {
	return s.validator.ValidateRows(rows, mapping, existing)
}

// ImportWithValidation applies a confirmed mapping and duplicate resolutions
// to produce final Application records and an ImportSummary. Rows are
// processed in original order, chunked into batches with cancellation checked
// at every batch boundary. Fatal errors leave no partial output.
func (s *Service) ImportWithValidation(
	ctx context.Context,
	rows []models.RawRow,
	mapping models.ColumnMapping,
	opts Options,
	onProgress models.ProgressFunc,
) (*Result, error) {
	start := time.Now()

	var vr *validation.Result
	if opts.SkipValidation {
		vr = &validation.Result{
			DuplicateGroups: validation.DetectDuplicates(rows, mapping, opts.ExistingApplications),
		}
	} else {
		vr = s.validator.ValidateRows(rows, mapping, opts.ExistingApplications)
	}

	blocked := vr.BlockedRows()
	if len(rows) > 0 && len(blocked) == len(rows) {
		return nil, apperrors.ErrNoValidRows
	}
	if len(blocked) > 0 && !opts.OnlyValidRows {
		return nil, apperrors.ErrRowsBlocked
	}
	for i := range vr.DuplicateGroups {
		if _, ok := opts.DuplicateResolutions[i]; !ok {
			return nil, fmt.Errorf("group %d: %w", i, apperrors.ErrResolutionRequired)
		}
	}

	resolutionByRow := make(map[int]models.DuplicateResolution)
	existingByRow := make(map[int]*models.Application)
	existingByID := make(map[string]*models.Application, len(opts.ExistingApplications))
	for _, app := range opts.ExistingApplications {
		existingByID[app.ID] = app
	}
	for i, group := range vr.DuplicateGroups {
		resolution := opts.DuplicateResolutions[i]
		for _, rowIdx := range group.MemberRowIndices {
			resolutionByRow[rowIdx] = resolution
			if group.ExistingID != "" {
				existingByRow[rowIdx] = existingByID[group.ExistingID]
			}
		}
	}

	gen := &sessionIDs{
		source:     opts.IDGen,
		maxRetries: s.cfg.IDMaxRetries,
		taken:      make(map[string]bool, len(opts.ExistingApplications)),
	}
	if gen.source == nil {
		gen.source = uuidGenerator{}
	}
	for _, app := range opts.ExistingApplications {
		gen.taken[app.ID] = true
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	result := &Result{
		Summary: models.ImportSummary{
			TotalRows:       len(rows),
			DuplicatesFound: len(vr.DuplicateGroups),
		},
	}
	for _, e := range vr.Errors {
		result.Summary.Errors = append(result.Summary.Errors, e.Error())
	}

	for batchStart := 0; batchStart < len(rows); batchStart += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.ErrCancelled
		}
		batchEnd := batchStart + s.cfg.BatchSize
		if batchEnd > len(rows) {
			batchEnd = len(rows)
		}
		batchTime := time.Now()

		for i := batchStart; i < batchEnd; i++ {
			if blocked[i] {
				result.Summary.SkippedRows++
				continue
			}
			switch resolutionByRow[i] {
			case models.ResolutionSkip:
				result.Summary.SkippedRows++
				continue
			case models.ResolutionMerge:
				if target := existingByRow[i]; target != nil {
					update := s.mergeRow(target, rows[i], mapping, now())
					result.Updates = append(result.Updates, update)
					result.Summary.SuccessfulImports++
					continue
				}
				// Merge without an existing match degrades to a new record.
				fallthrough
			default:
				app, err := s.buildApplication(rows[i], mapping, gen, now())
				if err != nil {
					return nil, err
				}
				result.Applications = append(result.Applications, app)
				result.Summary.SuccessfulImports++
			}
		}

		if s.metrics != nil {
			s.metrics.RecordImportBatch(time.Since(batchTime).Seconds())
		}
		onProgress.Report(models.Progress{
			Stage:      models.StageImporting,
			Percent:    float64(batchEnd) / float64(len(rows)) * 100,
			Message:    fmt.Sprintf("Imported %d of %d rows", batchEnd, len(rows)),
			CurrentRow: batchEnd,
			TotalRows:  len(rows),
		})
	}

	if s.metrics != nil {
		s.metrics.RecordImportRows("imported", result.Summary.SuccessfulImports)
		s.metrics.RecordImportRows("skipped", result.Summary.SkippedRows)
		s.metrics.RecordDuplicateGroups(result.Summary.DuplicatesFound)
	}
	s.logger.Info().
		Int("total_rows", result.Summary.TotalRows).
		Int("imported", result.Summary.SuccessfulImports).
		Int("skipped", result.Summary.SkippedRows).
		Int("duplicate_groups", result.Summary.DuplicatesFound).
		Dur("duration", time.Since(start)).
		Msg("Import completed")

	return result, nil
}

// sessionIDs guards identifier uniqueness within one import session: new ids
// must not collide with existing records or earlier rows of the same batch.
type sessionIDs struct {
	source     IDGenerator
	maxRetries int
	taken      map[string]bool
}

func (g *sessionIDs) next() (string, error) {
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		id := g.source.NewID()
		if !g.taken[id] {
			g.taken[id] = true
			return id, nil
		}
	}
	return "", apperrors.ErrIdentifierCollision
}

// buildApplication constructs a normalized record from a mapped row with
// field defaults applied.
func (s *Service) buildApplication(row models.RawRow, mapping models.ColumnMapping, gen *sessionIDs, now time.Time) (*models.Application, error) {
	id, err := gen.next()
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		ID:            id,
		Company:       row.TrimmedValue(mapping, models.FieldCompany),
		Position:      row.TrimmedValue(mapping, models.FieldPosition),
		Location:      row.TrimmedValue(mapping, models.FieldLocation),
		Salary:        row.TrimmedValue(mapping, models.FieldSalary),
		Notes:         row.TrimmedValue(mapping, models.FieldNotes),
		ContactPerson: row.TrimmedValue(mapping, models.FieldContactPerson),
		ContactEmail:  row.TrimmedValue(mapping, models.FieldContactEmail),
		Website:       row.TrimmedValue(mapping, models.FieldWebsite),
		Status:        models.StatusPending,
		Type:          models.KindFullTime,
		Priority:      models.PriorityMedium,
		AppliedDate:   now.UTC().Truncate(24 * time.Hour),
		Tags:          parseTags(row.TrimmedValue(mapping, models.FieldTags)),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}

	if v := row.TrimmedValue(mapping, models.FieldStatus); v != "" {
		if status, ok := models.AllowedStatuses[strings.ToLower(v)]; ok {
			app.Status = status
		}
	}
	if v := row.TrimmedValue(mapping, models.FieldType); v != "" {
		if kind, ok := models.AllowedKinds[strings.ToLower(v)]; ok {
			app.Type = kind
		}
	}
	if v := row.TrimmedValue(mapping, models.FieldPriority); v != "" {
		if prio, ok := models.AllowedPriorities[strings.ToLower(v)]; ok {
			app.Priority = prio
		}
	}
	if v := row.TrimmedValue(mapping, models.FieldAppliedDate); v != "" {
		if t, err := validation.ParseDate(v); err == nil {
			app.AppliedDate = t
		}
	}
	if v := row.TrimmedValue(mapping, models.FieldResponseDate); v != "" {
		if t, err := validation.ParseDate(v); err == nil {
			app.ResponseDate = &t
		}
	}
	if v := row.TrimmedValue(mapping, models.FieldInterviewDate); v != "" {
		if t, err := validation.ParseDate(v); err == nil {
			app.InterviewDate = &t
		}
	}
	return app, nil
}

// mergeRow produces an update intent: the existing record's identity with
// non-empty row fields layered on top.
func (s *Service) mergeRow(existing *models.Application, row models.RawRow, mapping models.ColumnMapping, now time.Time) *models.Application {
	merged := *existing
	merged.Tags = append([]string(nil), existing.Tags...)

	if v := row.TrimmedValue(mapping, models.FieldLocation); v != "" {
		merged.Location = v
	}
	if v := row.TrimmedValue(mapping, models.FieldSalary); v != "" {
		merged.Salary = v
	}
	if v := row.TrimmedValue(mapping, models.FieldNotes); v != "" {
		merged.Notes = v
	}
	if v := row.TrimmedValue(mapping, models.FieldContactPerson); v != "" {
		merged.ContactPerson = v
	}
	if v := row.TrimmedValue(mapping, models.FieldContactEmail); v != "" {
		merged.ContactEmail = v
	}
	if v := row.TrimmedValue(mapping, models.FieldWebsite); v != "" {
		merged.Website = v
	}
	if v := row.TrimmedValue(mapping, models.FieldStatus); v != "" {
		if status, ok := models.AllowedStatuses[strings.ToLower(v)]; ok {
			merged.Status = status
		}
	}
	if v := row.TrimmedValue(mapping, models.FieldAppliedDate); v != "" {
		if t, err := validation.ParseDate(v); err == nil {
			merged.AppliedDate = t
		}
	}
	if tags := parseTags(row.TrimmedValue(mapping, models.FieldTags)); len(tags) > 0 {
		merged.Tags = mergeTags(merged.Tags, tags)
	}
	merged.UpdatedAt = now.UTC()
	return &merged
}

// parseTags splits a delimiter-separated tags cell on ';' or ','.
func parseTags(value string) []string {
	if value == "" {
		return nil
	}
	sep := ","
	if strings.Contains(value, ";") {
		sep = ";"
	}
	var tags []string
	for _, t := range strings.Split(value, sep) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func mergeTags(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, t := range base {
		seen[strings.ToLower(t)] = true
	}
	for _, t := range extra {
		if !seen[strings.ToLower(t)] {
			base = append(base, t)
			seen[strings.ToLower(t)] = true
		}
	}
	return base
}
