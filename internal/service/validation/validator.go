package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// Result is the full validation output for one mapped row set. Errors block
// their row; warnings do not. Duplicate groups require resolution, never
// rejection.
type Result struct {
	Errors          []*errors.ValidationError   `json:"errors"`
	Warnings        []*errors.ValidationWarning `json:"warnings"`
	DuplicateGroups []models.DuplicateGroup     `json:"duplicate_groups"`
	Summary         models.ValidationSummary    `json:"validation_summary"`
}

// BlockedRows returns the set of row indices carrying at least one error.
func (r *Result) BlockedRows() map[int]bool {
	blocked := make(map[int]bool)
	for _, e := range r.Errors {
		blocked[e.RowIndex] = true
	}
	return blocked
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// dateLayouts are tried in order when parsing date cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses a calendar date cell against the accepted layouts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Validator checks mapped rows against field constraints.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRows validates every row against the mapping and clusters
// duplicates, optionally against previously stored applications. Row indices
// in the findings are 0-based data-row positions.
func (v *Validator) ValidateRows(rows []models.RawRow, mapping models.ColumnMapping, existing []*models.Application) *Result {
	result := &Result{}
	rowsWithWarnings := make(map[int]bool)

	for i, row := range rows {
		errs, warns := v.ValidateRow(i, row, mapping)
		result.Errors = append(result.Errors, errs...)
		if len(warns) > 0 {
			rowsWithWarnings[i] = true
			result.Warnings = append(result.Warnings, warns...)
		}
	}

	result.DuplicateGroups = DetectDuplicates(rows, mapping, existing)

	blocked := result.BlockedRows()
	result.Summary = models.ValidationSummary{
		TotalRows:       len(rows),
		ValidRows:       len(rows) - len(blocked),
		RowsWithErrors:  len(blocked),
		RowsWithWarning: len(rowsWithWarnings),
		DuplicateGroups: len(result.DuplicateGroups),
	}
	return result
}

// ValidateRow validates a single mapped row, returning its blocking errors
// and non-blocking warnings. Used directly by the pipeline so validation can
// be chunked into batches.
func (v *Validator) ValidateRow(idx int, row models.RawRow, mapping models.ColumnMapping) ([]*errors.ValidationError, []*errors.ValidationWarning) {
	return v.validateRequired(idx, row, mapping), v.validateOptional(idx, row, mapping)
}

// validateRequired reports blocking errors: company and position must be
// non-empty. A row missing both yields two errors but is still one blocked row.
func (v *Validator) validateRequired(idx int, row models.RawRow, mapping models.ColumnMapping) []*errors.ValidationError {
	var errs []*errors.ValidationError

	if row.TrimmedValue(mapping, models.FieldCompany) == "" {
		errs = append(errs, errors.NewValidationError(idx, models.FieldCompany,
			errors.ErrCodeMissingCompany, "Missing Company name"))
	}
	if row.TrimmedValue(mapping, models.FieldPosition) == "" {
		errs = append(errs, errors.NewValidationError(idx, models.FieldPosition,
			errors.ErrCodeMissingPosition, "Missing Position title"))
	}
	return errs
}

// validateOptional reports non-blocking warnings: unparseable dates and
// out-of-enum status/type/priority values. The import executor substitutes
// defaults for these fields.
func (v *Validator) validateOptional(idx int, row models.RawRow, mapping models.ColumnMapping) []*errors.ValidationWarning {
	var warns []*errors.ValidationWarning

	for _, field := range []string{models.FieldAppliedDate, models.FieldResponseDate, models.FieldInterviewDate} {
		value := row.TrimmedValue(mapping, field)
		if value == "" {
			continue
		}
		if _, err := ParseDate(value); err != nil {
			warns = append(warns, errors.NewValidationWarning(idx, field,
				errors.WarnCodeInvalidDate,
				fmt.Sprintf("Unparseable date %q; a default will be used", value)))
		}
	}

	if value := row.TrimmedValue(mapping, models.FieldStatus); value != "" {
		if _, ok := models.AllowedStatuses[strings.ToLower(value)]; !ok {
			warns = append(warns, errors.NewValidationWarning(idx, models.FieldStatus,
				errors.WarnCodeInvalidStatus,
				fmt.Sprintf("Unknown status %q; defaulting to %s", value, models.StatusPending)))
		}
	}
	if value := row.TrimmedValue(mapping, models.FieldType); value != "" {
		if _, ok := models.AllowedKinds[strings.ToLower(value)]; !ok {
			warns = append(warns, errors.NewValidationWarning(idx, models.FieldType,
				errors.WarnCodeInvalidType,
				fmt.Sprintf("Unknown job type %q; defaulting to %s", value, models.KindFullTime)))
		}
	}
	if value := row.TrimmedValue(mapping, models.FieldPriority); value != "" {
		if _, ok := models.AllowedPriorities[strings.ToLower(value)]; !ok {
			warns = append(warns, errors.NewValidationWarning(idx, models.FieldPriority,
				errors.WarnCodeInvalidPriority,
				fmt.Sprintf("Unknown priority %q; defaulting to %s", value, models.PriorityMedium)))
		}
	}
	if value := row.TrimmedValue(mapping, models.FieldContactEmail); value != "" {
		if !emailRegex.MatchString(value) {
			warns = append(warns, errors.NewValidationWarning(idx, models.FieldContactEmail,
				errors.WarnCodeInvalidEmail,
				fmt.Sprintf("Invalid contact email %q", value)))
		}
	}
	return warns
}
