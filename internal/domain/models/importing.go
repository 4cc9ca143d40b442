package models

import "strings"

// Target field names for column mapping. These are the canonical keys used in
// ColumnMapping and ConfidenceMap; FieldCompany is the only mandatory one.
const (
	FieldCompany       = "company"
	FieldPosition      = "position"
	FieldLocation      = "location"
	FieldStatus        = "status"
	FieldType          = "type"
	FieldPriority      = "priority"
	FieldAppliedDate   = "appliedDate"
	FieldResponseDate  = "responseDate"
	FieldInterviewDate = "interviewDate"
	FieldSalary        = "salary"
	FieldNotes         = "notes"
	FieldContactPerson = "contactPerson"
	FieldContactEmail  = "contactEmail"
	FieldWebsite       = "website"
	FieldTags          = "tags"
)

// TargetFields lists every mappable field in canonical order.
var TargetFields = []string{
	FieldCompany,
	FieldPosition,
	FieldLocation,
	FieldStatus,
	FieldType,
	FieldPriority,
	FieldAppliedDate,
	FieldResponseDate,
	FieldInterviewDate,
	FieldSalary,
	FieldNotes,
	FieldContactPerson,
	FieldContactEmail,
	FieldWebsite,
	FieldTags,
}

// RawRow is an ordered mapping from original CSV column name to the raw cell
// value of a single data row. Rows are immutable once parsed and indexed by
// 0-based position, header excluded.
type RawRow map[string]string

// ColumnMapping maps a target field name to the source column that supplies
// it. At most one source column per target field.
type ColumnMapping map[string]string

// ConfidenceMap maps a target field to a [0,1] score expressing certainty
// that the chosen source column is correct.
type ConfidenceMap map[string]float64

// Value looks up the cell for a target field through the mapping. The second
// return reports whether the field is mapped and the column present in the row.
func (r RawRow) Value(mapping ColumnMapping, field string) (string, bool) {
	col, ok := mapping[field]
	if !ok {
		return "", false
	}
	v, ok := r[col]
	return v, ok
}

// TrimmedValue is Value with surrounding whitespace removed.
func (r RawRow) TrimmedValue(mapping ColumnMapping, field string) string {
	v, _ := r.Value(mapping, field)
	return strings.TrimSpace(v)
}

// ParsedCSV is the output of the CSV parser: the (possibly synthesized)
// header row plus all non-empty data rows in file order.
type ParsedCSV struct {
	Headers         []string `json:"headers"`
	Rows            []RawRow `json:"rows"`
	HeadersInferred bool     `json:"headers_inferred"`
	Encoding        string   `json:"encoding"`
	Warnings        []string `json:"warnings,omitempty"`
}

// DetectionResult is the output of column detection.
type DetectionResult struct {
	DetectedMapping ColumnMapping `json:"detected_mapping"`
	Confidence      ConfidenceMap `json:"confidence"`
	Suggestions     []string      `json:"suggestions"`
	TemplateID      string        `json:"template_id,omitempty"`
	Encoding        string        `json:"encoding,omitempty"`
}

// MappingDecision is the outcome of the confidence-driven review policy.
type MappingDecision string

const (
	DecisionAutoProceed          MappingDecision = "auto_proceed"
	DecisionRequireMappingReview MappingDecision = "require_mapping_review"
)

// DuplicateResolution is a user or policy decision for one duplicate group.
type DuplicateResolution string

const (
	ResolutionSkip        DuplicateResolution = "skip"
	ResolutionMerge       DuplicateResolution = "merge"
	ResolutionImportAsNew DuplicateResolution = "import_as_new"
)

// DuplicateGroup is a cluster of rows (and optionally one existing stored
// record) judged to represent the same application. A group always references
// at least two members.
type DuplicateGroup struct {
	MemberRowIndices    []int               `json:"member_row_indices"`
	ExistingID          string              `json:"existing_id,omitempty"`
	MatchReason         string              `json:"match_reason"`
	SuggestedResolution DuplicateResolution `json:"suggested_resolution"`
}

// ContainsRow reports whether the group includes the given row index.
func (g *DuplicateGroup) ContainsRow(idx int) bool {
	for _, m := range g.MemberRowIndices {
		if m == idx {
			return true
		}
	}
	return false
}

// ValidationSummary aggregates row-level findings for presentation.
type ValidationSummary struct {
	TotalRows       int `json:"total_rows"`
	ValidRows       int `json:"valid_rows"`
	RowsWithErrors  int `json:"rows_with_errors"`
	RowsWithWarning int `json:"rows_with_warnings"`
	DuplicateGroups int `json:"duplicate_groups"`
}

// ImportSummary reports the outcome of one executed import.
type ImportSummary struct {
	TotalRows         int      `json:"total_rows"`
	SuccessfulImports int      `json:"successful_imports"`
	SkippedRows       int      `json:"skipped_rows"`
	DuplicatesFound   int      `json:"duplicates_found"`
	Errors            []string `json:"errors,omitempty"`
}

// ImportStage identifies the phase reported by a progress event.
type ImportStage string

const (
	StageParsing    ImportStage = "parsing"
	StageDetecting  ImportStage = "detecting"
	StageValidating ImportStage = "validating"
	StageImporting  ImportStage = "importing"
	StageCompleted  ImportStage = "completed"
)

// Progress is delivered to the caller at every batch boundary.
type Progress struct {
	Stage      ImportStage `json:"stage"`
	Percent    float64     `json:"progress"`
	Message    string      `json:"message"`
	CurrentRow int         `json:"current_row,omitempty"`
	TotalRows  int         `json:"total_rows,omitempty"`
	Errors     []string    `json:"errors"`
	Warnings   []string    `json:"warnings"`
}

// ProgressFunc receives progress events between batches. A nil ProgressFunc
// is always safe to pass.
type ProgressFunc func(Progress)

// Report invokes the callback when non-nil.
func (f ProgressFunc) Report(p Progress) {
	if f != nil {
		f(p)
	}
}
