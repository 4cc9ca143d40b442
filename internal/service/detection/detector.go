package detection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// Confidence levels assigned by the different matching paths. Template and
// exact alias matches sit above the high-confidence threshold; similarity
// matches are scaled down so they always read as tentative.
const (
	confTemplateColumn  = 0.9
	confAliasExact      = 0.9
	confColumnExact     = 0.95
	confSubstringBase   = 0.7
	confSimilarityScale = 0.7
)

// fieldAliases lists known header spellings per target field, most specific
// first. Matching is case-insensitive with punctuation/whitespace variance
// tolerated (see NormalizeHeader).
var fieldAliases = map[string][]string{
	models.FieldCompany:       {"company", "company name", "employer", "organization", "org"},
	models.FieldPosition:      {"position", "job title", "role", "title"},
	models.FieldLocation:      {"location", "job location", "city"},
	models.FieldStatus:        {"status", "application status", "stage"},
	models.FieldType:          {"type", "job type", "employment type"},
	models.FieldPriority:      {"priority", "importance"},
	models.FieldAppliedDate:   {"applied date", "date applied", "application date", "applied"},
	models.FieldResponseDate:  {"response date", "reply date", "response"},
	models.FieldInterviewDate: {"interview date", "interview"},
	models.FieldSalary:        {"salary", "salary range", "pay", "compensation"},
	models.FieldNotes:         {"notes", "comments", "remarks"},
	models.FieldContactPerson: {"contact person", "contact name", "recruiter", "contact"},
	models.FieldContactEmail:  {"contact email", "email", "e-mail"},
	models.FieldWebsite:       {"website", "job link", "url", "link"},
	models.FieldTags:          {"tags", "labels", "keywords"},
}

// Detector maps CSV headers to target application fields with per-field
// confidence scores. Detection uses template matching first and alias/pattern
// matching as fallback; it has no hidden state and is safe for concurrent use.
type Detector struct {
	catalog *Catalog
	cfg     config.DetectionConfig
	logger  zerolog.Logger
}

// NewDetector creates a detector over the given catalog.
func NewDetector(catalog *Catalog, cfg config.DetectionConfig, logger zerolog.Logger) *Detector {
	return &Detector{catalog: catalog, cfg: cfg, logger: logger}
}

// Catalog exposes the template registry backing this detector.
func (d *Detector) Catalog() *Catalog {
	return d.catalog
}

// DetectColumns produces a column-to-field mapping with confidence scores for
// the given headers. An empty header list yields an empty mapping, not an
// error.
func (d *Detector) DetectColumns(headers []string) *models.DetectionResult {
	result := &models.DetectionResult{
		DetectedMapping: make(models.ColumnMapping),
		Confidence:      make(models.ConfidenceMap),
	}
	if len(headers) == 0 {
		result.Suggestions = append(result.Suggestions,
			"No headers found; the required Company column must be mapped manually")
		return result
	}

	var match *TemplateMatch
	if match = d.catalog.Detect(headers, d.cfg); match != nil {
		result.TemplateID = match.Template.ID
		for field, column := range match.MappedColumns {
			result.DetectedMapping[field] = column
			result.Confidence[field] = confTemplateColumn
		}
		d.logger.Debug().
			Str("template", match.Template.ID).
			Float64("score", match.Score).
			Msg("Template matched")
	}

	d.matchRemainingFields(headers, result)
	d.buildSuggestions(match, result)
	return result
}

// DetectColumnsWithTemplate maps headers using only the named template's
// column list; headers outside it are ignored. Unknown template ids fail with
// a TemplateNotFoundError.
func (d *Detector) DetectColumnsWithTemplate(headers []string, templateID string) (*models.DetectionResult, error) {
	t, ok := d.catalog.Get(templateID)
	if !ok {
		return nil, &errors.TemplateNotFoundError{ID: templateID}
	}

	result := &models.DetectionResult{
		DetectedMapping: make(models.ColumnMapping),
		Confidence:      make(models.ConfidenceMap),
		TemplateID:      t.ID,
	}

	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		key := NormalizeHeader(h)
		if _, exists := normalized[key]; key != "" && !exists {
			normalized[key] = h
		}
	}

	for _, fm := range t.FieldMappings {
		if original, ok := normalized[NormalizeHeader(fm.CSVColumn)]; ok {
			result.DetectedMapping[fm.TargetField] = original
			result.Confidence[fm.TargetField] = confColumnExact
			continue
		}
		for _, alias := range fm.Aliases {
			if original, ok := normalized[NormalizeHeader(alias)]; ok {
				result.DetectedMapping[fm.TargetField] = original
				result.Confidence[fm.TargetField] = confAliasExact
				break
			}
		}
	}

	if _, ok := result.DetectedMapping[models.FieldCompany]; !ok {
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("The %s template did not yield a Company column; map it manually", t.Name))
	}
	return result, nil
}

// matchRemainingFields fills every still-unmapped target field via alias and
// similarity matching against headers not already claimed.
func (d *Detector) matchRemainingFields(headers []string, result *models.DetectionResult) {
	used := make(map[string]bool, len(result.DetectedMapping))
	for _, col := range result.DetectedMapping {
		used[col] = true
	}

	for _, field := range models.TargetFields {
		if _, ok := result.DetectedMapping[field]; ok {
			continue
		}
		bestHeader := ""
		bestScore := 0.0
		for _, h := range headers {
			if used[h] {
				continue
			}
			score := d.scoreField(field, h)
			if score > bestScore {
				bestScore = score
				bestHeader = h
			}
		}
		if bestHeader != "" && bestScore >= d.cfg.AliasMinConfidence {
			result.DetectedMapping[field] = bestHeader
			result.Confidence[field] = bestScore
			used[bestHeader] = true
		}
	}
}

// scoreField scores one header against one target field's alias list.
func (d *Detector) scoreField(field, header string) float64 {
	normHeader := NormalizeHeader(header)
	if normHeader == "" {
		return 0
	}
	if normHeader == NormalizeHeader(field) {
		return confColumnExact
	}

	best := 0.0
	for _, alias := range fieldAliases[field] {
		normAlias := NormalizeHeader(alias)
		var score float64
		switch {
		case normHeader == normAlias:
			score = confAliasExact
		default:
			sim := Similarity(normHeader, normAlias)
			if containsEither(normHeader, normAlias) {
				score = confSubstringBase * sim
			} else if sim >= d.cfg.SimilarityMinAccept {
				score = confSimilarityScale * sim
			}
		}
		if score > best {
			best = score
		}
	}
	return best
}

func containsEither(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}

// buildSuggestions emits human-readable guidance: partial template matches,
// low-confidence mappings, and a missing or uncertain Company column.
func (d *Detector) buildSuggestions(match *TemplateMatch, result *models.DetectionResult) {
	if match != nil && match.Score < d.cfg.TemplateHighScore {
		result.Suggestions = append(result.Suggestions, fmt.Sprintf(
			"Partially matched the %s template (%.0f%% of its columns); review the remaining fields",
			match.Template.Name, match.Score*100))
	}

	var low []string
	for field, conf := range result.Confidence {
		if conf < 0.5 {
			low = append(low, field)
		}
	}
	if len(low) > 0 {
		sort.Strings(low)
		result.Suggestions = append(result.Suggestions, fmt.Sprintf(
			"Low-confidence matches for: %s; verify these columns", strings.Join(low, ", ")))
	}

	if result.Confidence[models.FieldCompany] <= d.cfg.AutoCompanyMin {
		result.Suggestions = append(result.Suggestions,
			"The required Company column was not confidently identified; review the mapping before importing")
	}
}

// Decide applies the confidence-driven review policy: proceed automatically
// only if company is mapped above the company threshold and enough of the
// mapped fields are high confidence.
func (d *Detector) Decide(confidence models.ConfidenceMap) models.MappingDecision {
	if len(confidence) == 0 {
		return models.DecisionRequireMappingReview
	}
	if confidence[models.FieldCompany] <= d.cfg.AutoCompanyMin {
		return models.DecisionRequireMappingReview
	}
	high := 0
	for _, conf := range confidence {
		if conf > d.cfg.AutoHighThreshold {
			high++
		}
	}
	if float64(high)/float64(len(confidence)) < d.cfg.AutoHighShareMin {
		return models.DecisionRequireMappingReview
	}
	return models.DecisionAutoProceed
}
