package detection

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// FieldMapping binds one target field to the CSV column a template exports it
// under, plus alternative headers seen in the wild for that source.
type FieldMapping struct {
	TargetField string   `json:"target_field"`
	CSVColumn   string   `json:"csv_column"`
	Aliases     []string `json:"aliases,omitempty"`
}

// Template describes a known CSV export shape (e.g. a LinkedIn jobs export):
// an ordered list of expected columns and their target fields. Templates are
// read-only at runtime.
type Template struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Source        string         `json:"source"`
	FieldMappings []FieldMapping `json:"field_mappings"`
}

// Columns returns the template's CSV columns in declaration order.
func (t *Template) Columns() []string {
	cols := make([]string, len(t.FieldMappings))
	for i, fm := range t.FieldMappings {
		cols[i] = fm.CSVColumn
	}
	return cols
}

// TemplateMatch is the result of scoring one template against a header list.
type TemplateMatch struct {
	Template *Template
	// Score is matchedFields / totalTemplateFields.
	Score float64
	// MappedColumns maps target field to the matching input header, preserving
	// the header's original spelling.
	MappedColumns models.ColumnMapping
}

// Catalog is the registry of known source formats. Declaration order matters:
// detection ties break toward the earlier template.
type Catalog struct {
	templates []*Template
	byID      map[string]*Template
}

// NewCatalog builds the catalog of built-in templates.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[string]*Template)}
	for _, t := range builtinTemplates() {
		c.templates = append(c.templates, t)
		c.byID[t.ID] = t
	}
	return c
}

func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:     "linkedin",
			Name:   "LinkedIn Export",
			Source: "LinkedIn",
			FieldMappings: []FieldMapping{
				{TargetField: models.FieldCompany, CSVColumn: "Company", Aliases: []string{"Company Name", "Employer"}},
				{TargetField: models.FieldPosition, CSVColumn: "Position", Aliases: []string{"Job Title", "Title", "Role"}},
				{TargetField: models.FieldLocation, CSVColumn: "Location", Aliases: []string{"City", "Job Location"}},
				{TargetField: models.FieldAppliedDate, CSVColumn: "Applied Date", Aliases: []string{"Date Applied", "Application Date"}},
				{TargetField: models.FieldStatus, CSVColumn: "Status", Aliases: []string{"Application Status"}},
				{TargetField: models.FieldNotes, CSVColumn: "Notes", Aliases: []string{"Comments"}},
			},
		},
		{
			ID:     "indeed",
			Name:   "Indeed Export",
			Source: "Indeed",
			FieldMappings: []FieldMapping{
				{TargetField: models.FieldCompany, CSVColumn: "Company Name", Aliases: []string{"Company", "Employer"}},
				{TargetField: models.FieldPosition, CSVColumn: "Job Title", Aliases: []string{"Position", "Title"}},
				{TargetField: models.FieldLocation, CSVColumn: "Location", Aliases: []string{"City"}},
				{TargetField: models.FieldAppliedDate, CSVColumn: "Date Applied", Aliases: []string{"Applied Date"}},
				{TargetField: models.FieldStatus, CSVColumn: "Application Status", Aliases: []string{"Status"}},
				{TargetField: models.FieldSalary, CSVColumn: "Salary", Aliases: []string{"Pay", "Compensation"}},
			},
		},
		{
			ID:     "glassdoor",
			Name:   "Glassdoor Export",
			Source: "Glassdoor",
			FieldMappings: []FieldMapping{
				{TargetField: models.FieldCompany, CSVColumn: "Employer", Aliases: []string{"Company", "Company Name"}},
				{TargetField: models.FieldPosition, CSVColumn: "Job Title", Aliases: []string{"Position"}},
				{TargetField: models.FieldLocation, CSVColumn: "Location", Aliases: nil},
				{TargetField: models.FieldAppliedDate, CSVColumn: "Application Date", Aliases: []string{"Applied"}},
				{TargetField: models.FieldStatus, CSVColumn: "Stage", Aliases: []string{"Status"}},
				{TargetField: models.FieldSalary, CSVColumn: "Salary Estimate", Aliases: []string{"Salary"}},
				{TargetField: models.FieldWebsite, CSVColumn: "Job Link", Aliases: []string{"URL", "Link"}},
			},
		},
		{
			ID:     "minimal",
			Name:   "Minimal",
			Source: "Generic",
			FieldMappings: []FieldMapping{
				{TargetField: models.FieldCompany, CSVColumn: "Company", Aliases: nil},
				{TargetField: models.FieldPosition, CSVColumn: "Position", Aliases: nil},
				{TargetField: models.FieldAppliedDate, CSVColumn: "Applied Date", Aliases: nil},
			},
		},
	}
}

// Templates returns the built-in templates in declaration order.
func (c *Catalog) Templates() []*Template {
	return c.templates
}

// Get looks up a template by id.
func (c *Catalog) Get(id string) (*Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Detect scores every template against the headers and returns the best match
// at or above cfg.TemplateMinScore, or nil when nothing qualifies. A score of
// cfg.TemplateHighScore or better is a high-confidence match. Ties break
// toward the earlier declared template.
func (c *Catalog) Detect(headers []string, cfg config.DetectionConfig) *TemplateMatch {
	normalized := make(map[string]string, len(headers)) // normalized -> original
	for _, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, exists := normalized[key]; !exists {
			normalized[key] = h
		}
	}

	var best *TemplateMatch
	for _, t := range c.templates {
		mapped := make(models.ColumnMapping)
		for _, fm := range t.FieldMappings {
			if original, ok := normalized[NormalizeHeader(fm.CSVColumn)]; ok {
				mapped[fm.TargetField] = original
			}
		}
		if len(mapped) == 0 {
			continue
		}
		score := float64(len(mapped)) / float64(len(t.FieldMappings))
		if score < cfg.TemplateMinScore {
			continue
		}
		if best == nil || score > best.Score {
			best = &TemplateMatch{Template: t, Score: score, MappedColumns: mapped}
		}
	}
	return best
}

// sampleSeed provides deterministic synthetic values per target field.
var sampleCompanies = []string{"Acme Corp", "Globex", "Initech", "Umbrella, Inc.", "Stark Industries"}
var samplePositions = []string{"Software Engineer", "Product Manager", "Data Analyst", "DevOps Engineer", "UX Designer"}
var sampleLocations = []string{"Istanbul", "Berlin", "London", "Remote", "Amsterdam"}
var sampleStatuses = []string{"Pending", "Applied", "Interviewing", "Rejected", "Offered"}
var sampleSalaries = []string{"$95,000", "$110,000", "$82,500", "$120,000", "$105,000"}

// sampleBaseDate anchors generated dates so repeated runs produce identical rows.
var sampleBaseDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

// GenerateSampleData produces n deterministic synthetic rows honoring the
// template's field types, in the template's declared column order.
func (c *Catalog) GenerateSampleData(id string, n int) ([][]string, error) {
	t, ok := c.Get(id)
	if !ok {
		return nil, &errors.TemplateNotFoundError{ID: id}
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.FieldMappings))
		for j, fm := range t.FieldMappings {
			row[j] = sampleValue(fm.TargetField, i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sampleValue(field string, i int) string {
	switch field {
	case models.FieldCompany:
		return sampleCompanies[i%len(sampleCompanies)]
	case models.FieldPosition:
		return samplePositions[i%len(samplePositions)]
	case models.FieldLocation:
		return sampleLocations[i%len(sampleLocations)]
	case models.FieldStatus:
		return sampleStatuses[i%len(sampleStatuses)]
	case models.FieldType:
		return string(models.KindFullTime)
	case models.FieldPriority:
		return string(models.PriorityMedium)
	case models.FieldAppliedDate, models.FieldResponseDate, models.FieldInterviewDate:
		return sampleBaseDate.AddDate(0, 0, -i).Format("2006-01-02")
	case models.FieldSalary:
		return sampleSalaries[i%len(sampleSalaries)]
	case models.FieldNotes:
		return fmt.Sprintf("Referred by a colleague, follow up week %d", i+1)
	case models.FieldContactPerson:
		return "Jordan Smith"
	case models.FieldContactEmail:
		return fmt.Sprintf("recruiter%d@example.com", i+1)
	case models.FieldWebsite:
		return fmt.Sprintf("https://jobs.example.com/%d", i+1)
	case models.FieldTags:
		return "remote;go"
	}
	return ""
}

// GenerateTemplateCSV renders a downloadable CSV for the template: header row
// plus n sample rows, quoted wherever values contain commas.
func (c *Catalog) GenerateTemplateCSV(id string, n int) (string, error) {
	t, ok := c.Get(id)
	if !ok {
		return "", &errors.TemplateNotFoundError{ID: id}
	}
	rows, err := c.GenerateSampleData(id, n)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(t.Columns()); err != nil {
		return "", fmt.Errorf("failed to write template header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write sample row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to render template CSV: %w", err)
	}
	return sb.String(), nil
}
