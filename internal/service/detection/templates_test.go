package detection

import (
	"strings"
	"testing"

	"github.com/ummugulsunn/ai-application-tracker/internal/config"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog()

	for _, id := range []string{"linkedin", "indeed", "glassdoor", "minimal"} {
		tmpl, ok := catalog.Get(id)
		if !ok {
			t.Fatalf("Get(%q) not found", id)
		}
		if tmpl.ID != id {
			t.Errorf("Get(%q) returned template %q", id, tmpl.ID)
		}
		if len(tmpl.FieldMappings) == 0 {
			t.Errorf("template %q has no field mappings", id)
		}
	}

	if _, ok := catalog.Get("monster"); ok {
		t.Error("Get(\"monster\") = found, want not found")
	}
}

func TestCatalogTemplatesHaveCompany(t *testing.T) {
	catalog := NewCatalog()
	for _, tmpl := range catalog.Templates() {
		found := false
		for _, fm := range tmpl.FieldMappings {
			if fm.TargetField == models.FieldCompany {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("template %q does not map the company field", tmpl.ID)
		}
	}
}

func TestCatalogDetect(t *testing.T) {
	catalog := NewCatalog()
	cfg := config.DefaultDetection()

	tests := []struct {
		name     string
		headers  []string
		wantID   string
		minScore float64
	}{
		{
			name:     "linkedin full export",
			headers:  []string{"Company", "Position", "Location", "Applied Date", "Status", "Notes"},
			wantID:   "linkedin",
			minScore: 1.0,
		},
		{
			name:     "indeed full export",
			headers:  []string{"Company Name", "Job Title", "Location", "Date Applied", "Application Status", "Salary"},
			wantID:   "indeed",
			minScore: 1.0,
		},
		{
			name:     "glassdoor full export",
			headers:  []string{"Employer", "Job Title", "Location", "Application Date", "Stage", "Salary Estimate", "Job Link"},
			wantID:   "glassdoor",
			minScore: 1.0,
		},
		{
			name:     "normalization tolerates case and underscores",
			headers:  []string{"company", "position", "location", "applied_date", "STATUS", "notes"},
			wantID:   "linkedin",
			minScore: 1.0,
		},
		{
			name:     "partial linkedin",
			headers:  []string{"Company", "Position", "Status", "Extra Column"},
			wantID:   "minimal",
			minScore: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := catalog.Detect(tt.headers, cfg)
			if match == nil {
				t.Fatalf("Detect(%v) = nil, want template %q", tt.headers, tt.wantID)
			}
			if match.Template.ID != tt.wantID {
				t.Errorf("Detect(%v) matched %q, want %q", tt.headers, match.Template.ID, tt.wantID)
			}
			if match.Score < tt.minScore {
				t.Errorf("Detect(%v) score = %v, want >= %v", tt.headers, match.Score, tt.minScore)
			}
		})
	}
}

func TestCatalogDetectNoMatch(t *testing.T) {
	catalog := NewCatalog()
	cfg := config.DefaultDetection()

	if match := catalog.Detect([]string{"Foo", "Bar", "Baz"}, cfg); match != nil {
		t.Errorf("Detect unrelated headers matched %q", match.Template.ID)
	}
	if match := catalog.Detect(nil, cfg); match != nil {
		t.Errorf("Detect(nil) matched %q", match.Template.ID)
	}
}

func TestGenerateSampleData(t *testing.T) {
	catalog := NewCatalog()

	rows, err := catalog.GenerateSampleData("linkedin", 7)
	if err != nil {
		t.Fatalf("GenerateSampleData: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("got %d rows, want 7", len(rows))
	}
	tmpl, _ := catalog.Get("linkedin")
	for i, row := range rows {
		if len(row) != len(tmpl.FieldMappings) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(tmpl.FieldMappings))
		}
	}

	// Deterministic across calls.
	again, err := catalog.GenerateSampleData("linkedin", 7)
	if err != nil {
		t.Fatalf("GenerateSampleData (second call): %v", err)
	}
	for i := range rows {
		if strings.Join(rows[i], "|") != strings.Join(again[i], "|") {
			t.Errorf("row %d differs between calls: %v vs %v", i, rows[i], again[i])
		}
	}
}

func TestGenerateSampleDataUnknownTemplate(t *testing.T) {
	catalog := NewCatalog()

	_, err := catalog.GenerateSampleData("nope", 3)
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
	if err.Error() != "Template not found: nope" {
		t.Errorf("error = %q, want %q", err.Error(), "Template not found: nope")
	}
}

func TestGenerateTemplateCSV(t *testing.T) {
	catalog := NewCatalog()

	content, err := catalog.GenerateTemplateCSV("minimal", 5)
	if err != nil {
		t.Fatalf("GenerateTemplateCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6 (header + 5 rows)", len(lines))
	}
	if lines[0] != "Company,Position,Applied Date" {
		t.Errorf("header = %q", lines[0])
	}
	// Values containing commas must be quoted.
	if !strings.Contains(content, `"Umbrella, Inc."`) {
		t.Errorf("comma-bearing company not quoted:\n%s", content)
	}
}

func TestGenerateTemplateCSVUnknownTemplate(t *testing.T) {
	catalog := NewCatalog()

	if _, err := catalog.GenerateTemplateCSV("monster", 5); err == nil {
		t.Fatal("expected error for unknown template")
	} else if err.Error() != "Template not found: monster" {
		t.Errorf("error = %q, want %q", err.Error(), "Template not found: monster")
	}
}
