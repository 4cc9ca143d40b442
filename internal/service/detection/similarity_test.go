package detection

import (
	"math"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "plain", header: "Company", want: "company"},
		{name: "spaces", header: "Applied Date", want: "applieddate"},
		{name: "underscore", header: "applied_date", want: "applieddate"},
		{name: "hyphen", header: "Applied-Date", want: "applieddate"},
		{name: "upper with padding", header: "  APPLIED DATE  ", want: "applieddate"},
		{name: "punctuation", header: "E-Mail", want: "email"},
		{name: "empty", header: "", want: ""},
		{name: "only punctuation", header: "--__--", want: ""},
		{name: "digits kept", header: "Column 2", want: "column2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHeader(tt.header); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "equal", a: "company", b: "company", want: 1},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "one empty", a: "company", b: "", want: 0},
		{name: "containment scores length ratio", a: "companyname", b: "company", want: 7.0 / 11.0},
		{name: "containment is symmetric", a: "company", b: "companyname", want: 7.0 / 11.0},
		{name: "single edit", a: "appliedate", b: "applieddate", want: 1 - 1.0/11.0},
		{name: "unrelated", a: "salary", b: "notes", want: 1 - 6.0/6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"company", "employer"},
		{"datumapplied", "applieddate"},
		{"x", "yyyyyyyyyy"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, outside [0,1]", p[0], p[1], got)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"status", "status", 0},
		{"stage", "status", 3},
	}

	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
