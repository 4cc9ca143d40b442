package parsers

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
)

func TestParseWithHeaderRow(t *testing.T) {
	data := []byte("Company,Position,Applied Date\nAcme,Engineer,2024-01-15\nGlobex,Analyst,2024-02-01\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if result.HeadersInferred {
		t.Error("HeadersInferred = true for a file with a header row")
	}
	wantHeaders := []string{"Company", "Position", "Applied Date"}
	if len(result.Headers) != len(wantHeaders) {
		t.Fatalf("Headers = %v, want %v", result.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if result.Headers[i] != h {
			t.Errorf("Headers[%d] = %q, want %q", i, result.Headers[i], h)
		}
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[0]["Company"] != "Acme" {
		t.Errorf("Rows[0][Company] = %q, want Acme", result.Rows[0]["Company"])
	}
	if result.Rows[1]["Applied Date"] != "2024-02-01" {
		t.Errorf("Rows[1][Applied Date] = %q", result.Rows[1]["Applied Date"])
	}
}

func TestParseInfersMissingHeader(t *testing.T) {
	data := []byte("Acme,Engineer\nGlobex,Analyst\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !result.HeadersInferred {
		t.Error("HeadersInferred = false for a headerless file")
	}
	if result.Headers[0] != "Column 1" || result.Headers[1] != "Column 2" {
		t.Errorf("Headers = %v, want synthesized Column N names", result.Headers)
	}
	// The first row is data, not a header.
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[0]["Column 1"] != "Acme" {
		t.Errorf("Rows[0][Column 1] = %q, want Acme", result.Rows[0]["Column 1"])
	}
}

func TestParseQuotedFieldWithNewline(t *testing.T) {
	data := []byte("Company,Notes\nAcme,\"line one\nline two\"\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
	if result.Rows[0]["Notes"] != "line one\nline two" {
		t.Errorf("Notes = %q", result.Rows[0]["Notes"])
	}
}

func TestParseQuotedComma(t *testing.T) {
	data := []byte("Company,Position\n\"Umbrella, Inc.\",Engineer\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Rows[0]["Company"] != "Umbrella, Inc." {
		t.Errorf("Company = %q", result.Rows[0]["Company"])
	}
}

func TestParseSemicolonDelimiter(t *testing.T) {
	data := []byte("Company;Position;Status\nAcme;Engineer;applied\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Headers) != 3 {
		t.Fatalf("Headers = %v, want 3 columns", result.Headers)
	}
	if result.Rows[0]["Position"] != "Engineer" {
		t.Errorf("Position = %q", result.Rows[0]["Position"])
	}
}

func TestParseDropsEmptyRows(t *testing.T) {
	data := []byte("Company,Position\nAcme,Engineer\n,\n   ,  \nGlobex,Analyst\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2 (empty rows dropped)", len(result.Rows))
	}
}

func TestParseRaggedRows(t *testing.T) {
	data := []byte("Company,Position,Location\nAcme,Engineer\nGlobex,Analyst,Berlin,extra\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	// Short rows pad missing cells with empty strings.
	if result.Rows[0]["Location"] != "" {
		t.Errorf("short row Location = %q, want empty", result.Rows[0]["Location"])
	}
	// Long rows drop cells beyond the header width.
	if result.Rows[1]["Location"] != "Berlin" {
		t.Errorf("long row Location = %q, want Berlin", result.Rows[1]["Location"])
	}
}

func TestParseDuplicateHeaders(t *testing.T) {
	data := []byte("Company,Company,Position\nAcme,Subsidiary,Engineer\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Headers[0] != "Company" || result.Headers[1] != "Company (2)" {
		t.Errorf("Headers = %v, want duplicate disambiguated", result.Headers)
	}
	if result.Rows[0]["Company (2)"] != "Subsidiary" {
		t.Errorf("Company (2) = %q", result.Rows[0]["Company (2)"])
	}
}

func TestParseBlankHeaderCell(t *testing.T) {
	data := []byte("Company,,Position\nAcme,x,Engineer\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Headers[1] != "Column 2" {
		t.Errorf("Headers[1] = %q, want Column 2", result.Headers[1])
	}
}

func TestParseEmptyFile(t *testing.T) {
	result, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Headers) != 0 || len(result.Rows) != 0 {
		t.Errorf("empty file produced headers %v rows %d", result.Headers, len(result.Rows))
	}
}

func TestParseToleratesMessyQuotes(t *testing.T) {
	// Lazy quoting keeps stray quotes from failing the whole file; sloppy
	// hand-edited exports are common.
	data := []byte("Company,Notes\nAcme,say \"hi\" to them\n")

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	err := apperrors.NewParseError(3, errors.New("bare quote"))
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error = %q, want line number", err.Error())
	}
	var parseErr *apperrors.ParseError
	if !errors.As(error(err), &parseErr) {
		t.Fatalf("errors.As failed for %T", err)
	}
}

func TestParseDetectsEncoding(t *testing.T) {
	data := []byte{'C', 'o', 'm', 'p', 'a', 'n', 'y', '\n', 'C', 'a', 'f', 0xe9, '\n'}

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Encoding != "Windows-1252" {
		t.Errorf("Encoding = %q, want Windows-1252", result.Encoding)
	}
	if result.Rows[0]["Company"] != "Café" {
		t.Errorf("Company = %q, want Café", result.Rows[0]["Company"])
	}
}
