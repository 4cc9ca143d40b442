package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/ummugulsunn/ai-application-tracker/internal/domain/errors"
	"github.com/ummugulsunn/ai-application-tracker/internal/domain/models"
)

// headerVocabulary is the fixed set of field keywords used to infer whether
// the first row is a header row.
var headerVocabulary = []string{
	"company", "position", "location", "status", "date", "salary",
	"notes", "contact", "email", "website", "tags", "priority",
	"title", "role", "employer", "stage",
}

// Parse turns raw CSV bytes into headers plus RawRows. The encoding is
// detected first (never fatal); structural CSV failures return a ParseError
// that aborts the whole operation. Rows with no non-empty cell are dropped.
func Parse(data []byte) (*models.ParsedCSV, error) {
	decoded := DetectAndDecode(data)

	reader := csv.NewReader(strings.NewReader(decoded.Text))
	reader.Comma = detectDelimiter(decoded.Text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			if pe, ok := err.(*csv.ParseError); ok {
				line = pe.Line
			}
			return nil, apperrors.NewParseError(line, err)
		}
		records = append(records, record)
	}

	result := &models.ParsedCSV{
		Encoding: decoded.Encoding,
		Warnings: decoded.Warnings,
	}
	if len(records) == 0 {
		result.Headers = []string{}
		return result, nil
	}

	dataStart := 0
	if looksLikeHeader(records[0]) {
		result.Headers = uniqueHeaders(records[0])
		dataStart = 1
	} else {
		result.Headers = defaultHeaders(len(records[0]))
		result.HeadersInferred = true
	}

	for _, record := range records[dataStart:] {
		if emptyRecord(record) {
			continue
		}
		row := make(models.RawRow, len(result.Headers))
		for i, header := range result.Headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// detectDelimiter picks ';' over ',' when the first line is semicolon
// separated, which several European spreadsheet exports produce.
func detectDelimiter(text string) rune {
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	if !strings.Contains(firstLine, ",") && strings.Contains(firstLine, ";") {
		return ';'
	}
	return ','
}

// looksLikeHeader reports whether the row's cells overlap the known field
// keyword vocabulary.
func looksLikeHeader(record []string) bool {
	for _, cell := range record {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		if lowered == "" {
			continue
		}
		for _, keyword := range headerVocabulary {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
	}
	return false
}

// uniqueHeaders trims header cells and disambiguates duplicates so RawRow
// keys stay distinct.
func uniqueHeaders(record []string) []string {
	headers := make([]string, len(record))
	seen := make(map[string]int, len(record))
	for i, cell := range record {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[name]; n > 0 {
			headers[i] = fmt.Sprintf("%s (%d)", name, n+1)
		} else {
			headers[i] = name
		}
		seen[name]++
	}
	return headers
}

func defaultHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("Column %d", i+1)
	}
	return headers
}

func emptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
