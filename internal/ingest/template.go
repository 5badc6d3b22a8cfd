package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// TemplateFilename is the suggested download name for Template.
const TemplateFilename = "colleges_template.csv"

var templateSample = []string{
	"Example College", "Engineering", "Mumbai", "Mumbai", "Government",
	"true", "false", "true", "1990",
	"+91-22-1234567", "info@example.edu", "https://example.edu", "123 Main St", "400001",
}

// Template renders the CSV header plus one sample row.
func Template() ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{Columns, templateSample}); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	return buf.Bytes(), nil
}
