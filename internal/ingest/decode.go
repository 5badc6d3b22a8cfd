package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/collegedir/collegedir/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV splits a tabular upload into raw records. The first row is the
// header; each following non-blank row is one record. Envelope failures are
// returned as *models.EnvelopeError. Malformed rows become records with Err set.
func DecodeCSV(data []byte) ([]RawRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, envelope(models.SourceCSV, models.ErrEmptyUpload)
	}

	if mt := mimetype.Detect(data); !isText(mt) {
		return nil, envelope(models.SourceCSV, fmt.Errorf("%w: detected %s", models.ErrNotTabular, mt.String()))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, envelope(models.SourceCSV, fmt.Errorf("%w: reading header: %v", models.ErrNotTabular, err))
	}

	columns, err := normalizeHeader(header)
	if err != nil {
		return nil, envelope(models.SourceCSV, err)
	}

	var records []RawRecord

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrQuote) {
			// An unterminated quote swallows every following line into one field.
			return nil, envelope(models.SourceCSV,
				fmt.Errorf("%w: unbalanced quote starting at line %d", models.ErrNotTabular, parseErr.StartLine))
		}

		if errors.As(err, &parseErr) {
			records = append(records, RawRecord{Err: fmt.Errorf("malformed row at line %d: %v", parseErr.StartLine, parseErr.Err)})
			continue
		}

		if err != nil {
			return nil, envelope(models.SourceCSV, fmt.Errorf("%w: %v", models.ErrNotTabular, err))
		}

		if isBlankRow(row) {
			continue
		}

		if len(row) != len(columns) {
			records = append(records, RawRecord{Err: fmt.Errorf("has %d fields, header has %d", len(row), len(columns))})
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}

			if v := strings.TrimSpace(row[i]); v != "" {
				fields[col] = v
			}
		}

		records = append(records, RawRecord{Fields: fields})
	}

	return records, nil
}

// normalizeHeader lower-cases and trims column names. Unknown columns map to
// "" and are ignored. All required columns must be present.
func normalizeHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))

	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if !isKnownField(name) {
			continue
		}

		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", models.ErrNotTabular, name)
		}

		seen[name] = true
		columns[i] = name
	}

	var missing []string

	for _, f := range RequiredFields {
		if !seen[f] {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingHeader, strings.Join(missing, ", "))
	}

	return columns, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// isText reports whether the sniffed type is, or descends from, text/plain.
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}

	return false
}

// DecodeJSON splits a structured upload into raw records. The document is
// either {"colleges": [...]} or a bare array of record objects. JSON null
// values count as absent.
func DecodeJSON(data []byte) ([]RawRecord, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, envelope(models.SourceJSON, models.ErrEmptyUpload)
	}

	items, err := collection(data)
	if err != nil {
		return nil, envelope(models.SourceJSON, err)
	}

	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		records = append(records, decodeObject(item))
	}

	return records, nil
}

func collection(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage

	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrNotStructured, err)
		}

		return items, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNotStructured, err)
	}

	raw, ok := doc["colleges"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: missing \"colleges\" collection", models.ErrNotStructured)
	}

	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: \"colleges\" must be an array: %v", models.ErrNotStructured, err)
	}

	return items, nil
}

func decodeObject(raw json.RawMessage) RawRecord {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return RawRecord{Err: errors.New("is not an object")}
	}

	fields := make(map[string]string, len(obj))
	seen := make(map[string]string, len(obj))

	var nested, dupes []string

	for k, v := range obj {
		key := strings.ToLower(strings.TrimSpace(k))
		if !isKnownField(key) {
			continue
		}

		if prev, ok := seen[key]; ok {
			a, b := prev, k
			if a > b {
				a, b = b, a
			}

			dupes = append(dupes, fmt.Sprintf("%q and %q", a, b))
			continue
		}

		seen[key] = k

		switch val := v.(type) {
		case nil:
		case string:
			if s := strings.TrimSpace(val); s != "" {
				fields[key] = s
			}
		case bool:
			fields[key] = strconv.FormatBool(val)
		case json.Number:
			fields[key] = val.String()
		default:
			nested = append(nested, key)
		}
	}

	if len(dupes) > 0 {
		sort.Strings(dupes)
		return RawRecord{Fields: fields, Err: fmt.Errorf("duplicate keys %s", strings.Join(dupes, ", "))}
	}

	if len(nested) > 0 {
		sort.Strings(nested)
		return RawRecord{Fields: fields, Err: fmt.Errorf("non-scalar value for %s", strings.Join(nested, ", "))}
	}

	return RawRecord{Fields: fields}
}

func envelope(source models.IngestSource, err error) error {
	return &models.EnvelopeError{Source: source, Err: err}
}
