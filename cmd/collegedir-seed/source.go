package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/collegedir/collegedir/internal/ingest"
	"github.com/collegedir/collegedir/internal/models"
)

type sourceFormat string

const (
	formatJSON   sourceFormat = "json"
	formatCSV    sourceFormat = "csv"
	formatSQLite sourceFormat = "sqlite"
)

// detectFormat picks the reader from the file extension, defaulting to JSON.
func detectFormat(path string) sourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV
	case ".db", ".sqlite", ".sqlite3":
		return formatSQLite
	default:
		return formatJSON
	}
}

func readSource(ctx context.Context, path string, format sourceFormat, table string) ([]ingest.RawRecord, error) {
	if format == formatSQLite {
		return readSQLite(ctx, path, table)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if format == formatCSV {
		return ingest.DecodeCSV(data)
	}

	return ingest.DecodeJSON(data)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var triStateColumns = map[string]bool{
	ingest.FieldAutonomous:      true,
	ingest.FieldMinority:        true,
	ingest.FieldHostelAvailable: true,
}

// readSQLite reads every row of table from a legacy SQLite export. When the
// database also has a contact_info table keyed by college_id, its columns are
// joined in. Integer 0/1 in boolean columns become false/true.
func readSQLite(ctx context.Context, path, table string) ([]ingest.RawRecord, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid sqlite table name %q", table)
	}

	lite, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer lite.Close()

	hasContact, err := sqliteHasTable(ctx, lite, "contact_info")
	if err != nil {
		return nil, err
	}

	query := `SELECT * FROM "` + table + `"`
	if hasContact && table != "contact_info" {
		query = `SELECT c.*, ci.phone, ci.email, ci.website, ci.address, ci.pincode
			FROM "` + table + `" c LEFT JOIN contact_info ci ON ci.college_id = c.id`
	}

	rows, err := lite.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sqlite: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read sqlite columns: %w", err)
	}

	for i := range cols {
		cols[i] = strings.ToLower(strings.TrimSpace(cols[i]))
	}

	var records []ingest.RawRecord

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan sqlite row: %w", err)
		}

		fields := make(map[string]string, len(cols))

		for i, col := range cols {
			// A joined contact column that is NULL must not mask a value
			// already read from the college table.
			if v := sqliteText(col, values[i]); v != "" {
				fields[col] = v
			}
		}

		records = append(records, ingest.RawRecord{Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sqlite rows: %w", err)
	}

	return records, nil
}

func sqliteHasTable(ctx context.Context, lite *sql.DB, name string) (bool, error) {
	var n int

	err := lite.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect sqlite schema: %w", err)
	}

	return n > 0, nil
}

// sqliteText renders a scanned SQLite value the way it would appear in a CSV cell.
func sqliteText(col string, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		if triStateColumns[col] && (x == 0 || x == 1) {
			return strconv.FormatBool(x == 1)
		}

		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// dryRunStore stands in for the database during a dry run: the first record
// with a natural key counts as an insert, repeats as updates.
type dryRunStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newDryRunStore() *dryRunStore {
	return &dryRunStore{seen: make(map[string]bool)}
}

func (s *dryRunStore) UpsertCollege(_ context.Context, rec *models.CollegeRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.NaturalKey()
	if s.seen[key] {
		return false, nil
	}

	s.seen[key] = true

	return true, nil
}
