package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegedir/collegedir/internal/models"
)

// CollegeStore provides data access for colleges and their contact info.
type CollegeStore struct {
	Base
}

// NewCollegeStore creates a CollegeStore.
func NewCollegeStore(base Base) *CollegeStore {
	return &CollegeStore{Base: base}
}

// UpsertCollege inserts rec, or updates the college with the same natural key.
// On update, required fields are overwritten and optional fields only when
// rec provides them. Returns true when a new row was inserted.
func (s *CollegeStore) UpsertCollege(ctx context.Context, rec *models.CollegeRecord) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("upsert college: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var (
		id          int64
		wasInserted bool
	)

	err = tx.QueryRow(ctx, `
		INSERT INTO colleges
			(name, category, district, city, type,
			 autonomous, minority, hostel_available, established_year, natural_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (natural_key) DO UPDATE SET
			name             = EXCLUDED.name,
			category         = EXCLUDED.category,
			district         = EXCLUDED.district,
			city             = EXCLUDED.city,
			type             = EXCLUDED.type,
			autonomous       = COALESCE(EXCLUDED.autonomous, colleges.autonomous),
			minority         = COALESCE(EXCLUDED.minority, colleges.minority),
			hostel_available = COALESCE(EXCLUDED.hostel_available, colleges.hostel_available),
			established_year = COALESCE(EXCLUDED.established_year, colleges.established_year),
			updated_at       = now()
		RETURNING id, (xmax = 0) AS was_inserted
	`,
		rec.Name, rec.Category, rec.District, rec.City, rec.Type,
		rec.Autonomous, rec.Minority, rec.HostelAvailable, rec.EstablishedYear,
		rec.NaturalKey(),
	).Scan(&id, &wasInserted)
	if err != nil {
		if isUniqueViolation(err) {
			return false, models.ErrDuplicateKey
		}

		return false, fmt.Errorf("upserting college: %w", err)
	}

	if !rec.Contact.IsZero() {
		if err := upsertContact(ctx, tx, id, rec.Contact); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing college upsert: %w", err)
	}

	return wasInserted, nil
}

func upsertContact(ctx context.Context, tx pgx.Tx, collegeID int64, c models.Contact) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO contact_info (college_id, phone, email, website, address, pincode)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (college_id) DO UPDATE SET
			phone   = COALESCE(EXCLUDED.phone, contact_info.phone),
			email   = COALESCE(EXCLUDED.email, contact_info.email),
			website = COALESCE(EXCLUDED.website, contact_info.website),
			address = COALESCE(EXCLUDED.address, contact_info.address),
			pincode = COALESCE(EXCLUDED.pincode, contact_info.pincode)
	`, collegeID, c.Phone, c.Email, c.Website, c.Address, c.Pincode)
	if err != nil {
		return fmt.Errorf("upserting contact info: %w", err)
	}

	return nil
}

// ListColleges returns one page of colleges matching f, ordered by name, plus
// the total number of matches.
func (s *CollegeStore) ListColleges(ctx context.Context, f models.CollegeFilter) ([]models.College, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	w := buildCollegeFilter(f)

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list colleges: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	var total int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM colleges c "+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting colleges: %w", err)
	}

	limitArg := w.next(clampLimit(f.Limit))
	offsetArg := w.next(f.Offset())

	query := "SELECT " + collegeColumns + " FROM colleges c " + w.clause() +
		" ORDER BY c.name, c.id LIMIT " + limitArg + " OFFSET " + offsetArg

	rows, err := tx.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing colleges: %w", err)
	}
	defer rows.Close()

	colleges, err := collectColleges(rows)
	if err != nil {
		return nil, 0, err
	}

	return colleges, total, nil
}

// buildCollegeFilter translates f into AND-ed conditions. Text filters match
// case-insensitively; search matches any substring of the name.
func buildCollegeFilter(f models.CollegeFilter) *whereBuilder {
	w := &whereBuilder{}

	if f.District != "" {
		w.add("lower(c.district) = lower(?)", f.District)
	}

	if f.Category != "" {
		w.add("lower(c.category) = lower(?)", f.Category)
	}

	if f.CollegeType != "" {
		w.add("lower(c.type) = lower(?)", f.CollegeType)
	}

	if f.Autonomous != nil {
		w.add("c.autonomous = ?", *f.Autonomous)
	}

	if f.HostelAvailable != nil {
		w.add("c.hostel_available = ?", *f.HostelAvailable)
	}

	if f.Search != "" {
		w.add(`c.name ILIKE ? ESCAPE '\'`, containsPattern(f.Search))
	}

	return w
}

// GetCollege returns the detail view of one college.
func (s *CollegeStore) GetCollege(ctx context.Context, id int64) (*models.CollegeDetail, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+collegeColumns+", "+contactColumns+`
		 FROM colleges c
		 LEFT JOIN contact_info ci ON ci.college_id = c.id
		 WHERE c.id = $1`, id)

	d, err := scanCollegeDetail(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCollegeNotFound
		}

		return nil, fmt.Errorf("getting college: %w", err)
	}

	return d, nil
}

// facetColumns maps each facet to its column; facets never reach SQL as text.
var facetColumns = map[models.Facet]string{
	models.FacetDistrict:    "district",
	models.FacetCategory:    "category",
	models.FacetCollegeType: "type",
}

// ListFacetValues returns the sorted distinct values of a facet.
func (s *CollegeStore) ListFacetValues(ctx context.Context, facet models.Facet) ([]string, error) {
	col, ok := facetColumns[facet]
	if !ok {
		return nil, fmt.Errorf("unknown facet %q", facet)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, "SELECT DISTINCT "+col+" FROM colleges ORDER BY "+col)
	if err != nil {
		return nil, fmt.Errorf("listing %s values: %w", facet, err)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning %s values: %w", facet, err)
	}

	return values, nil
}
