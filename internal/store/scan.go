package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegedir/collegedir/internal/models"
)

// collegeColumns lists the columns selected for college queries.
const collegeColumns = `c.id, c.name, c.category, c.district, c.city, c.type,
	c.autonomous, c.minority, c.hostel_available, c.established_year,
	c.created_at, c.updated_at`

// contactColumns lists the contact columns joined onto college detail queries.
const contactColumns = `ci.phone, ci.email, ci.website, ci.address, ci.pincode`

// collegeDest returns scan destinations for collegeColumns.
func collegeDest(c *models.College) []any {
	return []any{
		&c.ID, &c.Name, &c.Category, &c.District, &c.City, &c.Type,
		&c.Autonomous, &c.Minority, &c.HostelAvailable, &c.EstablishedYear,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

// scanCollegeDetail scans collegeColumns followed by contactColumns.
func scanCollegeDetail(scan func(dest ...any) error) (*models.CollegeDetail, error) {
	var d models.CollegeDetail

	dest := append(collegeDest(&d.College),
		&d.Phone, &d.Email, &d.Website, &d.Address, &d.Pincode,
	)
	if err := scan(dest...); err != nil {
		return nil, err
	}

	return &d, nil
}

// collectColleges scans all rows into a college slice.
func collectColleges(rows pgx.Rows) ([]models.College, error) {
	colleges := make([]models.College, 0, 16)

	for rows.Next() {
		var c models.College
		if err := rows.Scan(collegeDest(&c)...); err != nil {
			return nil, fmt.Errorf("scanning college row: %w", err)
		}

		colleges = append(colleges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating college rows: %w", err)
	}

	return colleges, nil
}
