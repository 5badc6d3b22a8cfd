// Package models defines data types for the college directory.
package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// College is a directory entry as listed in browse results.
type College struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	District        string    `json:"district"`
	City            string    `json:"city"`
	Type            string    `json:"type"`
	Autonomous      *bool     `json:"autonomous"`
	Minority        *bool     `json:"minority"`
	HostelAvailable *bool     `json:"hostel_available"`
	EstablishedYear *int      `json:"established_year"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Contact holds the optional contact fields stored alongside a college.
type Contact struct {
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	Address *string `json:"address"`
	Pincode *string `json:"pincode"`
}

// IsZero reports whether no contact field is set.
func (c Contact) IsZero() bool {
	return c.Phone == nil && c.Email == nil && c.Website == nil && c.Address == nil && c.Pincode == nil
}

// CollegeDetail is the canonical detail shape: the college plus its contact fields.
type CollegeDetail struct {
	College
	Contact
}

// NaturalKey returns the case-insensitive identity of a college, used to
// decide between insert and update when no numeric ID is known.
func NaturalKey(name, district, city string) string {
	fold := cases.Fold()
	parts := []string{name, district, city}
	for i, p := range parts {
		parts[i] = fold.String(strings.Join(strings.Fields(p), " "))
	}

	return strings.Join(parts, "\x1f")
}

// CollegeFilter narrows a college listing. Zero values mean "no filter".
type CollegeFilter struct {
	District        string
	Category        string
	CollegeType     string
	Autonomous      *bool
	HostelAvailable *bool
	Search          string
	Page            int
	Limit           int
}

// Offset returns the row offset for the filter's page and limit.
func (f CollegeFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}

	return (f.Page - 1) * f.Limit
}

// CollegePage is one page of a filtered college listing.
type CollegePage struct {
	Colleges   []College `json:"colleges"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
}

// NewCollegePage assembles page metadata from a result slice and total count.
func NewCollegePage(colleges []College, total int64, page, limit int) *CollegePage {
	if colleges == nil {
		colleges = []College{}
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return &CollegePage{
		Colleges:   colleges,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Facet names a browsable dimension with a distinct value list.
type Facet string

// Browsable facets.
const (
	FacetDistrict    Facet = "district"
	FacetCategory    Facet = "category"
	FacetCollegeType Facet = "type"
)
