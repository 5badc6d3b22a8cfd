package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegedir/collegedir/internal/models"
)

// ReferenceStore provides read access to cutoffs and admission requirements.
type ReferenceStore struct {
	Base
}

// NewReferenceStore creates a ReferenceStore.
func NewReferenceStore(base Base) *ReferenceStore {
	return &ReferenceStore{Base: base}
}

// ListCutoffs returns a college's cutoffs, newest year first.
func (s *ReferenceStore) ListCutoffs(ctx context.Context, collegeID int64) ([]models.Cutoff, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT id, college_id, year, branch, category, cutoff_marks, pdf_url, created_at
		FROM cutoffs
		WHERE college_id = $1
		ORDER BY year DESC, id`, collegeID)
	if err != nil {
		return nil, fmt.Errorf("listing cutoffs: %w", err)
	}

	cutoffs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Cutoff, error) {
		var c models.Cutoff
		err := row.Scan(&c.ID, &c.CollegeID, &c.Year, &c.Branch, &c.Category, &c.CutoffMarks, &c.PDFURL, &c.CreatedAt)

		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning cutoffs: %w", err)
	}

	return cutoffs, nil
}

// GetAdmissionRequirement returns the requirement record for a category,
// matched case-insensitively.
func (s *ReferenceStore) GetAdmissionRequirement(ctx context.Context, category string) (*models.AdmissionRequirement, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var r models.AdmissionRequirement

	err := s.Pool.QueryRow(ctx, `
		SELECT id, category, documents_required, eligibility_criteria, application_process
		FROM admission_requirements
		WHERE lower(category) = lower($1)`, category,
	).Scan(&r.ID, &r.Category, &r.DocumentsRequired, &r.EligibilityCriteria, &r.ApplicationProcess)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAdmissionNotFound
		}

		return nil, fmt.Errorf("getting admission requirement: %w", err)
	}

	if r.DocumentsRequired == nil {
		r.DocumentsRequired = []string{}
	}

	return &r, nil
}
