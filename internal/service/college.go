// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/domain"
	"github.com/collegedir/collegedir/internal/models"
)

// CollegeStore is the data-access interface CollegeService reads colleges from.
type CollegeStore = domain.CollegeReader

// ReferenceStore is the data-access interface for cutoffs and admission requirements.
type ReferenceStore = domain.ReferenceReader

// CollegeService serves the read-only directory views.
type CollegeService struct {
	store        CollegeStore
	refs         ReferenceStore
	log          *logrus.Logger
	defaultLimit int
	maxLimit     int
}

// NewCollegeService creates a CollegeService. defaultLimit applies when a
// listing asks for no page size; larger requests are capped at maxLimit.
func NewCollegeService(store CollegeStore, refs ReferenceStore, log *logrus.Logger, defaultLimit, maxLimit int) *CollegeService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}

	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}

	return &CollegeService{store: store, refs: refs, log: log, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// ListColleges returns one page of colleges matching f.
func (s *CollegeService) ListColleges(ctx context.Context, f models.CollegeFilter) (*models.CollegePage, error) {
	f = s.normalizePage(f)

	colleges, total, err := s.store.ListColleges(ctx, f)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"page":  f.Page,
		"limit": f.Limit,
		"total": total,
	}).Debug("colleges.list")

	return models.NewCollegePage(colleges, total, f.Page, f.Limit), nil
}

func (s *CollegeService) normalizePage(f models.CollegeFilter) models.CollegeFilter {
	if f.Page < 1 {
		f.Page = 1
	}

	switch {
	case f.Limit <= 0:
		f.Limit = s.defaultLimit
	case f.Limit > s.maxLimit:
		f.Limit = s.maxLimit
	}

	return f
}

// GetCollege returns one college with its contact details (pass-through).
func (s *CollegeService) GetCollege(ctx context.Context, id int64) (*models.CollegeDetail, error) {
	if id <= 0 {
		return nil, models.ErrCollegeNotFound
	}

	return s.store.GetCollege(ctx, id)
}

// ListFacetValues returns the distinct values of a facet (pass-through).
func (s *CollegeService) ListFacetValues(ctx context.Context, facet models.Facet) ([]string, error) {
	return s.store.ListFacetValues(ctx, facet)
}

// ListCutoffs returns a college's published cutoffs.
func (s *CollegeService) ListCutoffs(ctx context.Context, collegeID int64) ([]models.Cutoff, error) {
	cutoffs, err := s.refs.ListCutoffs(ctx, collegeID)
	if err != nil {
		return nil, err
	}

	if cutoffs == nil {
		cutoffs = []models.Cutoff{}
	}

	return cutoffs, nil
}

// GetAdmissionRequirement returns the admission requirement for a category (pass-through).
func (s *CollegeService) GetAdmissionRequirement(ctx context.Context, category string) (*models.AdmissionRequirement, error) {
	return s.refs.GetAdmissionRequirement(ctx, category)
}
