package client

import (
	"context"
	"net/url"
	"strconv"
)

// CollegeService handles the public directory endpoints.
type CollegeService struct {
	c *Client
}

// List returns one page of colleges matching opts.
func (s *CollegeService) List(ctx context.Context, opts *ListOptions) (*CollegePage, error) {
	return s.list(ctx, "/api/colleges", opts)
}

// ByDistrict lists colleges in a district; other filters in opts still apply.
func (s *CollegeService) ByDistrict(ctx context.Context, district string, opts *ListOptions) (*CollegePage, error) {
	return s.list(ctx, "/api/colleges/district/"+url.PathEscape(district), opts)
}

// ByCategory lists colleges of a category; other filters in opts still apply.
func (s *CollegeService) ByCategory(ctx context.Context, category string, opts *ListOptions) (*CollegePage, error) {
	return s.list(ctx, "/api/colleges/category/"+url.PathEscape(category), opts)
}

func (s *CollegeService) list(ctx context.Context, path string, opts *ListOptions) (*CollegePage, error) {
	var resp CollegePage
	if err := s.c.get(ctx, path, opts.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get returns a college with its contact fields.
func (s *CollegeService) Get(ctx context.Context, id int64) (*CollegeDetail, error) {
	var resp CollegeDetail
	if err := s.c.get(ctx, "/api/colleges/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cutoffs returns the published cutoffs of a college, newest year first.
func (s *CollegeService) Cutoffs(ctx context.Context, collegeID int64) ([]Cutoff, error) {
	var resp []Cutoff
	if err := s.c.get(ctx, "/api/cutoffs/"+strconv.FormatInt(collegeID, 10), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Admission returns the admission requirement for a category.
func (s *CollegeService) Admission(ctx context.Context, category string) (*AdmissionRequirement, error) {
	var resp AdmissionRequirement
	if err := s.c.get(ctx, "/api/admission-requirements/"+url.PathEscape(category), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (o *ListOptions) values() url.Values {
	if o == nil {
		return nil
	}

	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("district", o.District)
	set("category", o.Category)
	set("college_type", o.CollegeType)
	set("search", o.Search)
	if o.Autonomous != nil {
		v.Set("autonomous", strconv.FormatBool(*o.Autonomous))
	}
	if o.HostelAvailable != nil {
		v.Set("hostel_available", strconv.FormatBool(*o.HostelAvailable))
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// FacetService lists the distinct values of browsable fields.
type FacetService struct {
	c *Client
}

// Districts returns every district with at least one college, sorted.
func (s *FacetService) Districts(ctx context.Context) ([]string, error) {
	return s.list(ctx, "/api/districts")
}

// Categories returns every college category, sorted.
func (s *FacetService) Categories(ctx context.Context) ([]string, error) {
	return s.list(ctx, "/api/categories")
}

// CollegeTypes returns every college type, sorted.
func (s *FacetService) CollegeTypes(ctx context.Context) ([]string, error) {
	return s.list(ctx, "/api/college-types")
}

func (s *FacetService) list(ctx context.Context, path string) ([]string, error) {
	var resp []string
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
