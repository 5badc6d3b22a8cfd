package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// AdminService handles the authenticated admin endpoints.
type AdminService struct {
	c *Client
}

// UploadCSV uploads CSV text as the raw request body.
func (s *AdminService) UploadCSV(ctx context.Context, r io.Reader) (*UploadReport, error) {
	return s.upload(ctx, "/api/admin/upload/csv", "text/csv", r)
}

// UploadJSON uploads a JSON document: {"colleges": [...]} or a bare array.
func (s *AdminService) UploadJSON(ctx context.Context, r io.Reader) (*UploadReport, error) {
	return s.upload(ctx, "/api/admin/upload/json", "application/json", r)
}

func (s *AdminService) upload(ctx context.Context, path, contentType string, r io.Reader) (*UploadReport, error) {
	body, err := s.c.send(ctx, http.MethodPost, path, contentType, r)
	if err != nil {
		return nil, err
	}

	var report UploadReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &report, nil
}

// Stats returns aggregate directory statistics.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	var resp Stats
	if err := s.c.get(ctx, "/api/admin/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Template returns the CSV upload template.
func (s *AdminService) Template(ctx context.Context) ([]byte, error) {
	return s.c.send(ctx, http.MethodGet, "/api/admin/template", "", nil)
}

// Runs returns recorded uploads, newest first.
func (s *AdminService) Runs(ctx context.Context, limit, offset int) (*RunsPage, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var resp RunsPage
	if err := s.c.get(ctx, "/api/admin/runs", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Test checks that the admin key is accepted and returns its name.
func (s *AdminService) Test(ctx context.Context) (string, error) {
	var resp struct {
		Admin string `json:"admin"`
	}
	if err := s.c.get(ctx, "/api/admin/test", nil, &resp); err != nil {
		return "", err
	}
	return resp.Admin, nil
}
