package models

import "time"

// Cutoff is a published admission cutoff for a college.
type Cutoff struct {
	ID          int64      `json:"id"`
	CollegeID   int64      `json:"college_id"`
	Year        int        `json:"year"`
	Branch      *string    `json:"branch"`
	Category    *string    `json:"category"`
	CutoffMarks *float64   `json:"cutoff_marks"`
	PDFURL      *string    `json:"pdf_url"`
	CreatedAt   *time.Time `json:"created_at"`
}

// AdmissionRequirement describes how to apply to colleges of a category.
type AdmissionRequirement struct {
	ID                  int64    `json:"id"`
	Category            string   `json:"category"`
	DocumentsRequired   []string `json:"documents_required"`
	EligibilityCriteria *string  `json:"eligibility_criteria"`
	ApplicationProcess  *string  `json:"application_process"`
}
