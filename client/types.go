package client

import "time"

// College is a directory entry as listed in browse results. Nil booleans
// and years are unknown.
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

// CollegeDetail is a college plus its contact fields.
type CollegeDetail struct {
	College
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	Address *string `json:"address"`
	Pincode *string `json:"pincode"`
}

// CollegePage is one page of a college listing.
type CollegePage struct {
	Colleges   []College `json:"colleges"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
}

// ListOptions narrows a college listing. Zero values are omitted.
type ListOptions struct {
	District        string
	Category        string
	CollegeType     string
	Autonomous      *bool
	HostelAvailable *bool
	Search          string
	Page            int
	Limit           int
}

// Cutoff is a published admission cutoff.
type Cutoff struct {
	ID          int64    `json:"id"`
	CollegeID   int64    `json:"college_id"`
	Year        int      `json:"year"`
	Branch      *string  `json:"branch"`
	Category    *string  `json:"category"`
	CutoffMarks *float64 `json:"cutoff_marks"`
	PDFURL      *string  `json:"pdf_url"`
}

// AdmissionRequirement describes how to apply to colleges of a category.
type AdmissionRequirement struct {
	ID                  int64    `json:"id"`
	Category            string   `json:"category"`
	DocumentsRequired   []string `json:"documents_required"`
	EligibilityCriteria *string  `json:"eligibility_criteria"`
	ApplicationProcess  *string  `json:"application_process"`
}

// UploadReport is the result of one bulk upload.
type UploadReport struct {
	Message  string   `json:"message"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}

// IngestRun is one recorded upload.
type IngestRun struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	Total      int       `json:"total"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Failed     int       `json:"failed"`
	Actor      string    `json:"actor,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunsPage is one page of the upload history.
type RunsPage struct {
	Runs    []IngestRun `json:"runs"`
	HasMore bool        `json:"has_more"`
}

// Stats maps a stat name (total_colleges, district_<name>, ...) to its count.
type Stats map[string]int64

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadinessResponse is returned by the readiness endpoint.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
