package models

import "time"

// IngestSource names the envelope shape an upload arrived in.
type IngestSource string

// Supported ingestion sources.
const (
	SourceCSV  IngestSource = "csv"
	SourceJSON IngestSource = "json"
)

// IngestReport is the reconciliation report returned for one upload call.
// Inserted + Updated + len(Errors) always equals the number of input records.
type IngestReport struct {
	Message  string   `json:"message"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}

// Total returns the number of records the report accounts for.
func (r *IngestReport) Total() int {
	return r.Inserted + r.Updated + len(r.Errors)
}

// IngestRun is the persisted log line for one completed upload.
type IngestRun struct {
	ID         int64        `json:"id"`
	Source     IngestSource `json:"source"`
	Total      int          `json:"total"`
	Inserted   int          `json:"inserted"`
	Updated    int          `json:"updated"`
	Failed     int          `json:"failed"`
	Actor      string       `json:"actor,omitempty"`
	RequestID  string       `json:"request_id,omitempty"`
	DurationMS int64        `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Stats maps a stat name (total_colleges, district_<name>, ...) to its count.
type Stats map[string]int64
