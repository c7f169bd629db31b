package advisor

import "time"

// SummaryID identifier type
type SummaryID string

// Summary is an AI-generated compliance narrative stored for auditing
// and retrieval.
type Summary struct {
	ID        SummaryID `json:"id"`
	StationID string    `json:"station_id"`
	ReportID  string    `json:"report_id,omitempty"`
	FileURL   string    `json:"file_url"`
	Result    string    `json:"result"` // JSON string from the model
	CreatedAt time.Time `json:"created_at"`
}
