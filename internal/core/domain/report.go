package domain

import "time"

// ReportType distinguishes full dashboards from single reports.
type ReportType string

const (
	ReportTypeDashboard ReportType = "Dashboard"
	ReportTypeReport    ReportType = "Report"
)

// Valid reports whether t is one of the known report types.
func (t ReportType) Valid() bool {
	return t == ReportTypeDashboard || t == ReportTypeReport
}

// Report is an embedded BI artefact scoped to a single Client.
type Report struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ClientID  string     `json:"client"`
	EmbedURL  string     `json:"power_bi_embed_url"`
	Type      ReportType `json:"type"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
