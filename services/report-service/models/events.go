package models

import "time"

const (
	EventReportCreated       = "report.created"
	EventReportStatusUpdated = "report.status_updated"
)

// ReportEvent is published to the report_events queue for the notification
// service. It carries triage context only, no reporter-side data exists to
// leak.
type ReportEvent struct {
	Type       string    `json:"type"`
	ReportID   string    `json:"report_id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Severity   string    `json:"severity"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
