package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report statuses. Any known status may be set in any order; the enum is a
// membership check, not a transition graph.
const (
	StatusSubmitted     = "SUBMITTED"
	StatusUnderReview   = "UNDER_REVIEW"
	StatusInvestigating = "INVESTIGATING"
	StatusResolved      = "RESOLVED"
	StatusClosed        = "CLOSED"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

var validStatuses = map[string]bool{
	StatusSubmitted:     true,
	StatusUnderReview:   true,
	StatusInvestigating: true,
	StatusResolved:      true,
	StatusClosed:        true,
}

var validSeverities = map[string]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

func IsValidStatus(s string) bool   { return validStatuses[s] }
func IsValidSeverity(s string) bool { return validSeverities[s] }

// Tracking IDs are strictly canonical UUIDv4. Anything else is rejected
// before storage is ever queried.
var trackingIDPattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

func IsValidTrackingID(s string) bool {
	return trackingIDPattern.MatchString(s)
}

// EvidenceFile is metadata only; file bytes live in the blob store under
// the generated Filename, never inline in the document.
type EvidenceFile struct {
	Filename         string    `bson:"filename" json:"filename"`
	OriginalName     string    `bson:"original_name" json:"original_name"`
	MimeType         string    `bson:"mime_type" json:"mime_type"`
	Size             int64     `bson:"size" json:"size"`
	SHA256           string    `bson:"sha256" json:"sha256"`
	MetadataStripped bool      `bson:"metadata_stripped" json:"metadata_stripped"`
	UploadedAt       time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// StatusEntry is one row of the append-only status history. ChangedBy is
// empty only for the seed entry written at submission.
type StatusEntry struct {
	Status    string    `bson:"status" json:"status"`
	ChangedBy string    `bson:"changed_by,omitempty" json:"changed_by,omitempty"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	ChangedAt time.Time `bson:"changed_at" json:"changed_at"`
}

type InternalNote struct {
	Note    string    `bson:"note" json:"note"`
	AddedBy string    `bson:"added_by" json:"added_by"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

// Message is one entry of the reporter/admin thread. Reporter messages
// never carry a sender reference.
type Message struct {
	Content   string    `bson:"content" json:"content"`
	FromAdmin bool      `bson:"from_admin" json:"from_admin"`
	SentBy    string    `bson:"sent_by,omitempty" json:"sent_by,omitempty"`
	SentAt    time.Time `bson:"sent_at" json:"sent_at"`
}

// Report deliberately has no fields for IP, user agent, or any submitter
// identity. The tracking ID is the only link between a reporter and a
// report.
type Report struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingID    string             `bson:"tracking_id" json:"tracking_id"`
	CategoryID    primitive.ObjectID `bson:"category_id" json:"category_id"`
	CategoryName  string             `bson:"category_name" json:"category_name"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	IncidentDate  time.Time          `bson:"incident_date" json:"incident_date"`
	Location      string             `bson:"location,omitempty" json:"location,omitempty"`
	Severity      string             `bson:"severity" json:"severity"`
	Status        string             `bson:"status" json:"status"`
	Priority      string             `bson:"priority,omitempty" json:"priority,omitempty"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	AssignedTo    string             `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Resolution    string             `bson:"resolution,omitempty" json:"resolution,omitempty"`
	Evidence      []EvidenceFile     `bson:"evidence" json:"evidence"`
	StatusHistory []StatusEntry      `bson:"status_history" json:"status_history"`
	InternalNotes []InternalNote     `bson:"internal_notes" json:"internal_notes"`
	Messages      []Message          `bson:"messages" json:"messages"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasEvidenceFile reports whether filename is one of the report's stored
// evidence names. Download paths must check this before touching storage.
func (r *Report) HasEvidenceFile(filename string) (EvidenceFile, bool) {
	for _, ev := range r.Evidence {
		if ev.Filename == filename {
			return ev, true
		}
	}
	return EvidenceFile{}, false
}

type PublicStatusEntry struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type PublicMessage struct {
	Content   string    `json:"content"`
	FromAdmin bool      `json:"from_admin"`
	SentAt    time.Time `json:"sent_at"`
}

type PublicEvidence struct {
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// PublicReportView is everything an anonymous caller may see. No assignee,
// no internal notes, no admin identifiers anywhere.
type PublicReportView struct {
	TrackingID    string              `json:"tracking_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Status        string              `json:"status"`
	Severity      string              `json:"severity"`
	IncidentDate  time.Time           `json:"incident_date"`
	Location      string              `json:"location,omitempty"`
	Evidence      []PublicEvidence    `json:"evidence"`
	StatusHistory []PublicStatusEntry `json:"status_history"`
	Messages      []PublicMessage     `json:"messages"`
	SubmittedAt   time.Time           `json:"submitted_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (r *Report) PublicView() PublicReportView {
	view := PublicReportView{
		TrackingID:    r.TrackingID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.CategoryName,
		Status:        r.Status,
		Severity:      r.Severity,
		IncidentDate:  r.IncidentDate,
		Location:      r.Location,
		Evidence:      make([]PublicEvidence, 0, len(r.Evidence)),
		StatusHistory: make([]PublicStatusEntry, 0, len(r.StatusHistory)),
		Messages:      make([]PublicMessage, 0, len(r.Messages)),
		SubmittedAt:   r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	for _, ev := range r.Evidence {
		view.Evidence = append(view.Evidence, PublicEvidence{
			OriginalName: ev.OriginalName,
			MimeType:     ev.MimeType,
			Size:         ev.Size,
			UploadedAt:   ev.UploadedAt,
		})
	}
	for _, h := range r.StatusHistory {
		view.StatusHistory = append(view.StatusHistory, PublicStatusEntry{
			Status:    h.Status,
			Notes:     h.Notes,
			ChangedAt: h.ChangedAt,
		})
	}
	for _, m := range r.Messages {
		view.Messages = append(view.Messages, PublicMessage{
			Content:   m.Content,
			FromAdmin: m.FromAdmin,
			SentAt:    m.SentAt,
		})
	}
	return view
}
