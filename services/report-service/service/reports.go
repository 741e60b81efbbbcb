package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"ethics-reporting-system/pkg/apperror"
	"ethics-reporting-system/services/report-service/evidence"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"

	"github.com/google/uuid"
)

const (
	minTitleLen       = 5
	maxTitleLen       = 200
	minDescriptionLen = 20
	maxDescriptionLen = 5000
	maxLocationLen    = 500
	maxMessageLen     = 1000
	maxNoteLen        = 1000
)

type SubmitInput struct {
	CategoryID   string    `json:"category_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	IncidentDate time.Time `json:"incident_date"`
	Location     string    `json:"location"`
	Severity     string    `json:"severity"`
}

// SubmitResult is everything an anonymous submitter ever gets back: the
// tracking ID, status and timestamp, plus per-file failures if any.
type SubmitResult struct {
	TrackingID  string               `json:"tracking_id"`
	Status      string               `json:"status"`
	SubmittedAt time.Time            `json:"submitted_at"`
	FileErrors  []evidence.FileError `json:"file_errors,omitempty"`
}

// SubmitAnonymous validates input, processes evidence, and persists a new
// report under a fresh tracking ID. No caller identity exists in this flow.
func (s *Reports) SubmitAnonymous(ctx context.Context, input SubmitInput, uploads []evidence.Upload) (*SubmitResult, error) {
	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.BadRequest("INVALID_CATEGORY", "Unknown report category")
		}
		return nil, err
	}
	if !category.IsActive() {
		return nil, apperror.BadRequest("INVALID_CATEGORY", "Report category is not accepting submissions")
	}

	title := strings.TrimSpace(input.Title)
	if len(title) < minTitleLen || len(title) > maxTitleLen {
		return nil, apperror.BadRequest("VALIDATION_ERROR", "Title must be between 5 and 200 characters")
	}
	description := strings.TrimSpace(input.Description)
	if len(description) < minDescriptionLen || len(description) > maxDescriptionLen {
		return nil, apperror.BadRequest("VALIDATION_ERROR", "Description must be between 20 and 5000 characters")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" || len(location) > maxLocationLen {
		return nil, apperror.BadRequest("VALIDATION_ERROR", "Location is required and must be at most 500 characters")
	}

	if input.IncidentDate.IsZero() || input.IncidentDate.After(time.Now()) {
		return nil, apperror.BadRequest("INVALID_DATE", "Incident date must not be in the future")
	}

	severity := input.Severity
	if severity == "" {
		severity = category.DefaultSeverity
	}
	if !models.IsValidSeverity(severity) {
		return nil, apperror.BadRequest("INVALID_SEVERITY", "Severity must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}

	// Partial evidence failures do not fail the submission.
	processed, fileErrors := s.processor.ProcessAll(ctx, uploads)

	now := time.Now()
	report := &models.Report{
		TrackingID:   uuid.NewString(),
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Title:        title,
		Description:  description,
		IncidentDate: input.IncidentDate,
		Location:     location,
		Severity:     severity,
		Status:       models.StatusSubmitted,
		Evidence:     processed,
		StatusHistory: []models.StatusEntry{{
			Status:    models.StatusSubmitted,
			Notes:     "Report submitted",
			ChangedAt: now,
		}},
		InternalNotes: []models.InternalNote{},
		Messages:      []models.Message{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, err
	}

	if err := s.categories.IncrementReportCount(ctx, category.ID); err != nil {
		log.Printf("[WARN] Failed to increment report count for category %s: %v", category.Name, err)
	}

	s.publish(models.ReportEvent{
		Type:       models.EventReportCreated,
		ReportID:   report.ID.Hex(),
		Title:      report.Title,
		Category:   report.CategoryName,
		Severity:   report.Severity,
		Status:     report.Status,
		OccurredAt: now,
	})

	return &SubmitResult{
		TrackingID:  report.TrackingID,
		Status:      report.Status,
		SubmittedAt: report.CreatedAt,
		FileErrors:  fileErrors,
	}, nil
}

// Track returns the anonymous projection of a report. Malformed tracking
// IDs are rejected before any storage access.
func (s *Reports) Track(ctx context.Context, trackingID string) (*models.PublicReportView, error) {
	if !models.IsValidTrackingID(trackingID) {
		return nil, apperror.BadRequest("INVALID_TRACKING_ID", "Tracking ID must be a valid UUID")
	}

	report, err := s.reports.FindByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.NotFound("REPORT_NOT_FOUND", "No report found for this tracking ID")
		}
		return nil, err
	}

	view := report.PublicView()
	return &view, nil
}

// AddReporterMessage appends an anonymous follow-up message. Duplicate
// content is appended again, never deduplicated.
func (s *Reports) AddReporterMessage(ctx context.Context, trackingID, content string) error {
	if !models.IsValidTrackingID(trackingID) {
		return apperror.BadRequest("INVALID_TRACKING_ID", "Tracking ID must be a valid UUID")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return apperror.BadRequest("EMPTY_MESSAGE", "Message must not be empty")
	}
	if len(content) > maxMessageLen {
		return apperror.BadRequest("MESSAGE_TOO_LONG", "Message must be at most 1000 characters")
	}

	err := s.reports.AddMessageByTrackingID(ctx, trackingID, models.Message{
		Content:   content,
		FromAdmin: false,
		SentAt:    time.Now(),
	})
	if errors.Is(err, repository.ErrReportNotFound) {
		return apperror.NotFound("REPORT_NOT_FOUND", "No report found for this tracking ID")
	}
	return err
}
