package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"ethics-reporting-system/pkg/apperror"
	"ethics-reporting-system/pkg/storage"
	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"
)

type ReportList struct {
	Reports    []models.Report       `json:"reports"`
	Pagination repository.Pagination `json:"pagination"`
}

// ListForAdmin returns filtered, paginated reports with full triage fields.
// Every list access is mirrored to the audit log with its filter set.
func (s *Reports) ListForAdmin(ctx context.Context, filter repository.ReportFilter, page repository.Page, adminID string, meta audit.Metadata) (*ReportList, error) {
	page = page.Normalize()
	reports, total, err := s.reports.List(ctx, filter, page)

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionReportList,
		ResourceType: audit.ResourceReport,
		Details: map[string]interface{}{
			"status":      filter.Status,
			"category_id": filter.CategoryID,
			"assigned_to": filter.AssignedTo,
			"severity":    filter.Severity,
			"search":      filter.Search,
			"page":        page.Page,
		},
		Metadata: meta,
		Success:  err == nil,
	})
	if err != nil {
		return nil, err
	}

	return &ReportList{
		Reports:    reports,
		Pagination: repository.NewPagination(page, total),
	}, nil
}

// AdminDetails returns the fully populated report, internal notes and
// admin-identified history included.
func (s *Reports) AdminDetails(ctx context.Context, reportID, adminID string, meta audit.Metadata) (*models.Report, error) {
	report, err := s.reports.FindByID(ctx, reportID)

	entry := audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionReportView,
		ResourceType: audit.ResourceReport,
		ResourceID:   reportID,
		Metadata:     meta,
		Success:      err == nil,
	}
	if err != nil {
		entry.ErrorMessage = "report lookup failed"
	}
	s.audit.Log(entry)

	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	return report, err
}

// UpdateStatus sets any valid status. Transitions are deliberately
// unrestricted; only enum membership is enforced.
func (s *Reports) UpdateStatus(ctx context.Context, reportID, newStatus, notes, adminID string, meta audit.Metadata) (*models.Report, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, apperror.BadRequest("INVALID_STATUS", "Unknown report status")
	}

	current, err := s.reports.FindByID(ctx, reportID)
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	if err != nil {
		return nil, err
	}

	resolution := ""
	if newStatus == models.StatusResolved && notes != "" {
		resolution = notes
	}

	updated, err := s.reports.UpdateStatus(ctx, reportID, newStatus, resolution, models.StatusEntry{
		Status:    newStatus,
		ChangedBy: adminID,
		Notes:     notes,
		ChangedAt: time.Now(),
	})

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionStatusUpdate,
		ResourceType: audit.ResourceReport,
		ResourceID:   reportID,
		Details: map[string]interface{}{
			"old_status": current.Status,
			"new_status": newStatus,
			"notes":      notes,
		},
		Metadata: meta,
		Success:  err == nil,
	})

	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	if err != nil {
		return nil, err
	}

	s.publish(models.ReportEvent{
		Type:       models.EventReportStatusUpdated,
		ReportID:   updated.ID.Hex(),
		Title:      updated.Title,
		Category:   updated.CategoryName,
		Severity:   updated.Severity,
		Status:     updated.Status,
		OccurredAt: time.Now(),
	})

	return updated, nil
}

// Assign hands a report to an admin and forces a transition to
// UNDER_REVIEW in the status history.
func (s *Reports) Assign(ctx context.Context, reportID, targetAdminID, actingAdminID, notes string, meta audit.Metadata) (*models.Report, error) {
	targetAdminID = strings.TrimSpace(targetAdminID)
	if targetAdminID == "" {
		return nil, apperror.BadRequest("INVALID_ADMIN", "Target admin is required")
	}

	current, err := s.reports.FindByID(ctx, reportID)
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	if err != nil {
		return nil, err
	}

	if notes == "" {
		notes = "Report assigned for review"
	}

	updated, err := s.reports.Assign(ctx, reportID, targetAdminID, models.StatusEntry{
		Status:    models.StatusUnderReview,
		ChangedBy: actingAdminID,
		Notes:     notes,
		ChangedAt: time.Now(),
	})

	s.audit.Log(audit.Entry{
		AdminID:      actingAdminID,
		Action:       audit.ActionReportAssign,
		ResourceType: audit.ResourceReport,
		ResourceID:   reportID,
		Details: map[string]interface{}{
			"old_assignee": current.AssignedTo,
			"new_assignee": targetAdminID,
		},
		Metadata: meta,
		Success:  err == nil,
	})

	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	return updated, err
}

// AddInternalNote appends an admin-only note, never visible to the
// reporter.
func (s *Reports) AddInternalNote(ctx context.Context, reportID, note, adminID string, meta audit.Metadata) (*models.Report, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperror.BadRequest("EMPTY_NOTE", "Note must not be empty")
	}
	if len(note) > maxNoteLen {
		return nil, apperror.BadRequest("NOTE_TOO_LONG", "Note must be at most 1000 characters")
	}

	updated, err := s.reports.AddInternalNote(ctx, reportID, models.InternalNote{
		Note:    note,
		AddedBy: adminID,
		AddedAt: time.Now(),
	})

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionInternalNote,
		ResourceType: audit.ResourceReport,
		ResourceID:   reportID,
		Metadata:     meta,
		Success:      err == nil,
	})

	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	return updated, err
}

// MessageReporter appends an admin reply onto the anonymous thread. The
// admin reference is kept on the document but stripped from public views.
func (s *Reports) MessageReporter(ctx context.Context, reportID, content, adminID string, meta audit.Metadata) (*models.Report, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.BadRequest("EMPTY_MESSAGE", "Message must not be empty")
	}
	if len(content) > maxMessageLen {
		return nil, apperror.BadRequest("MESSAGE_TOO_LONG", "Message must be at most 1000 characters")
	}

	updated, err := s.reports.AddMessage(ctx, reportID, models.Message{
		Content:   content,
		FromAdmin: true,
		SentBy:    adminID,
		SentAt:    time.Now(),
	})

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionReporterMessage,
		ResourceType: audit.ResourceReport,
		ResourceID:   reportID,
		Metadata:     meta,
		Success:      err == nil,
	})

	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	return updated, err
}

// EvidenceDownload verifies the filename belongs to the report's evidence
// list before storage is touched, then streams the file.
func (s *Reports) EvidenceDownload(ctx context.Context, reportID, filename, adminID string, meta audit.Metadata) (io.ReadCloser, *models.EvidenceFile, error) {
	report, err := s.reports.FindByID(ctx, reportID)
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, nil, apperror.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	if err != nil {
		return nil, nil, err
	}

	evFile, ok := report.HasEvidenceFile(filename)
	if !ok {
		s.audit.Log(audit.Entry{
			AdminID:      adminID,
			Action:       audit.ActionEvidenceDownload,
			ResourceType: audit.ResourceEvidence,
			ResourceID:   reportID,
			Details:      map[string]interface{}{"filename": filename},
			Metadata:     meta,
			Success:      false,
			ErrorMessage: "file not in report evidence list",
		})
		return nil, nil, apperror.NotFound("FILE_NOT_FOUND", "Evidence file not found on this report")
	}

	reader, err := s.processor.OpenFile(ctx, evFile.Filename)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, nil, apperror.NotFound("FILE_NOT_FOUND", "Evidence file is missing from storage")
	}
	if err != nil {
		return nil, nil, err
	}

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionEvidenceDownload,
		ResourceType: audit.ResourceEvidence,
		ResourceID:   reportID,
		Details: map[string]interface{}{
			"filename":      evFile.Filename,
			"original_name": evFile.OriginalName,
			"size":          evFile.Size,
		},
		Metadata: meta,
		Success:  true,
	})

	return reader, &evFile, nil
}

type BulkFailure struct {
	ReportID string `json:"report_id"`
	Reason   string `json:"reason"`
}

type BulkResult struct {
	Updated []string      `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
}

// BulkUpdateStatus applies a status change to each ID independently; one
// failure never halts the batch. A single audit entry summarizes counts.
func (s *Reports) BulkUpdateStatus(ctx context.Context, reportIDs []string, newStatus, notes, adminID string, meta audit.Metadata) (*BulkResult, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, apperror.BadRequest("INVALID_STATUS", "Unknown report status")
	}

	result := &BulkResult{}
	for _, id := range reportIDs {
		_, err := s.reports.UpdateStatus(ctx, id, newStatus, "", models.StatusEntry{
			Status:    newStatus,
			ChangedBy: adminID,
			Notes:     notes,
			ChangedAt: time.Now(),
		})
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ReportID: id, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, id)
	}

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionBulkStatusUpdate,
		ResourceType: audit.ResourceReport,
		Details: map[string]interface{}{
			"new_status": newStatus,
			"requested":  len(reportIDs),
			"updated":    len(result.Updated),
			"failed":     len(result.Failed),
		},
		Metadata: meta,
		Success:  len(result.Failed) == 0,
	})

	return result, nil
}

// BulkAssign assigns each ID independently, mirroring BulkUpdateStatus.
func (s *Reports) BulkAssign(ctx context.Context, reportIDs []string, targetAdminID, adminID string, meta audit.Metadata) (*BulkResult, error) {
	targetAdminID = strings.TrimSpace(targetAdminID)
	if targetAdminID == "" {
		return nil, apperror.BadRequest("INVALID_ADMIN", "Target admin is required")
	}

	result := &BulkResult{}
	for _, id := range reportIDs {
		_, err := s.reports.Assign(ctx, id, targetAdminID, models.StatusEntry{
			Status:    models.StatusUnderReview,
			ChangedBy: adminID,
			Notes:     "Report assigned for review",
			ChangedAt: time.Now(),
		})
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ReportID: id, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, id)
	}

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionBulkAssign,
		ResourceType: audit.ResourceReport,
		Details: map[string]interface{}{
			"new_assignee": targetAdminID,
			"requested":    len(reportIDs),
			"updated":      len(result.Updated),
			"failed":       len(result.Failed),
		},
		Metadata: meta,
		Success:  len(result.Failed) == 0,
	})

	return result, nil
}
