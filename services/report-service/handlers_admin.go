package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ethics-reporting-system/pkg/middleware"
	"ethics-reporting-system/pkg/response"
	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/repository"
)

func pageFromQuery(r *http.Request) repository.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return repository.Page{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}.Normalize()
}

func reportFilterFromQuery(r *http.Request) repository.ReportFilter {
	q := r.URL.Query()
	filter := repository.ReportFilter{
		Status:     q.Get("status"),
		CategoryID: q.Get("category"),
		AssignedTo: q.Get("assigned_to"),
		Severity:   q.Get("severity"),
		Search:     q.Get("search"),
	}
	if raw := q.Get("from"); raw != "" {
		if t, ok := parseIncidentDate(raw); ok {
			filter.From = &t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, ok := parseIncidentDate(raw); ok {
			filter.To = &t
		}
	}
	return filter
}

func adminReportsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	claims, _ := middleware.AdminFromContext(r.Context())
	meta := audit.MetadataFromRequest(r)

	list, err := reportsSvc.ListForAdmin(r.Context(), reportFilterFromQuery(r), pageFromQuery(r), claims.AdminID, meta)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Reports fetched successfully", list)
}

// adminReportDetailHandler routes everything under /api/admin/reports/:
// bulk operations, single-report triage actions, and evidence downloads.
func adminReportDetailHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.AdminFromContext(r.Context())
	meta := audit.MetadataFromRequest(r)

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/reports/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	if parts[0] == "bulk" && len(parts) == 2 && r.Method == http.MethodPost {
		bulkHandler(w, r, parts[1], claims.AdminID, meta)
		return
	}

	reportID := parts[0]
	if reportID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing report ID")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		report, err := reportsSvc.AdminDetails(r.Context(), reportID, claims.AdminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Report fetched successfully", report)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPut:
		var body struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		report, err := reportsSvc.UpdateStatus(r.Context(), reportID, body.Status, body.Notes, claims.AdminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Report status updated", report)

	case len(parts) == 2 && parts[1] == "assign" && r.Method == http.MethodPut:
		var body struct {
			AdminID string `json:"admin_id"`
			Notes   string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		report, err := reportsSvc.Assign(r.Context(), reportID, body.AdminID, claims.AdminID, body.Notes, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Report assigned", report)

	case len(parts) == 2 && parts[1] == "notes" && r.Method == http.MethodPost:
		var body struct {
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		report, err := reportsSvc.AddInternalNote(r.Context(), reportID, body.Note, claims.AdminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusCreated, "Internal note added", report)

	case len(parts) == 2 && parts[1] == "messages" && r.Method == http.MethodPost:
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		report, err := reportsSvc.MessageReporter(r.Context(), reportID, body.Message, claims.AdminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusCreated, "Message sent to reporter", report)

	case len(parts) == 3 && parts[1] == "evidence" && r.Method == http.MethodGet:
		downloadEvidenceHandler(w, r, reportID, parts[2], claims.AdminID, meta)

	default:
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	}
}

func bulkHandler(w http.ResponseWriter, r *http.Request, op, adminID string, meta audit.Metadata) {
	switch op {
	case "status":
		var body struct {
			ReportIDs []string `json:"report_ids"`
			Status    string   `json:"status"`
			Notes     string   `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		result, err := reportsSvc.BulkUpdateStatus(r.Context(), body.ReportIDs, body.Status, body.Notes, adminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Bulk status update processed", result)

	case "assign":
		var body struct {
			ReportIDs []string `json:"report_ids"`
			AdminID   string   `json:"admin_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		result, err := reportsSvc.BulkAssign(r.Context(), body.ReportIDs, body.AdminID, adminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Bulk assignment processed", result)

	default:
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	}
}

func downloadEvidenceHandler(w http.ResponseWriter, r *http.Request, reportID, filename, adminID string, meta audit.Metadata) {
	reader, evFile, err := reportsSvc.EvidenceDownload(r.Context(), reportID, filename, adminID, meta)
	if err != nil {
		response.AppError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", evFile.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", evFile.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(evFile.Size, 10))

	if _, err := io.Copy(w, reader); err != nil {
		middleware.LogError(middleware.GetTraceID(r), "Evidence stream interrupted", err)
	}
}

func adminContactListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	claims, _ := middleware.AdminFromContext(r.Context())
	list, err := contactSvc.List(r.Context(), pageFromQuery(r), claims.AdminID, audit.MetadataFromRequest(r))
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Contact messages fetched", list)
}

func adminContactDetailHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/contact-messages/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	if len(parts) == 2 && parts[1] == "read" && r.Method == http.MethodPut {
		if err := contactSvc.MarkRead(r.Context(), parts[0]); err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Message marked as read", nil)
		return
	}
	response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
}

// auditFilterFromQuery builds the audit read-side filter.
func auditFilterFromQuery(r *http.Request) audit.Filter {
	q := r.URL.Query()
	filter := audit.Filter{
		AdminID:      q.Get("admin_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
	}
	if raw := q.Get("success"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.Success = &b
		}
	}
	if raw := q.Get("from"); raw != "" {
		if t, ok := parseIncidentDate(raw); ok {
			filter.From = &t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, ok := parseIncidentDate(raw); ok {
			filter.To = &t
		}
	}
	return filter
}

func auditPageFromQuery(r *http.Request) audit.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return audit.Page{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
}

func auditLogsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	entries, total, err := auditSvc.Logs(r.Context(), auditFilterFromQuery(r), auditPageFromQuery(r))
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Audit logs fetched", map[string]interface{}{
		"logs":  entries,
		"total": total,
	})
}

// auditLogsSubHandler serves /statistics, /resource/{type}/{id} and
// /admin/{adminId} under /api/admin/audit-logs/.
func auditLogsSubHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/audit-logs/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] == "statistics":
		stats, err := auditSvc.Statistics(r.Context(), auditFilterFromQuery(r))
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Audit statistics generated", stats)

	case len(parts) == 3 && parts[0] == "resource":
		entries, total, err := auditSvc.ResourceLogs(r.Context(), parts[1], parts[2], auditPageFromQuery(r))
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Resource audit logs fetched", map[string]interface{}{
			"logs":  entries,
			"total": total,
		})

	case len(parts) == 2 && parts[0] == "admin":
		entries, total, err := auditSvc.AdminLogs(r.Context(), parts[1], auditPageFromQuery(r))
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Admin audit logs fetched", map[string]interface{}{
			"logs":  entries,
			"total": total,
		})

	default:
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	}
}
