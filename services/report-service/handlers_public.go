package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"ethics-reporting-system/pkg/response"
	"ethics-reporting-system/services/report-service/evidence"
	"ethics-reporting-system/services/report-service/service"
)

const (
	maxEvidenceFiles  = 5
	maxMultipartMem   = 16 << 20
	multipartMaxTotal = 64 << 20
)

func parseIncidentDate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// submitReportHandler accepts an anonymous multipart submission. It never
// reads the caller's IP, user agent, or any identity into the report flow.
func submitReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, multipartMaxTotal)
	if err := r.ParseMultipartForm(maxMultipartMem); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid multipart form")
		return
	}

	input := service.SubmitInput{
		CategoryID:  r.FormValue("category_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Severity:    r.FormValue("severity"),
	}

	if raw := r.FormValue("incident_date"); raw != "" {
		date, ok := parseIncidentDate(raw)
		if !ok {
			response.Error(w, http.StatusBadRequest, "INVALID_DATE", "Incident date must be RFC3339 or YYYY-MM-DD")
			return
		}
		input.IncidentDate = date
	}

	var uploads []evidence.Upload
	if r.MultipartForm != nil {
		files := r.MultipartForm.File["evidence"]
		if len(files) > maxEvidenceFiles {
			response.Error(w, http.StatusBadRequest, "TOO_MANY_FILES", "At most 5 evidence files are allowed")
			return
		}
		for _, fh := range files {
			fh := fh
			uploads = append(uploads, evidence.Upload{
				OriginalName: fh.Filename,
				ContentType:  fh.Header.Get("Content-Type"),
				Size:         fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}

	result, err := reportsSvc.SubmitAnonymous(r.Context(), input, uploads)
	if err != nil {
		response.AppError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Report submitted successfully", result)
}

func activeCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	categories, err := categoriesSvc.Active(r.Context())
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Categories fetched successfully", categories)
}

// trackReportHandler serves GET /api/reports/track/{trackingId} and
// POST /api/reports/track/{trackingId}/messages.
func trackReportHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/reports/track/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodGet:
		view, err := reportsSvc.Track(r.Context(), parts[0])
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Report status fetched", view)

	case len(parts) == 2 && parts[1] == "messages" && r.Method == http.MethodPost:
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		if err := reportsSvc.AddReporterMessage(r.Context(), parts[0], body.Message); err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusCreated, "Message sent", nil)

	default:
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	}
}

func contactSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	var input service.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	if err := contactSvc.Submit(r.Context(), input); err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Message received", nil)
}
