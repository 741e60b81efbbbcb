package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"ethics-reporting-system/pkg/middleware"
	"ethics-reporting-system/pkg/response"
	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/service"
)

func adminCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.AdminFromContext(r.Context())
	meta := audit.MetadataFromRequest(r)

	switch r.Method {
	case http.MethodGet:
		categories, err := categoriesSvc.All(r.Context())
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Categories fetched successfully", categories)

	case http.MethodPost:
		var input service.CategoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		category, err := categoriesSvc.Create(r.Context(), input, claims.AdminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusCreated, "Category created", category)

	default:
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	}
}

func adminCategoryDetailHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.AdminFromContext(r.Context())
	meta := audit.MetadataFromRequest(r)

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/categories/"), "/")
	if id == "" || strings.Contains(id, "/") {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var input service.CategoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
			return
		}
		category, err := categoriesSvc.Update(r.Context(), id, input, claims.AdminID, meta)
		if err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Category updated", category)

	case http.MethodDelete:
		if claims.Role != middleware.RoleSuperAdmin {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "Only super admins can delete categories")
			return
		}
		if err := categoriesSvc.Delete(r.Context(), id, claims.AdminID, meta); err != nil {
			response.AppError(w, err)
			return
		}
		response.Success(w, http.StatusOK, "Category deleted", nil)

	default:
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	}
}
