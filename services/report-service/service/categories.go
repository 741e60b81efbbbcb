package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"ethics-reporting-system/pkg/apperror"
	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"

	"go.mongodb.org/mongo-driver/bson"
)

type Categories struct {
	categories repository.CategoryStore
	reports    repository.ReportStore
	audit      *audit.Service
}

func NewCategories(categories repository.CategoryStore, reports repository.ReportStore, auditSvc *audit.Service) *Categories {
	return &Categories{categories: categories, reports: reports, audit: auditSvc}
}

// Active lists submittable categories ordered by display order then name.
func (s *Categories) Active(ctx context.Context) ([]models.ReportCategory, error) {
	return s.categories.ListActive(ctx)
}

func (s *Categories) All(ctx context.Context) ([]models.ReportCategory, error) {
	return s.categories.ListAll(ctx)
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := slugCleanup.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

type CategoryInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DefaultSeverity string   `json:"default_severity"`
	Status          string   `json:"status"`
	DisplayOrder    int      `json:"display_order"`
	Guidelines      string   `json:"guidelines"`
	Examples        []string `json:"examples"`
	Icon            string   `json:"icon"`
	Color           string   `json:"color"`
}

func (s *Categories) Create(ctx context.Context, input CategoryInput, adminID string, meta audit.Metadata) (*models.ReportCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.BadRequest("VALIDATION_ERROR", "Category name is required")
	}
	if input.DefaultSeverity == "" {
		input.DefaultSeverity = models.SeverityMedium
	}
	if !models.IsValidSeverity(input.DefaultSeverity) {
		return nil, apperror.BadRequest("INVALID_SEVERITY", "Default severity must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
	status := input.Status
	if status == "" {
		status = models.CategoryActive
	}
	if status != models.CategoryActive && status != models.CategoryInactive {
		return nil, apperror.BadRequest("VALIDATION_ERROR", "Status must be ACTIVE or INACTIVE")
	}

	if _, err := s.categories.FindByName(ctx, name); err == nil {
		return nil, apperror.Conflict("CATEGORY_EXISTS", "A category with this name already exists")
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, err
	}

	now := time.Now()
	category := &models.ReportCategory{
		Name:            name,
		Slug:            slugify(name),
		Description:     strings.TrimSpace(input.Description),
		DefaultSeverity: input.DefaultSeverity,
		Status:          status,
		DisplayOrder:    input.DisplayOrder,
		Guidelines:      input.Guidelines,
		Examples:        input.Examples,
		Icon:            input.Icon,
		Color:           input.Color,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.categories.Insert(ctx, category)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, apperror.Conflict("CATEGORY_EXISTS", "A category with this name already exists")
	}

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionCategoryCreate,
		ResourceType: audit.ResourceCategory,
		ResourceID:   category.ID.Hex(),
		Details:      map[string]interface{}{"name": name},
		Metadata:     meta,
		Success:      err == nil,
	})

	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Categories) Update(ctx context.Context, id string, input CategoryInput, adminID string, meta audit.Metadata) (*models.ReportCategory, error) {
	fields := bson.M{}
	if name := strings.TrimSpace(input.Name); name != "" {
		fields["name"] = name
		fields["slug"] = slugify(name)
	}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.DefaultSeverity != "" {
		if !models.IsValidSeverity(input.DefaultSeverity) {
			return nil, apperror.BadRequest("INVALID_SEVERITY", "Default severity must be one of LOW, MEDIUM, HIGH, CRITICAL")
		}
		fields["default_severity"] = input.DefaultSeverity
	}
	if input.Status != "" {
		if input.Status != models.CategoryActive && input.Status != models.CategoryInactive {
			return nil, apperror.BadRequest("VALIDATION_ERROR", "Status must be ACTIVE or INACTIVE")
		}
		fields["status"] = input.Status
	}
	if input.DisplayOrder != 0 {
		fields["display_order"] = input.DisplayOrder
	}
	if input.Guidelines != "" {
		fields["guidelines"] = input.Guidelines
	}
	if len(input.Examples) > 0 {
		fields["examples"] = input.Examples
	}
	if input.Icon != "" {
		fields["icon"] = input.Icon
	}
	if input.Color != "" {
		fields["color"] = input.Color
	}
	if len(fields) == 0 {
		return nil, apperror.BadRequest("VALIDATION_ERROR", "No fields to update")
	}

	category, err := s.categories.Update(ctx, id, fields)

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionCategoryUpdate,
		ResourceType: audit.ResourceCategory,
		ResourceID:   id,
		Metadata:     meta,
		Success:      err == nil,
	})

	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, apperror.NotFound("CATEGORY_NOT_FOUND", "Category not found")
	}
	return category, err
}

// Delete refuses to remove a category that existing reports reference.
func (s *Categories) Delete(ctx context.Context, id, adminID string, meta audit.Metadata) error {
	category, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return apperror.NotFound("CATEGORY_NOT_FOUND", "Category not found")
	}
	if err != nil {
		return err
	}

	count, err := s.reports.CountByCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("CATEGORY_IN_USE", "Category is referenced by existing reports")
	}

	err = s.categories.Delete(ctx, id)

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionCategoryDelete,
		ResourceType: audit.ResourceCategory,
		ResourceID:   id,
		Details:      map[string]interface{}{"name": category.Name},
		Metadata:     meta,
		Success:      err == nil,
	})

	if errors.Is(err, repository.ErrCategoryNotFound) {
		return apperror.NotFound("CATEGORY_NOT_FOUND", "Category not found")
	}
	return err
}
