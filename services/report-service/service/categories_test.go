package service

import (
	"context"
	"testing"

	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/models"
)

func newCategoriesEnv(t *testing.T) (*Categories, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewCategories(env.categories, env.reports, env.auditSvc), env
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bribery", "bribery"},
		{"Academic Misconduct", "academic-misconduct"},
		{"  Conflict of Interest!  ", "conflict-of-interest"},
		{"A & B / C", "a-b-c"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateCategoryDefaults(t *testing.T) {
	svc, _ := newCategoriesEnv(t)

	category, err := svc.Create(context.Background(), CategoryInput{Name: "Data Misuse"}, testAdminID, testMeta)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if category.Slug != "data-misuse" {
		t.Errorf("slug = %q, want data-misuse", category.Slug)
	}
	if category.DefaultSeverity != models.SeverityMedium {
		t.Errorf("default severity = %q, want MEDIUM", category.DefaultSeverity)
	}
	if category.Status != models.CategoryActive {
		t.Errorf("status = %q, want ACTIVE", category.Status)
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	svc, _ := newCategoriesEnv(t)

	if _, err := svc.Create(context.Background(), CategoryInput{Name: "Bribery"}, testAdminID, testMeta); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Bribery"}, testAdminID, testMeta)
	if code := errCode(t, err); code != "CATEGORY_EXISTS" {
		t.Errorf("code = %q, want CATEGORY_EXISTS", code)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newCategoriesEnv(t)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "  "}, testAdminID, testMeta)
	if code := errCode(t, err); code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", code)
	}

	_, err = svc.Create(context.Background(), CategoryInput{Name: "X", DefaultSeverity: "URGENT"}, testAdminID, testMeta)
	if code := errCode(t, err); code != "INVALID_SEVERITY" {
		t.Errorf("code = %q, want INVALID_SEVERITY", code)
	}
}

func TestDeleteCategoryRefusedWhileReferenced(t *testing.T) {
	svc, env := newCategoriesEnv(t)
	category := env.seedCategory(t, "Fraud", models.CategoryActive, models.SeverityMedium)

	env.seedReport(t, &models.Report{
		TrackingID: "9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e",
		CategoryID: category.ID,
		Status:     models.StatusSubmitted,
	})

	err := svc.Delete(context.Background(), category.ID.Hex(), testAdminID, testMeta)
	if code := errCode(t, err); code != "CATEGORY_IN_USE" {
		t.Errorf("code = %q, want CATEGORY_IN_USE", code)
	}

	// Still listed after the refused delete.
	all, _ := svc.All(context.Background())
	if len(all) != 1 {
		t.Errorf("categories after refused delete = %d, want 1", len(all))
	}
}

func TestDeleteUnreferencedCategory(t *testing.T) {
	svc, env := newCategoriesEnv(t)
	category := env.seedCategory(t, "Obsolete", models.CategoryInactive, models.SeverityLow)

	if err := svc.Delete(context.Background(), category.ID.Hex(), testAdminID, testMeta); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	env.auditSvc.Close()
	entries := env.auditStore.byAction(audit.ActionCategoryDelete)
	if len(entries) != 1 || !entries[0].Success {
		t.Errorf("audit entries = %+v, want one successful CATEGORY_DELETE", entries)
	}
}

func TestActiveExcludesInactiveCategories(t *testing.T) {
	svc, env := newCategoriesEnv(t)
	env.seedCategory(t, "Open", models.CategoryActive, models.SeverityLow)
	env.seedCategory(t, "Closed", models.CategoryInactive, models.SeverityLow)

	active, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Open" {
		t.Errorf("active categories = %+v, want only Open", active)
	}
}
