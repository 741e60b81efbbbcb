package service

import (
	"context"
	"strings"
	"testing"

	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"
)

type stubContactStore struct {
	messages []models.ContactMessage
}

func (s *stubContactStore) Insert(ctx context.Context, msg *models.ContactMessage) error {
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *stubContactStore) List(ctx context.Context, page repository.Page) ([]models.ContactMessage, int64, error) {
	return s.messages, int64(len(s.messages)), nil
}

func (s *stubContactStore) MarkRead(ctx context.Context, id string) error {
	return nil
}

func newContactEnv(t *testing.T) (*Contact, *stubContactStore, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	store := &stubContactStore{}
	return NewContact(store, env.auditSvc), store, env
}

func validContact() ContactInput {
	return ContactInput{
		Name:    "Dana Osei",
		Email:   "dana@example.org",
		Subject: "Question about the reporting process",
		Message: "How long does a review usually take?",
	}
}

func TestContactSubmit(t *testing.T) {
	svc, store, _ := newContactEnv(t)

	if err := svc.Submit(context.Background(), validContact()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(store.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(store.messages))
	}
	if store.messages[0].Read {
		t.Error("new message stored as already read")
	}
}

func TestContactSubmitValidation(t *testing.T) {
	svc, _, _ := newContactEnv(t)

	tests := []struct {
		name     string
		mutate   func(*ContactInput)
		wantCode string
	}{
		{"missing name", func(in *ContactInput) { in.Name = " " }, "VALIDATION_ERROR"},
		{"missing subject", func(in *ContactInput) { in.Subject = "" }, "VALIDATION_ERROR"},
		{"missing message", func(in *ContactInput) { in.Message = "" }, "VALIDATION_ERROR"},
		{"bad email", func(in *ContactInput) { in.Email = "not-an-email" }, "VALIDATION_ERROR"},
		{"long message", func(in *ContactInput) { in.Message = strings.Repeat("m", 5001) }, "MESSAGE_TOO_LONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validContact()
			tt.mutate(&input)
			err := svc.Submit(context.Background(), input)
			if code := errCode(t, err); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestContactListIsAudited(t *testing.T) {
	svc, _, env := newContactEnv(t)

	if _, err := svc.List(context.Background(), repository.Page{}, testAdminID, testMeta); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	env.auditSvc.Close()
	entries := env.auditStore.byAction(audit.ActionContactView)
	if len(entries) != 1 || entries[0].AdminID != testAdminID {
		t.Errorf("audit entries = %+v, want one CONTACT_VIEW by %s", entries, testAdminID)
	}
}
