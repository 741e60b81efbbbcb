package service

import (
	"context"
	"regexp"
	"strings"

	"ethics-reporting-system/pkg/apperror"
	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Contact struct {
	store repository.ContactStore
	audit *audit.Service
}

func NewContact(store repository.ContactStore, auditSvc *audit.Service) *Contact {
	return &Contact{store: store, audit: auditSvc}
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *Contact) Submit(ctx context.Context, input ContactInput) error {
	name := strings.TrimSpace(input.Name)
	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)

	if name == "" || subject == "" || message == "" {
		return apperror.BadRequest("VALIDATION_ERROR", "Name, subject and message are required")
	}
	if !emailRegex.MatchString(input.Email) {
		return apperror.BadRequest("VALIDATION_ERROR", "Invalid email format")
	}
	if len(message) > 5000 {
		return apperror.BadRequest("MESSAGE_TOO_LONG", "Message must be at most 5000 characters")
	}

	return s.store.Insert(ctx, &models.ContactMessage{
		Name:    name,
		Email:   input.Email,
		Subject: subject,
		Message: message,
	})
}

type ContactList struct {
	Messages   []models.ContactMessage `json:"messages"`
	Pagination repository.Pagination   `json:"pagination"`
}

func (s *Contact) List(ctx context.Context, page repository.Page, adminID string, meta audit.Metadata) (*ContactList, error) {
	page = page.Normalize()
	messages, total, err := s.store.List(ctx, page)

	s.audit.Log(audit.Entry{
		AdminID:      adminID,
		Action:       audit.ActionContactView,
		ResourceType: audit.ResourceContact,
		Metadata:     meta,
		Success:      err == nil,
	})

	if err != nil {
		return nil, err
	}
	return &ContactList{
		Messages:   messages,
		Pagination: repository.NewPagination(page, total),
	}, nil
}

func (s *Contact) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}
