// Package service implements the report lifecycle: anonymous submission and
// tracking, admin triage, categories, and contact messages. Every operation
// takes the acting admin and request metadata as explicit arguments; nothing
// is read from ambient request state.
package service

import (
	"log"

	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/evidence"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"
)

// Publisher pushes report lifecycle events onto the queue for the
// notification service. Publishing is best-effort.
type Publisher interface {
	PublishReportEvent(event models.ReportEvent) error
}

type Reports struct {
	reports    repository.ReportStore
	categories repository.CategoryStore
	processor  *evidence.Processor
	audit      *audit.Service
	publisher  Publisher
}

func NewReports(
	reports repository.ReportStore,
	categories repository.CategoryStore,
	processor *evidence.Processor,
	auditSvc *audit.Service,
	publisher Publisher,
) *Reports {
	return &Reports{
		reports:    reports,
		categories: categories,
		processor:  processor,
		audit:      auditSvc,
		publisher:  publisher,
	}
}

func (s *Reports) publish(event models.ReportEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReportEvent(event); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", event.Type, err)
	}
}
