package service

import (
	"context"
	"sync"
	"testing"

	"ethics-reporting-system/pkg/storage"
	"ethics-reporting-system/services/report-service/audit"
	"ethics-reporting-system/services/report-service/evidence"
	"ethics-reporting-system/services/report-service/models"
	"ethics-reporting-system/services/report-service/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubReportStore is an in-memory ReportStore. Calls counts every storage
// access so tests can assert that malformed input never reaches persistence.
type stubReportStore struct {
	mu      sync.Mutex
	reports map[string]*models.Report
	Calls   int
}

func newStubReportStore() *stubReportStore {
	return &stubReportStore{reports: make(map[string]*models.Report)}
}

func (s *stubReportStore) Insert(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	s.reports[report.ID.Hex()] = report
	return nil
}

func (s *stubReportStore) FindByTrackingID(ctx context.Context, trackingID string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	for _, r := range s.reports {
		if r.TrackingID == trackingID {
			return r, nil
		}
	}
	return nil, repository.ErrReportNotFound
}

func (s *stubReportStore) FindByID(ctx context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	r, ok := s.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	return r, nil
}

func (s *stubReportStore) List(ctx context.Context, filter repository.ReportFilter, page repository.Page) ([]models.Report, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	var out []models.Report
	for _, r := range s.reports {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (s *stubReportStore) UpdateStatus(ctx context.Context, id, status, resolution string, entry models.StatusEntry) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	r, ok := s.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	r.Status = status
	if resolution != "" {
		r.Resolution = resolution
	}
	r.StatusHistory = append(r.StatusHistory, entry)
	return r, nil
}

func (s *stubReportStore) Assign(ctx context.Context, id, assignedTo string, entry models.StatusEntry) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	r, ok := s.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	r.AssignedTo = assignedTo
	r.Status = entry.Status
	r.StatusHistory = append(r.StatusHistory, entry)
	return r, nil
}

func (s *stubReportStore) AddInternalNote(ctx context.Context, id string, note models.InternalNote) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	r, ok := s.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	r.InternalNotes = append(r.InternalNotes, note)
	return r, nil
}

func (s *stubReportStore) AddMessage(ctx context.Context, id string, msg models.Message) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	r, ok := s.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	r.Messages = append(r.Messages, msg)
	return r, nil
}

func (s *stubReportStore) AddMessageByTrackingID(ctx context.Context, trackingID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	for _, r := range s.reports {
		if r.TrackingID == trackingID {
			r.Messages = append(r.Messages, msg)
			return nil
		}
	}
	return repository.ErrReportNotFound
}

func (s *stubReportStore) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	var n int64
	for _, r := range s.reports {
		if r.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type stubCategoryStore struct {
	mu         sync.Mutex
	categories map[string]*models.ReportCategory
}

func newStubCategoryStore() *stubCategoryStore {
	return &stubCategoryStore{categories: make(map[string]*models.ReportCategory)}
}

func (s *stubCategoryStore) Insert(ctx context.Context, category *models.ReportCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	for _, c := range s.categories {
		if c.Name == category.Name {
			return repository.ErrDuplicateName
		}
	}
	s.categories[category.ID.Hex()] = category
	return nil
}

func (s *stubCategoryStore) FindByID(ctx context.Context, id string) (*models.ReportCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (s *stubCategoryStore) FindByName(ctx context.Context, name string) (*models.ReportCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (s *stubCategoryStore) ListActive(ctx context.Context) ([]models.ReportCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ReportCategory
	for _, c := range s.categories {
		if c.IsActive() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubCategoryStore) ListAll(ctx context.Context) ([]models.ReportCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ReportCategory
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCategoryStore) Update(ctx context.Context, id string, fields bson.M) (*models.ReportCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if name, ok := fields["name"].(string); ok {
		c.Name = name
	}
	if status, ok := fields["status"].(string); ok {
		c.Status = status
	}
	if sev, ok := fields["default_severity"].(string); ok {
		c.DefaultSeverity = sev
	}
	return c, nil
}

func (s *stubCategoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *stubCategoryStore) IncrementReportCount(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id.Hex()]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	c.ReportCount++
	return nil
}

// memAuditStore collects audit entries in memory.
type memAuditStore struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *memAuditStore) Insert(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memAuditStore) Find(ctx context.Context, filter audit.Filter, page audit.Page) ([]audit.Entry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Entry, len(s.entries))
	copy(out, s.entries)
	return out, int64(len(out)), nil
}

func (s *memAuditStore) CountByAction(ctx context.Context, filter audit.Filter) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range s.entries {
		counts[e.Action]++
	}
	return counts, nil
}

func (s *memAuditStore) byAction(action string) []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Entry
	for _, e := range s.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ReportEvent
}

func (p *recordingPublisher) PublishReportEvent(event models.ReportEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []models.ReportEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.ReportEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc        *Reports
	reports    *stubReportStore
	categories *stubCategoryStore
	auditStore *memAuditStore
	auditSvc   *audit.Service
	publisher  *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	blobStore, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}

	reports := newStubReportStore()
	categories := newStubCategoryStore()
	auditStore := &memAuditStore{}
	auditSvc := audit.NewService(auditStore, 64)
	publisher := &recordingPublisher{}

	return &testEnv{
		svc:        NewReports(reports, categories, evidence.NewProcessor(blobStore, 0), auditSvc, publisher),
		reports:    reports,
		categories: categories,
		auditStore: auditStore,
		auditSvc:   auditSvc,
		publisher:  publisher,
	}
}

func (e *testEnv) seedCategory(t *testing.T, name, status, defaultSeverity string) *models.ReportCategory {
	t.Helper()
	category := &models.ReportCategory{
		Name:            name,
		Status:          status,
		DefaultSeverity: defaultSeverity,
	}
	if err := e.categories.Insert(context.Background(), category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return category
}

func (e *testEnv) seedReport(t *testing.T, report *models.Report) *models.Report {
	t.Helper()
	if err := e.reports.Insert(context.Background(), report); err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}
	return report
}
