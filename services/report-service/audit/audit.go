// Package audit records admin-facing actions as immutable log entries.
// Writes are best-effort and asynchronous: the primary operation never
// waits on, or fails because of, the audit side channel. Entries queued
// but not yet drained are lost on process crash; that trade-off is
// accepted.
package audit

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActionReportList       = "REPORT_LIST"
	ActionReportView       = "REPORT_VIEW"
	ActionStatusUpdate     = "REPORT_STATUS_UPDATE"
	ActionReportAssign     = "REPORT_ASSIGN"
	ActionInternalNote     = "REPORT_INTERNAL_NOTE"
	ActionReporterMessage  = "REPORT_MESSAGE"
	ActionEvidenceDownload = "EVIDENCE_DOWNLOAD"
	ActionBulkStatusUpdate = "BULK_STATUS_UPDATE"
	ActionBulkAssign       = "BULK_ASSIGN"
	ActionCategoryCreate   = "CATEGORY_CREATE"
	ActionCategoryUpdate   = "CATEGORY_UPDATE"
	ActionCategoryDelete   = "CATEGORY_DELETE"
	ActionContactView      = "CONTACT_VIEW"
)

const (
	ResourceReport   = "REPORT"
	ResourceCategory = "CATEGORY"
	ResourceEvidence = "EVIDENCE"
	ResourceContact  = "CONTACT_MESSAGE"
	ResourceAuditLog = "AUDIT_LOG"
)

var validActions = map[string]bool{
	ActionReportList:       true,
	ActionReportView:       true,
	ActionStatusUpdate:     true,
	ActionReportAssign:     true,
	ActionInternalNote:     true,
	ActionReporterMessage:  true,
	ActionEvidenceDownload: true,
	ActionBulkStatusUpdate: true,
	ActionBulkAssign:       true,
	ActionCategoryCreate:   true,
	ActionCategoryUpdate:   true,
	ActionCategoryDelete:   true,
	ActionContactView:      true,
}

var validResources = map[string]bool{
	ResourceReport:   true,
	ResourceCategory: true,
	ResourceEvidence: true,
	ResourceContact:  true,
	ResourceAuditLog: true,
}

// Metadata is request context passed in explicitly by the handler; the
// service layer never reads it from ambient request state.
type Metadata struct {
	IP         string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestURL string `bson:"request_url,omitempty" json:"request_url,omitempty"`
	Method     string `bson:"method,omitempty" json:"method,omitempty"`
}

func MetadataFromRequest(r *http.Request) Metadata {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return Metadata{
		IP:         ip,
		UserAgent:  r.UserAgent(),
		RequestURL: r.URL.String(),
		Method:     r.Method,
	}
}

type Entry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID      string             `bson:"admin_id" json:"admin_id"`
	Action       string             `bson:"action" json:"action"`
	ResourceType string             `bson:"resource_type" json:"resource_type"`
	ResourceID   string             `bson:"resource_id,omitempty" json:"resource_id,omitempty"`
	Details      interface{}        `bson:"details,omitempty" json:"details,omitempty"`
	Metadata     Metadata           `bson:"metadata" json:"metadata"`
	Success      bool               `bson:"success" json:"success"`
	ErrorMessage string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Store exposes insert and read only. No update or delete method exists;
// the log is immutable at the persistence surface.
type Store interface {
	Insert(ctx context.Context, entry *Entry) error
	Find(ctx context.Context, filter Filter, page Page) ([]Entry, int64, error)
	CountByAction(ctx context.Context, filter Filter) (map[string]int64, error)
}

type Filter struct {
	AdminID      string
	Action       string
	ResourceType string
	ResourceID   string
	Success      *bool
	From         *time.Time
	To           *time.Time
}

type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 50
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

var (
	entriesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_written_total",
		Help: "Audit log entries persisted",
	})
	entriesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_dropped_total",
		Help: "Audit log entries dropped (invalid, queue full, or write failure)",
	})
	metricsRegistered = false
)

func registerMetrics() {
	if !metricsRegistered {
		prometheus.MustRegister(entriesWritten, entriesDropped)
		metricsRegistered = true
	}
}

type Service struct {
	store Store
	queue chan Entry
	done  chan struct{}
}

const defaultQueueSize = 256

// NewService starts the background writer. Call Close on shutdown to flush
// whatever is still queued.
func NewService(store Store, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	registerMetrics()

	s := &Service{
		store: store,
		queue: make(chan Entry, queueSize),
		done:  make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *Service) drain() {
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.store.Insert(ctx, &entry)
		cancel()
		if err != nil {
			entriesDropped.Inc()
			log.Printf("[WARN] Failed to persist audit entry (%s %s): %v", entry.Action, entry.ResourceType, err)
			continue
		}
		entriesWritten.Inc()
	}
	close(s.done)
}

// Close stops accepting entries and waits for the queue to flush.
func (s *Service) Close() {
	close(s.queue)
	<-s.done
}

// Log validates and enqueues an entry. It never blocks and never returns
// an error: an invalid entry or a full queue is logged and dropped so the
// primary operation is unaffected.
func (s *Service) Log(entry Entry) {
	if !validActions[entry.Action] {
		entriesDropped.Inc()
		log.Printf("[WARN] Audit entry dropped: unknown action %q", entry.Action)
		return
	}
	if !validResources[entry.ResourceType] {
		entriesDropped.Inc()
		log.Printf("[WARN] Audit entry dropped: unknown resource type %q", entry.ResourceType)
		return
	}

	entry.Details = sanitizeDetails(entry.Details, 0)
	entry.CreatedAt = time.Now()

	select {
	case s.queue <- entry:
	default:
		entriesDropped.Inc()
		log.Printf("[WARN] Audit queue full, dropping entry (%s %s)", entry.Action, entry.ResourceType)
	}
}

func (s *Service) Logs(ctx context.Context, filter Filter, page Page) ([]Entry, int64, error) {
	return s.store.Find(ctx, filter, page.Normalize())
}

func (s *Service) ResourceLogs(ctx context.Context, resourceType, resourceID string, page Page) ([]Entry, int64, error) {
	return s.store.Find(ctx, Filter{ResourceType: resourceType, ResourceID: resourceID}, page.Normalize())
}

func (s *Service) AdminLogs(ctx context.Context, adminID string, page Page) ([]Entry, int64, error) {
	return s.store.Find(ctx, Filter{AdminID: adminID}, page.Normalize())
}

type Statistics struct {
	TotalEntries int64            `json:"total_entries"`
	ByAction     map[string]int64 `json:"by_action"`
}

func (s *Service) Statistics(ctx context.Context, filter Filter) (*Statistics, error) {
	counts, err := s.store.CountByAction(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{ByAction: counts}
	for _, n := range counts {
		stats.TotalEntries += n
	}
	return stats, nil
}
