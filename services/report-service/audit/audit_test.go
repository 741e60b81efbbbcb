package audit

import (
	"context"
	"strings"
	"sync"
	"testing"
)

type memStore struct {
	mu      sync.Mutex
	entries []Entry
	failing bool
}

func (s *memStore) Insert(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return context.DeadlineExceeded
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memStore) Find(ctx context.Context, filter Filter, page Page) ([]Entry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, int64(len(out)), nil
}

func (s *memStore) CountByAction(ctx context.Context, filter Filter) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range s.entries {
		counts[e.Action]++
	}
	return counts, nil
}

func (s *memStore) all() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func validEntry() Entry {
	return Entry{
		AdminID:      "admin-1",
		Action:       ActionReportView,
		ResourceType: ResourceReport,
		ResourceID:   "abc123",
		Success:      true,
	}
}

func TestLogPersistsValidEntry(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, 8)

	svc.Log(validEntry())
	svc.Close()

	entries := store.all()
	if len(entries) != 1 {
		t.Fatalf("persisted %d entries, want 1", len(entries))
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("created_at not stamped")
	}
}

func TestLogDropsUnknownActionAndResource(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, 8)

	bad := validEntry()
	bad.Action = "SOMETHING_ELSE"
	svc.Log(bad)

	bad = validEntry()
	bad.ResourceType = "WIDGET"
	svc.Log(bad)

	svc.Close()

	if n := len(store.all()); n != 0 {
		t.Errorf("persisted %d invalid entries, want 0", n)
	}
}

func TestLogNeverFailsOnStoreErrors(t *testing.T) {
	store := &memStore{failing: true}
	svc := NewService(store, 8)

	// Log has no error return; a broken store must not panic or block.
	for i := 0; i < 20; i++ {
		svc.Log(validEntry())
	}
	svc.Close()
}

func TestCloseFlushesQueue(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, 64)

	for i := 0; i < 50; i++ {
		svc.Log(validEntry())
	}
	svc.Close()

	if n := len(store.all()); n != 50 {
		t.Errorf("flushed %d entries, want 50", n)
	}
}

func TestLogSanitizesDetails(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, 8)

	entry := validEntry()
	entry.Details = map[string]interface{}{
		"long": strings.Repeat("x", 600),
		"nested": map[string]interface{}{
			"level2": map[string]interface{}{
				"level3": "too deep",
			},
		},
	}
	svc.Log(entry)
	svc.Close()

	entries := store.all()
	if len(entries) != 1 {
		t.Fatalf("persisted %d entries, want 1", len(entries))
	}
	details := entries[0].Details.(map[string]interface{})

	if got := details["long"].(string); len(got) != 500 {
		t.Errorf("long string truncated to %d chars, want 500", len(got))
	}
	nested := details["nested"].(map[string]interface{})
	if nested["level2"] != "[truncated]" {
		t.Errorf("depth cap not applied: %+v", nested)
	}
}

func TestSanitizeDetailsCaps(t *testing.T) {
	bigMap := make(map[string]interface{})
	for i := 0; i < 30; i++ {
		bigMap[strings.Repeat("k", i+1)] = i
	}
	out := sanitizeDetails(bigMap, 0).(map[string]interface{})
	if len(out) != maxDetailKeys {
		t.Errorf("map kept %d keys, want %d", len(out), maxDetailKeys)
	}

	bigArray := make([]interface{}, 25)
	for i := range bigArray {
		bigArray[i] = i
	}
	arr := sanitizeDetails(bigArray, 0).([]interface{})
	if len(arr) != maxDetailArrayLen {
		t.Errorf("array kept %d elements, want %d", len(arr), maxDetailArrayLen)
	}

	if sanitizeDetails(nil, 0) != nil {
		t.Error("nil details should stay nil")
	}
	if v := sanitizeDetails(42, 0); v != 42 {
		t.Errorf("scalar passthrough = %v, want 42", v)
	}
}

func TestPageNormalizeDefaults(t *testing.T) {
	p := Page{}.Normalize()
	if p.Page != 1 || p.Limit != 50 || p.SortBy != "created_at" || p.SortOrder != "desc" {
		t.Errorf("normalized page = %+v", p)
	}

	p = Page{Page: 3, Limit: 500, SortOrder: "asc"}.Normalize()
	if p.Page != 3 || p.Limit != 50 || p.SortOrder != "asc" {
		t.Errorf("normalized page = %+v", p)
	}
}

func TestStatisticsSumsActionCounts(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, 16)

	for i := 0; i < 3; i++ {
		svc.Log(validEntry())
	}
	entry := validEntry()
	entry.Action = ActionStatusUpdate
	svc.Log(entry)
	svc.Close()

	stats, err := svc.Statistics(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.TotalEntries != 4 {
		t.Errorf("total = %d, want 4", stats.TotalEntries)
	}
	if stats.ByAction[ActionReportView] != 3 || stats.ByAction[ActionStatusUpdate] != 1 {
		t.Errorf("by_action = %+v", stats.ByAction)
	}
}

// The Store interface has no update or delete; immutability is enforced at
// the type surface. This test exists to fail compilation if that changes.
func TestStoreSurfaceIsInsertAndReadOnly(t *testing.T) {
	var s Store = &memStore{}
	if _, _, err := s.Find(context.Background(), Filter{}, Page{}); err != nil {
		t.Fatalf("Find failed: %v", err)
	}
}
