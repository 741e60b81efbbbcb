package models

import (
	"testing"
	"time"
)

func TestIsValidTrackingID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e", true},
		{"9F8B6C1E-2D3A-4B5C-8D7E-1F2A3B4C5D6E", true},
		{"", false},
		{"not-a-uuid", false},
		{"9f8b6c1e2d3a4b5c8d7e1f2a3b4c5d6e", false},                // no dashes
		{"9f8b6c1e-2d3a-1b5c-8d7e-1f2a3b4c5d6e", false},            // version 1
		{"9f8b6c1e-2d3a-4b5c-cd7e-1f2a3b4c5d6e", false},            // bad variant
		{"{9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e}", false},          // braces
		{"9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e\n", false},          // trailing newline
		{" 9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e", false},           // leading space
		{"9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e-extra", false},      // suffix
		{"9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6", false},             // short
		{"zzzzzzzz-2d3a-4b5c-8d7e-1f2a3b4c5d6e", false},            // non-hex
	}

	for _, tt := range tests {
		if got := IsValidTrackingID(tt.id); got != tt.want {
			t.Errorf("IsValidTrackingID(%q) = %t, want %t", tt.id, got, tt.want)
		}
	}
}

func TestStatusAndSeverityEnums(t *testing.T) {
	for _, s := range []string{StatusSubmitted, StatusUnderReview, StatusInvestigating, StatusResolved, StatusClosed} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "submitted", "ARCHIVED", "DONE"} {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true", s)
		}
	}

	for _, s := range []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !IsValidSeverity(s) {
			t.Errorf("IsValidSeverity(%q) = false", s)
		}
	}
	if IsValidSeverity("URGENT") {
		t.Error(`IsValidSeverity("URGENT") = true`)
	}
}

func TestHasEvidenceFile(t *testing.T) {
	r := Report{Evidence: []EvidenceFile{
		{Filename: "abc-123.pdf", OriginalName: "contract.pdf"},
	}}

	ev, ok := r.HasEvidenceFile("abc-123.pdf")
	if !ok || ev.OriginalName != "contract.pdf" {
		t.Errorf("HasEvidenceFile = %+v, %t", ev, ok)
	}

	if _, ok := r.HasEvidenceFile("other.pdf"); ok {
		t.Error("HasEvidenceFile matched a filename not on the report")
	}
}

func TestPublicViewStripsTriageFields(t *testing.T) {
	now := time.Now()
	r := Report{
		TrackingID:   "9f8b6c1e-2d3a-4b5c-8d7e-1f2a3b4c5d6e",
		CategoryName: "Bribery",
		Title:        "Kickbacks on vendor selection",
		Status:       StatusUnderReview,
		Severity:     SeverityHigh,
		AssignedTo:   "admin-42",
		Resolution:   "pending",
		Evidence: []EvidenceFile{
			{Filename: "stored-name.pdf", OriginalName: "proof.pdf", MimeType: "application/pdf", Size: 128, SHA256: "deadbeef", UploadedAt: now},
		},
		StatusHistory: []StatusEntry{
			{Status: StatusSubmitted, ChangedAt: now},
			{Status: StatusUnderReview, ChangedBy: "admin-42", Notes: "Taking a look", ChangedAt: now},
		},
		InternalNotes: []InternalNote{{Note: "confidential", AddedBy: "admin-42", AddedAt: now}},
		Messages: []Message{
			{Content: "any update?", FromAdmin: false, SentAt: now},
			{Content: "under review", FromAdmin: true, SentBy: "admin-42", SentAt: now},
		},
		CreatedAt: now,
	}

	view := r.PublicView()

	if view.TrackingID != r.TrackingID || view.Category != "Bribery" {
		t.Errorf("view basics = %+v", view)
	}
	if view.SubmittedAt != now {
		t.Error("submitted_at should mirror created_at")
	}

	// The stored (generated) filename and hash stay server-side; only
	// display metadata goes out.
	if len(view.Evidence) != 1 {
		t.Fatalf("evidence length = %d, want 1", len(view.Evidence))
	}
	if view.Evidence[0].OriginalName != "proof.pdf" || view.Evidence[0].Size != 128 {
		t.Errorf("public evidence = %+v", view.Evidence[0])
	}

	if len(view.StatusHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(view.StatusHistory))
	}
	if view.StatusHistory[1].Notes != "Taking a look" {
		t.Errorf("public history entry = %+v, notes should remain", view.StatusHistory[1])
	}

	if len(view.Messages) != 2 {
		t.Fatalf("messages length = %d, want 2", len(view.Messages))
	}
	if !view.Messages[1].FromAdmin {
		t.Error("admin flag should survive the projection")
	}
}
