package store

import (
	"testing"
	"time"

	"github.com/good-yellow-bee/docsentry/internal/models"
)

func draft(typ models.AlertType, sev models.Severity, docID, resourceID string) Draft {
	return Draft{
		Type:         typ,
		Severity:     sev,
		Title:        "test alert",
		DocID:        docID,
		DocName:      "Doc " + docID,
		ResourceID:   resourceID,
		ResourceType: models.ResourceDocument,
	}
}

func TestCreateIfAbsentAssignsMonotonicIDs(t *testing.T) {
	s := New()

	a1, created := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))
	if !created {
		t.Fatal("expected first alert to be created")
	}
	a2, created := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d2", "d2"))
	if !created {
		t.Fatal("expected second alert to be created")
	}

	if a1.ID >= a2.ID {
		t.Errorf("ids not monotonic: %d then %d", a1.ID, a2.ID)
	}
	if a1.Status != models.StatusOpen {
		t.Errorf("status = %s, want open", a1.Status)
	}
	if !a1.CreatedAt.Equal(a1.UpdatedAt) {
		t.Error("CreatedAt and UpdatedAt should match at creation")
	}
}

func TestCreateIfAbsentDedup(t *testing.T) {
	s := New()

	first, created := s.CreateIfAbsent(draft(models.AlertTypeUnusedDocument, models.SeverityLow, "d1", "d1"))
	if !created {
		t.Fatal("expected creation")
	}

	// Same dedup key with different metadata still collapses.
	d := draft(models.AlertTypeUnusedDocument, models.SeverityLow, "d1", "d1")
	d.Metadata = map[string]string{"stale_for": "300h"}
	second, created := s.CreateIfAbsent(d)
	if created {
		t.Fatal("duplicate open alert was created")
	}
	if second.ID != first.ID {
		t.Errorf("dedup returned id %d, want %d", second.ID, first.ID)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("dedup hit must not bump UpdatedAt")
	}

	// A different type with the same doc/resource is a distinct key.
	_, created = s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))
	if !created {
		t.Error("different alert type should not be deduplicated")
	}
}

func TestReopenAfterTerminalState(t *testing.T) {
	s := New()

	a, _ := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))

	if _, err := s.SetStatus(a.ID, models.StatusAcknowledged); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	// Re-detection after acknowledgment creates a fresh alert.
	fresh, created := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))
	if !created {
		t.Fatal("acknowledged alert should not block a new alert with the same key")
	}
	if fresh.ID == a.ID {
		t.Error("fresh alert reused an id")
	}
}

func TestSetStatus(t *testing.T) {
	s := New()
	a, _ := s.CreateIfAbsent(draft(models.AlertTypeUnusedDocument, models.SeverityLow, "d1", "d1"))

	tests := []struct {
		name    string
		id      int64
		status  models.AlertStatus
		wantErr error
	}{
		{"unknown id", 9999, models.StatusIgnored, ErrNotFound},
		{"invalid status", a.ID, models.AlertStatus("bogus"), ErrInvalidStatus},
		{"valid transition", a.ID, models.StatusIgnored, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := s.SetStatus(tt.id, tt.status)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if updated.Status != tt.status {
				t.Errorf("status = %s, want %s", updated.Status, tt.status)
			}
			if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
				t.Error("UpdatedAt went backwards")
			}
		})
	}
}

func TestSetStatusRejectsTerminalTransitions(t *testing.T) {
	s := New()

	a, _ := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))
	ack, err := s.SetStatus(a.ID, models.StatusAcknowledged)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	// Re-detection claims the freed dedup key with a fresh open alert.
	b, created := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))
	if !created {
		t.Fatal("expected fresh alert after acknowledgment")
	}

	// The acknowledged alert must not re-open; that would put two open
	// alerts on one dedup key.
	if _, err := s.SetStatus(a.ID, models.StatusOpen); err != ErrInvalidTransition {
		t.Fatalf("reopen err = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.SetStatus(a.ID, models.StatusIgnored); err != ErrInvalidTransition {
		t.Fatalf("terminal-to-terminal err = %v, want ErrInvalidTransition", err)
	}

	open := s.ListByStatus(models.StatusOpen)
	shared := 0
	for _, x := range open {
		if x.Key() == b.Key() {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("open alerts sharing dedup key = %d, want 1", shared)
	}
	if s.OpenCount() != 1 {
		t.Errorf("open count = %d, want 1", s.OpenCount())
	}

	// Setting the current status again is an idempotent no-op.
	same, err := s.SetStatus(a.ID, models.StatusAcknowledged)
	if err != nil {
		t.Fatalf("self-set: %v", err)
	}
	if same.Status != models.StatusAcknowledged || !same.UpdatedAt.Equal(ack.UpdatedAt) {
		t.Error("self-set changed the alert")
	}
	if reopen, err := s.SetStatus(b.ID, models.StatusOpen); err != nil || reopen.Status != models.StatusOpen {
		t.Errorf("open self-set = %v, %v", reopen, err)
	}
}

func TestListOrdering(t *testing.T) {
	s := New()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	s.CreateIfAbsent(draft(models.AlertTypeUnusedDocument, models.SeverityLow, "d1", "d1"))
	s.CreateIfAbsent(draft(models.AlertTypeSensitiveData, models.SeverityCritical, "d1", "r1"))
	s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d2", "d2"))
	s.CreateIfAbsent(draft(models.AlertTypeSensitiveData, models.SeverityCritical, "d2", "r2"))

	list := s.List()
	if len(list) != 4 {
		t.Fatalf("len = %d, want 4", len(list))
	}

	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if prev.Severity.Rank() < cur.Severity.Rank() {
			t.Errorf("severity rank increased at index %d", i)
		}
		if prev.Severity.Rank() == cur.Severity.Rank() && prev.CreatedAt.Before(cur.CreatedAt) {
			t.Errorf("createdAt not descending within severity at index %d", i)
		}
	}

	// The two criticals: the later one (d2/r2) sorts first.
	if list[0].ResourceID != "r2" || list[1].ResourceID != "r1" {
		t.Errorf("critical ordering = [%s %s], want [r2 r1]", list[0].ResourceID, list[1].ResourceID)
	}
}

func TestStats(t *testing.T) {
	s := New()

	s.CreateIfAbsent(draft(models.AlertTypeUnusedDocument, models.SeverityLow, "d1", "d1"))
	s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d1", "d1"))
	a, _ := s.CreateIfAbsent(draft(models.AlertTypePublicDocument, models.SeverityHigh, "d2", "d2"))
	s.SetStatus(a.ID, models.StatusRemediated)

	stats := s.Stats()
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByStatus[models.StatusOpen] != 2 || stats.ByStatus[models.StatusRemediated] != 1 {
		t.Errorf("byStatus = %v", stats.ByStatus)
	}
	if stats.ByType[models.AlertTypePublicDocument] != 2 {
		t.Errorf("byType = %v", stats.ByType)
	}
	if stats.BySeverity[models.SeverityHigh] != 2 || stats.BySeverity[models.SeverityLow] != 1 {
		t.Errorf("bySeverity = %v", stats.BySeverity)
	}
}

func TestReplaceDocuments(t *testing.T) {
	s := New()

	s.ReplaceDocuments([]models.Document{{ID: "d1"}, {ID: "d2"}})
	if got := len(s.Documents()); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}

	// Wholesale replace, no merge.
	s.ReplaceDocuments([]models.Document{{ID: "d3"}})
	docs := s.Documents()
	if len(docs) != 1 || docs[0].ID != "d3" {
		t.Errorf("snapshot = %v, want only d3", docs)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New()
	d := draft(models.AlertTypeSensitiveData, models.SeverityCritical, "d1", "r1")
	d.Metadata = map[string]string{"table_id": "t1"}
	a, _ := s.CreateIfAbsent(d)

	// Mutating the returned alert must not affect the stored one.
	a.Status = models.StatusRemediated
	a.Metadata["table_id"] = "tampered"

	stored, err := s.Get(a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != models.StatusOpen {
		t.Error("external mutation leaked into store")
	}
	if stored.Metadata["table_id"] != "t1" {
		t.Error("metadata mutation leaked into store")
	}
}
