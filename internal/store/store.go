// Package store owns the in-memory alert collection and the retained
// document snapshot. All mutation goes through the store's operations;
// callers never touch the underlying collections directly.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/good-yellow-bee/docsentry/internal/models"
)

// ErrNotFound is returned when no alert has the requested id.
var ErrNotFound = errors.New("alert not found")

// ErrInvalidStatus is returned when a caller supplies a status outside
// the four recognized values.
var ErrInvalidStatus = errors.New("invalid alert status")

// ErrInvalidTransition is returned when a status change would move an
// alert out of a terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

// Stats summarizes the full alert collection regardless of status.
type Stats struct {
	Total      int                        `json:"total"`
	ByStatus   map[models.AlertStatus]int `json:"by_status"`
	ByType     map[models.AlertType]int   `json:"by_type"`
	BySeverity map[models.Severity]int    `json:"by_severity"`
}

// Store holds alerts and the latest document snapshot.
type Store struct {
	mu sync.RWMutex

	alerts []*models.Alert
	byID   map[int64]*models.Alert

	// openIndex maps the dedup key of every open alert to its id.
	// Alerts leaving the open state are removed from the index, so a
	// later re-detection creates a fresh alert.
	openIndex map[models.DedupKey]int64

	documents []models.Document

	nextID int64

	// now is swappable for tests.
	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:      make(map[int64]*models.Alert),
		openIndex: make(map[models.DedupKey]int64),
		now:       time.Now,
	}
}

// Draft describes an alert to be created. Status and timestamps are
// assigned by the store.
type Draft struct {
	Type         models.AlertType
	Severity     models.Severity
	Title        string
	Description  string
	DocID        string
	DocName      string
	ResourceID   string
	ResourceType models.ResourceType
	Metadata     map[string]string
}

// CreateIfAbsent creates a new open alert from the draft unless an open
// alert with the same (type, doc, resource) key already exists. The
// returned bool is true only when a new alert was created; repeated
// detection of an existing open alert is a no-op, with no count or
// timestamp changes.
func (s *Store) CreateIfAbsent(draft Draft) (*models.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.DedupKey{Type: draft.Type, DocID: draft.DocID, ResourceID: draft.ResourceID}
	if id, ok := s.openIndex[key]; ok {
		return cloneAlert(s.byID[id]), false
	}

	s.nextID++
	now := s.now()
	alert := &models.Alert{
		ID:           s.nextID,
		Type:         draft.Type,
		Severity:     draft.Severity,
		Title:        draft.Title,
		Description:  draft.Description,
		DocID:        draft.DocID,
		DocName:      draft.DocName,
		ResourceID:   draft.ResourceID,
		ResourceType: draft.ResourceType,
		Status:       models.StatusOpen,
		Metadata:     draft.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.alerts = append(s.alerts, alert)
	s.byID[alert.ID] = alert
	s.openIndex[key] = alert.ID

	return cloneAlert(alert), true
}

// Get returns the alert with the given id, or ErrNotFound.
func (s *Store) Get(id int64) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAlert(alert), nil
}

// SetStatus moves an alert forward through its lifecycle and refreshes
// UpdatedAt. CreatedAt is never touched. Transitions only leave the
// open state; acknowledged, remediated and ignored are terminal, and
// setting the current status again is a no-op. A terminal alert can
// never re-open: a fresh open alert may already hold the same dedup
// key, and re-opening would leave two open alerts sharing it.
func (s *Store) SetStatus(id int64, status models.AlertStatus) (*models.Alert, error) {
	if _, ok := models.ParseAlertStatus(string(status)); !ok {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	if alert.Status == status {
		return cloneAlert(alert), nil
	}
	if alert.Status != models.StatusOpen {
		return nil, ErrInvalidTransition
	}

	delete(s.openIndex, alert.Key())
	alert.Status = status
	alert.UpdatedAt = s.now()

	return cloneAlert(alert), nil
}

// List returns all alerts sorted by severity (critical first) and,
// within equal severity, by most recent CreatedAt.
func (s *Store) List() []*models.Alert {
	s.mu.RLock()
	out := make([]*models.Alert, len(s.alerts))
	for i, a := range s.alerts {
		out[i] = cloneAlert(a)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Severity.Rank(), out[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ListByStatus returns alerts with the given status in List order.
func (s *Store) ListByStatus(status models.AlertStatus) []*models.Alert {
	all := s.List()
	out := all[:0]
	for _, a := range all {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// Stats computes collection statistics in a single pass over all
// alerts regardless of status.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Total:      len(s.alerts),
		ByStatus:   make(map[models.AlertStatus]int),
		ByType:     make(map[models.AlertType]int),
		BySeverity: make(map[models.Severity]int),
	}
	for _, a := range s.alerts {
		stats.ByStatus[a.Status]++
		stats.ByType[a.Type]++
		stats.BySeverity[a.Severity]++
	}
	return stats
}

// OpenCount returns the number of open alerts.
func (s *Store) OpenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.openIndex)
}

// ReplaceDocuments replaces the retained document snapshot wholesale.
func (s *Store) ReplaceDocuments(docs []models.Document) {
	snapshot := make([]models.Document, len(docs))
	copy(snapshot, docs)

	s.mu.Lock()
	s.documents = snapshot
	s.mu.Unlock()
}

// Documents returns the retained document snapshot.
func (s *Store) Documents() []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Document, len(s.documents))
	copy(out, s.documents)
	return out
}

// SetClock replaces the store's time source. For tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func cloneAlert(a *models.Alert) *models.Alert {
	c := *a
	if a.Metadata != nil {
		c.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
