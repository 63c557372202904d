package models

import (
	"time"
)

// AlertType identifies the condition that raised an alert.
type AlertType string

const (
	AlertTypeUnusedDocument AlertType = "unused_document"
	AlertTypePublicDocument AlertType = "public_document"
	AlertTypeSensitiveData  AlertType = "sensitive_data_table"
)

// Severity represents alert severity level.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the sort rank of a severity, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	StatusOpen         AlertStatus = "open"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusRemediated   AlertStatus = "remediated"
	StatusIgnored      AlertStatus = "ignored"
)

// ResourceType identifies what an alert points at.
type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceRow      ResourceType = "row"
)

// Alert is a persistent record of a detected condition on a document
// or on a row inside one of its tables. Alerts are never deleted;
// remediated and ignored alerts remain queryable.
type Alert struct {
	ID           int64             `json:"id"`
	Type         AlertType         `json:"type"`
	Severity     Severity          `json:"severity"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	DocID        string            `json:"doc_id"`
	DocName      string            `json:"doc_name"`
	ResourceID   string            `json:"resource_id"`
	ResourceType ResourceType      `json:"resource_type"`
	Status       AlertStatus       `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DedupKey identifies the at-most-one-open-alert constraint:
// only one open alert may exist per (type, doc, resource).
type DedupKey struct {
	Type       AlertType
	DocID      string
	ResourceID string
}

// Key returns the alert's dedup key.
func (a *Alert) Key() DedupKey {
	return DedupKey{Type: a.Type, DocID: a.DocID, ResourceID: a.ResourceID}
}

// ParseAlertStatus converts a string to AlertStatus.
// Returns false if the value is not one of the four recognized states.
func ParseAlertStatus(s string) (AlertStatus, bool) {
	switch s {
	case "open", "acknowledged", "remediated", "ignored":
		return AlertStatus(s), true
	default:
		return "", false
	}
}
