// Package remediate maps operator actions on alerts to store
// mutations and, for destructive actions, external delete calls.
package remediate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/good-yellow-bee/docsentry/internal/metrics"
	"github.com/good-yellow-bee/docsentry/internal/models"
	"github.com/good-yellow-bee/docsentry/internal/source"
	"github.com/good-yellow-bee/docsentry/internal/store"
)

// Action is an operator-requested remediation.
type Action string

const (
	ActionAcknowledge Action = "acknowledge"
	ActionIgnore      Action = "ignore"
	ActionDelete      Action = "delete"
)

// ErrAlertNotFound is returned when the target alert does not exist.
var ErrAlertNotFound = errors.New("alert not found")

// Result is the outcome of a remediation attempt. Failures are
// reported here, not raised as errors, except for unknown alert ids.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Dispatcher applies remediation actions.
type Dispatcher struct {
	store  *store.Store
	client source.Client
}

// New creates a dispatcher.
func New(st *store.Store, client source.Client) *Dispatcher {
	return &Dispatcher{store: st, client: client}
}

// Apply runs the requested action against an alert. ErrAlertNotFound
// is the only error; every other failure mode is a Result with
// Success=false and the alert left unmodified.
func (d *Dispatcher) Apply(ctx context.Context, id int64, action Action) (Result, error) {
	alert, err := d.store.Get(id)
	if err != nil {
		return Result{}, ErrAlertNotFound
	}

	var result Result
	switch action {
	case ActionAcknowledge:
		result = d.setStatus(id, models.StatusAcknowledged, "alert acknowledged")
	case ActionIgnore:
		result = d.setStatus(id, models.StatusIgnored, "alert ignored")
	case ActionDelete:
		result = d.deleteResource(ctx, alert)
	default:
		result = Result{Success: false, Message: fmt.Sprintf("invalid action %q", action)}
	}

	outcome := "failed"
	if result.Success {
		outcome = "ok"
	}
	metrics.RemediationsTotal.WithLabelValues(string(action), outcome).Inc()
	metrics.OpenAlerts.Set(float64(d.store.OpenCount()))

	return result, nil
}

func (d *Dispatcher) setStatus(id int64, status models.AlertStatus, message string) Result {
	if _, err := d.store.SetStatus(id, status); err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: true, Message: message}
}

// deleteResource removes the underlying row on the source and marks
// the alert remediated. Only row-backed alerts support deletion; the
// source is never contacted for document alerts. On a failed delete
// the alert stays open.
func (d *Dispatcher) deleteResource(ctx context.Context, alert *models.Alert) Result {
	if alert.ResourceType != models.ResourceRow {
		return Result{
			Success: false,
			Message: fmt.Sprintf("delete is not supported for %s alerts", alert.ResourceType),
		}
	}

	// Terminal alerts cannot move to remediated; bail out before
	// touching the source.
	if alert.Status != models.StatusOpen {
		return Result{
			Success: false,
			Message: fmt.Sprintf("alert is %s, only open alerts can be deleted", alert.Status),
		}
	}

	tableID := alert.Metadata["table_id"]
	if tableID == "" {
		return Result{Success: false, Message: "alert has no table_id metadata"}
	}

	if err := d.client.DeleteRow(ctx, alert.DocID, tableID, alert.ResourceID); err != nil {
		log.Printf("remediate: delete row %s in doc %s: %v", alert.ResourceID, alert.DocID, err)
		return Result{Success: false, Message: fmt.Sprintf("delete row failed: %v", err)}
	}

	if _, err := d.store.SetStatus(alert.ID, models.StatusRemediated); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	log.Printf("remediate: deleted row %s in doc %s (alert %d)", alert.ResourceID, alert.DocID, alert.ID)
	return Result{Success: true, Message: "row deleted and alert remediated"}
}
