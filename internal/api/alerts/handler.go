// Package alerts provides HTTP handlers for the alert lifecycle endpoints.
package alerts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/docsentry/internal/models"
	"github.com/good-yellow-bee/docsentry/internal/remediate"
	"github.com/good-yellow-bee/docsentry/internal/store"
)

// Response helpers
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeConflict         = "CONFLICT"
	errCodeInternalError    = "INTERNAL_ERROR"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Response types
type AlertResponse struct {
	ID           int64             `json:"id"`
	Type         string            `json:"type"`
	Severity     string            `json:"severity"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	DocID        string            `json:"doc_id"`
	DocName      string            `json:"doc_name"`
	ResourceID   string            `json:"resource_id"`
	ResourceType string            `json:"resource_type"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

type ListResponse struct {
	Items      []*AlertResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

func alertToResponse(a *models.Alert) *AlertResponse {
	return &AlertResponse{
		ID:           a.ID,
		Type:         string(a.Type),
		Severity:     string(a.Severity),
		Title:        a.Title,
		Description:  a.Description,
		DocID:        a.DocID,
		DocName:      a.DocName,
		ResourceID:   a.ResourceID,
		ResourceType: string(a.ResourceType),
		Status:       string(a.Status),
		Metadata:     a.Metadata,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Handler handles alert endpoints.
type Handler struct {
	store      *store.Store
	dispatcher *remediate.Dispatcher
}

func NewHandler(s *store.Store, d *remediate.Dispatcher) *Handler {
	return &Handler{store: s, dispatcher: d}
}

// Request types
type SetStatusRequest struct {
	Status string `json:"status"`
}

type RemediateRequest struct {
	Action string `json:"action"`
}

// List returns alerts sorted by severity then recency, optionally
// filtered by status, with page/limit pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	var alerts []*models.Alert
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ValidateStatus(raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		alerts = h.store.ListByStatus(status)
	} else {
		alerts = h.store.List()
	}

	total := len(alerts)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]*AlertResponse, 0, end-start)
	for _, a := range alerts[start:end] {
		items = append(items, alertToResponse(a))
	}

	jsonOK(w, ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}

// Stats returns alert counts grouped by status, type, and severity.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.store.Stats())
}

// GetByID returns a single alert.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid alert id")
		return
	}

	alert, err := h.store.Get(id)
	if err != nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
		return
	}

	jsonOK(w, alertToResponse(alert))
}

// SetStatus transitions an alert to the requested status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid alert id")
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	status, err := ValidateStatus(req.Status)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	alert, err := h.store.SetStatus(id, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
			return
		}
		if errors.Is(err, store.ErrInvalidTransition) {
			jsonError(w, http.StatusConflict, errCodeConflict, "alert is in a terminal state")
			return
		}
		log.Printf("set alert status error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("alert %d status set to %s", id, status)
	jsonOK(w, alertToResponse(alert))
}

// Remediate applies a remediation action to an alert. Action failures
// are reported in the result body, not as HTTP errors.
func (h *Handler) Remediate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid alert id")
		return
	}

	var req RemediateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	result, err := h.dispatcher.Apply(r.Context(), id, remediate.Action(req.Action))
	if err != nil {
		if errors.Is(err, remediate.ErrAlertNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
			return
		}
		log.Printf("remediate alert error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("remediation %s on alert %d: success=%v", req.Action, id, result.Success)
	jsonOK(w, result)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
