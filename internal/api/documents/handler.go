// Package documents provides the HTTP handler for the document
// snapshot listing.
package documents

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/good-yellow-bee/docsentry/internal/models"
	"github.com/good-yellow-bee/docsentry/internal/store"
)

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
	defaultLimit = 50
	maxLimit     = 100
)

// DocumentResponse is a document from the most recent scan snapshot.
type DocumentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UpdatedAt   string `json:"updated_at"`
	Published   bool   `json:"published"`
	BrowserLink string `json:"browser_link,omitempty"`
}

type ListResponse struct {
	Items      []*DocumentResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// Handler handles document endpoints.
type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// List returns documents captured by the most recent scan.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	docs := h.store.Documents()
	total := len(docs)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]*DocumentResponse, 0, end-start)
	for _, d := range docs[start:end] {
		items = append(items, documentToResponse(d))
	}

	jsonOK(w, ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}

func documentToResponse(d models.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		Name:        d.Name,
		UpdatedAt:   d.UpdatedAt.UTC().Format(time.RFC3339),
		Published:   d.Published,
		BrowserLink: d.BrowserLink,
	}
}

func parsePagination(r *http.Request) (page, limit int, err error) {
	page = 1
	limit = defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit, nil
}

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
