// Package scans provides the HTTP handler for triggering scans.
package scans

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/good-yellow-bee/docsentry/internal/scanner"
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

// Trigger starts a scan run. Concurrent triggers may share one run.
type Trigger interface {
	Trigger(ctx context.Context) (*scanner.Result, error)
}

// Handler handles the scan trigger endpoint.
type Handler struct {
	trigger Trigger
}

func NewHandler(t Trigger) *Handler {
	return &Handler{trigger: t}
}

// ScanResponse summarizes a completed scan run.
type ScanResponse struct {
	RunID            string             `json:"run_id"`
	DocumentsScanned int                `json:"documents_scanned"`
	AlertsCreated    int                `json:"alerts_created"`
	Errors           []scanner.DocError `json:"errors,omitempty"`
	DurationMS       int64              `json:"duration_ms"`
}

// Create triggers a scan and returns its summary. A failed document
// listing means nothing was scanned, reported as a bad gateway.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	result, err := h.trigger.Trigger(r.Context())
	if err != nil {
		log.Printf("scan trigger failed: %v", err)
		jsonError(w, http.StatusBadGateway, "SCAN_FAILED", "scan failed: document source unavailable")
		return
	}

	jsonOK(w, ScanResponse{
		RunID:            result.RunID,
		DocumentsScanned: result.DocumentsScanned,
		AlertsCreated:    result.AlertsCreated,
		Errors:           result.Errors,
		DurationMS:       result.Duration.Milliseconds(),
	})
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
