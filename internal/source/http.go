package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/docsentry/internal/metrics"
	"github.com/good-yellow-bee/docsentry/internal/models"
)

// HTTPConfig holds document API connection settings.
type HTTPConfig struct {
	BaseURL string // API base URL, e.g. https://coda.io/apis/v1
	Token   string // Bearer token
	// RateLimit caps outbound requests per second. Zero disables
	// client-side limiting.
	RateLimit float64
}

// Validate validates the HTTP source configuration.
func (c *HTTPConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "https://") && !strings.HasPrefix(c.BaseURL, "http://") {
		return fmt.Errorf("base URL must be http(s)")
	}
	if c.Token == "" {
		return fmt.Errorf("API token is required")
	}
	return nil
}

// HTTPClient talks to a Coda-style document REST API.
type HTTPClient struct {
	config     HTTPConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPClient creates a client for the document API.
func NewHTTPClient(config HTTPConfig) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source config: %w", err)
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

type documentItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Published   bool      `json:"published"`
	BrowserLink string    `json:"browserLink"`
}

type tableItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rowItem struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

// ListDocuments fetches the full document list.
func (c *HTTPClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var resp listResponse[documentItem]
	if err := c.get(ctx, "/docs", &resp); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]models.Document, len(resp.Items))
	for i, item := range resp.Items {
		docs[i] = models.Document{
			ID:          item.ID,
			Name:        item.Name,
			UpdatedAt:   item.UpdatedAt,
			Published:   item.Published,
			BrowserLink: item.BrowserLink,
		}
	}
	return docs, nil
}

// ListTables fetches the tables of one document.
func (c *HTTPClient) ListTables(ctx context.Context, docID string) ([]models.Table, error) {
	var resp listResponse[tableItem]
	if err := c.get(ctx, fmt.Sprintf("/docs/%s/tables", docID), &resp); err != nil {
		return nil, fmt.Errorf("list tables for doc %s: %w", docID, err)
	}

	tables := make([]models.Table, len(resp.Items))
	for i, item := range resp.Items {
		tables[i] = models.Table{ID: item.ID, Name: item.Name}
	}
	return tables, nil
}

// ListRows fetches the rows of one table. Only string cell values are
// kept; non-string cells carry no scannable text.
func (c *HTTPClient) ListRows(ctx context.Context, docID, tableID string) ([]models.Row, error) {
	var resp listResponse[rowItem]
	if err := c.get(ctx, fmt.Sprintf("/docs/%s/tables/%s/rows", docID, tableID), &resp); err != nil {
		return nil, fmt.Errorf("list rows for table %s: %w", tableID, err)
	}

	rows := make([]models.Row, len(resp.Items))
	for i, item := range resp.Items {
		values := make(map[string]string, len(item.Values))
		for col, v := range item.Values {
			if s, ok := v.(string); ok {
				values[col] = s
			}
		}
		rows[i] = models.Row{ID: item.ID, Values: values}
	}
	return rows, nil
}

// DeleteRow deletes one row on the source.
func (c *HTTPClient) DeleteRow(ctx context.Context, docID, tableID, rowID string) error {
	path := fmt.Sprintf("/docs/%s/tables/%s/rows/%s", docID, tableID, rowID)
	req, err := c.newRequest(ctx, http.MethodDelete, path)
	if err != nil {
		return fmt.Errorf("delete row %s: %w", rowID, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("delete row %s: %w", rowID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("delete row %s: %w", rowID, ErrRowNotFound)
	case resp.StatusCode >= 300:
		return fmt.Errorf("delete row %s: unexpected status %d", rowID, resp.StatusCode)
	}
	return nil
}

// Name implements the health checker interface.
func (c *HTTPClient) Name() string {
	return "document-source"
}

// Check verifies the document API is reachable.
func (c *HTTPClient) Check(ctx context.Context) error {
	var resp listResponse[documentItem]
	return c.get(ctx, "/docs?limit=1", &resp)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(req.Method, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.SourceRequestsTotal.WithLabelValues(req.Method, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return resp, nil
}
