package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/good-yellow-bee/docsentry/internal/models"
)

// DemoClient serves an embedded fixture dataset. It is used when the
// service runs in demo mode and no live document API is available.
// Tables carry their rows embedded, so scans need no row fetches.
type DemoClient struct {
	mu     sync.Mutex
	docs   []models.Document
	tables map[string][]models.Table
}

// NewDemoClient creates a demo source seeded with documents that
// trigger each scan rule at least once.
func NewDemoClient() *DemoClient {
	now := time.Now()
	return &DemoClient{
		docs: []models.Document{
			{
				ID:          "demo-doc-1",
				Name:        "Customer Onboarding",
				UpdatedAt:   now.Add(-1 * time.Hour),
				Published:   true,
				BrowserLink: "https://docs.example.com/d/demo-doc-1",
			},
			{
				ID:          "demo-doc-2",
				Name:        "Legacy Runbook",
				UpdatedAt:   now.Add(-120 * 24 * time.Hour),
				Published:   false,
				BrowserLink: "https://docs.example.com/d/demo-doc-2",
			},
			{
				ID:          "demo-doc-3",
				Name:        "Team Directory",
				UpdatedAt:   now.Add(-2 * 24 * time.Hour),
				Published:   false,
				BrowserLink: "https://docs.example.com/d/demo-doc-3",
			},
		},
		tables: map[string][]models.Table{
			"demo-doc-1": {
				{
					ID:   "demo-table-creds",
					Name: "Service Accounts",
					Rows: []models.Row{
						{
							ID: "row-1",
							Values: map[string]string{
								"Service": "staging-db",
								"Notes":   "password: hunter2",
							},
						},
						{
							ID: "row-2",
							Values: map[string]string{
								"Service": "deploy-bot",
								"Notes":   "api_key = k9f2nd8a0q1lz7xw4c",
							},
						},
					},
				},
			},
			"demo-doc-3": {
				{
					ID:   "demo-table-people",
					Name: "Contacts",
					Rows: []models.Row{
						{
							ID: "row-1",
							Values: map[string]string{
								"Name":  "Alice Chen",
								"Email": "alice.chen@example.com",
								"Phone": "555-123-4567",
							},
						},
					},
				},
			},
		},
	}
}

// ListDocuments returns the fixture documents.
func (c *DemoClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Document, len(c.docs))
	copy(out, c.docs)
	return out, nil
}

// ListTables returns the fixture tables with rows embedded. Row slices
// are copied so a concurrent DeleteRow cannot shift rows out from
// under a caller holding an earlier snapshot.
func (c *DemoClient) ListTables(ctx context.Context, docID string) ([]models.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tables := c.tables[docID]
	out := make([]models.Table, len(tables))
	for i, table := range tables {
		out[i] = table
		if table.Rows != nil {
			out[i].Rows = make([]models.Row, len(table.Rows))
			copy(out[i].Rows, table.Rows)
		}
	}
	return out, nil
}

// ListRows serves the embedded rows of a fixture table.
func (c *DemoClient) ListRows(ctx context.Context, docID, tableID string) ([]models.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, table := range c.tables[docID] {
		if table.ID == tableID {
			out := make([]models.Row, len(table.Rows))
			copy(out, table.Rows)
			return out, nil
		}
	}
	return nil, nil
}

// DeleteRow removes a row from the fixture.
func (c *DemoClient) DeleteRow(ctx context.Context, docID, tableID, rowID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tables := c.tables[docID]
	for ti, table := range tables {
		if table.ID != tableID {
			continue
		}
		for ri, row := range table.Rows {
			if row.ID == rowID {
				tables[ti].Rows = append(table.Rows[:ri], table.Rows[ri+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("delete row %s: %w", rowID, ErrRowNotFound)
}

// Name implements the health checker interface.
func (c *DemoClient) Name() string {
	return "demo-source"
}

// Check always succeeds; the fixture is in-process.
func (c *DemoClient) Check(ctx context.Context) error {
	return nil
}
