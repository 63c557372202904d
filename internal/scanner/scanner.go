// Package scanner walks the document/table/row hierarchy on the
// document source and feeds detected conditions into the alert store.
package scanner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/docsentry/internal/detector"
	"github.com/good-yellow-bee/docsentry/internal/metrics"
	"github.com/good-yellow-bee/docsentry/internal/models"
	"github.com/good-yellow-bee/docsentry/internal/source"
	"github.com/good-yellow-bee/docsentry/internal/store"
)

// Config holds scan rule settings.
type Config struct {
	// StaleAfter is the staleness threshold: documents not updated for
	// longer than this raise an unused_document alert.
	StaleAfter time.Duration

	// UseDemoData skips live row fetches and uses rows embedded on the
	// table object when present.
	UseDemoData bool
}

// DocError records a recoverable per-document failure.
type DocError struct {
	DocID string `json:"doc_id"`
	Error string `json:"error"`
}

// Result summarizes one scan run.
type Result struct {
	RunID            string        `json:"run_id"`
	DocumentsScanned int           `json:"documents_scanned"`
	AlertsCreated    int           `json:"alerts_created"`
	Errors           []DocError    `json:"errors,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
}

// Scanner runs scans over the document source.
type Scanner struct {
	client source.Client
	store  *store.Store
	config Config

	// now is swappable for tests.
	now func() time.Time
}

// New creates a scanner.
func New(client source.Client, st *store.Store, config Config) *Scanner {
	return &Scanner{
		client: client,
		store:  st,
		config: config,
		now:    time.Now,
	}
}

// Run executes one scan synchronously. A document-list failure is
// fatal: the error propagates and no partial result is returned.
// Table-list failures are recorded per document and the scan
// continues; row-list failures degrade to an empty row set.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	started := s.now()
	result := &Result{
		RunID:     uuid.New().String()[:8],
		StartedAt: started,
	}

	docs, err := s.client.ListDocuments(ctx)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("scan %s: %w", result.RunID, err)
	}

	s.store.ReplaceDocuments(docs)

	for _, doc := range docs {
		result.DocumentsScanned++
		s.checkStaleness(result, doc)
		s.checkExposure(result, doc)
		s.checkContent(ctx, result, doc)
	}

	result.Duration = s.now().Sub(started)

	metrics.ScansTotal.WithLabelValues("ok").Inc()
	metrics.ScanDuration.Observe(result.Duration.Seconds())
	metrics.DocumentsScanned.Add(float64(result.DocumentsScanned))
	metrics.OpenAlerts.Set(float64(s.store.OpenCount()))

	log.Printf("scan %s: %d documents, %d alerts created, %d errors in %v",
		result.RunID, result.DocumentsScanned, result.AlertsCreated, len(result.Errors), result.Duration)

	return result, nil
}

func (s *Scanner) checkStaleness(result *Result, doc models.Document) {
	elapsed := s.now().Sub(doc.UpdatedAt)
	if elapsed <= s.config.StaleAfter {
		return
	}

	s.create(result, store.Draft{
		Type:         models.AlertTypeUnusedDocument,
		Severity:     models.SeverityLow,
		Title:        fmt.Sprintf("Unused document: %s", doc.Name),
		Description:  fmt.Sprintf("Document has not been updated for %s (threshold %s)", elapsed.Truncate(time.Minute), s.config.StaleAfter),
		DocID:        doc.ID,
		DocName:      doc.Name,
		ResourceID:   doc.ID,
		ResourceType: models.ResourceDocument,
		Metadata: map[string]string{
			"stale_for": elapsed.Truncate(time.Second).String(),
		},
	})
}

func (s *Scanner) checkExposure(result *Result, doc models.Document) {
	if !doc.Published {
		return
	}

	s.create(result, store.Draft{
		Type:         models.AlertTypePublicDocument,
		Severity:     models.SeverityHigh,
		Title:        fmt.Sprintf("Publicly shared document: %s", doc.Name),
		Description:  "Document is published and reachable without authentication",
		DocID:        doc.ID,
		DocName:      doc.Name,
		ResourceID:   doc.ID,
		ResourceType: models.ResourceDocument,
		Metadata: map[string]string{
			"public_url": doc.BrowserLink,
		},
	})
}

func (s *Scanner) checkContent(ctx context.Context, result *Result, doc models.Document) {
	tables, err := s.client.ListTables(ctx, doc.ID)
	if err != nil {
		result.Errors = append(result.Errors, DocError{DocID: doc.ID, Error: err.Error()})
		log.Printf("scan: list tables for doc %s: %v", doc.ID, err)
		return
	}

	for _, table := range tables {
		rows := s.fetchRows(ctx, doc.ID, table)
		for _, row := range rows {
			s.scanRow(result, doc, table, row)
		}
	}
}

// fetchRows resolves the rows of one table. A fetch failure yields an
// empty row set rather than an error; the table is simply skipped.
func (s *Scanner) fetchRows(ctx context.Context, docID string, table models.Table) []models.Row {
	if s.config.UseDemoData && table.Rows != nil {
		return table.Rows
	}

	rows, err := s.client.ListRows(ctx, docID, table.ID)
	if err != nil {
		return nil
	}
	return rows
}

func (s *Scanner) scanRow(result *Result, doc models.Document, table models.Table, row models.Row) {
	columns := make([]string, 0, len(row.Values))
	for col := range row.Values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		for _, finding := range detector.Evaluate(row.Values[col]) {
			s.create(result, store.Draft{
				Type:     models.AlertTypeSensitiveData,
				Severity: finding.Severity,
				Title:    fmt.Sprintf("%s in table %s", finding.DisplayName, table.Name),
				Description: fmt.Sprintf("Detected %d occurrence(s) in column %q; samples: %s",
					finding.Count, col, strings.Join(finding.Samples, ", ")),
				DocID:        doc.ID,
				DocName:      doc.Name,
				ResourceID:   row.ID,
				ResourceType: models.ResourceRow,
				Metadata: map[string]string{
					"table_id":   table.ID,
					"table_name": table.Name,
					"column":     col,
					"detector":   finding.Detector,
				},
			})
		}
	}
}

func (s *Scanner) create(result *Result, draft store.Draft) {
	alert, created := s.store.CreateIfAbsent(draft)
	if !created {
		return
	}
	result.AlertsCreated++
	metrics.AlertsCreatedTotal.WithLabelValues(string(alert.Type), string(alert.Severity)).Inc()
}

// SetClock replaces the scanner's time source. For tests.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}
