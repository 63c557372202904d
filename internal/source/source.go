// Package source provides clients for the external document API that
// hosts the documents, tables, and rows being scanned.
package source

import (
	"context"
	"errors"

	"github.com/good-yellow-bee/docsentry/internal/models"
)

// ErrUnavailable indicates the document source could not be reached or
// rejected the request. Wrapped errors carry the transport detail.
var ErrUnavailable = errors.New("document source unavailable")

// ErrRowNotFound is returned by DeleteRow when the target row does not
// exist on the source.
var ErrRowNotFound = errors.New("row not found")

// Client is the boundary to the external document source.
//
// ListDocuments failures are fatal to a scan. ListTables failures are
// recoverable per document. ListRows failures degrade to an empty row
// set. DeleteRow failures surface as remediation failures.
type Client interface {
	ListDocuments(ctx context.Context) ([]models.Document, error)
	ListTables(ctx context.Context, docID string) ([]models.Table, error)
	ListRows(ctx context.Context, docID, tableID string) ([]models.Row, error)
	DeleteRow(ctx context.Context, docID, tableID, rowID string) error
}
