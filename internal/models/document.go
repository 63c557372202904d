package models

import "time"

// Document is a snapshot of one externally-hosted document.
// The retained snapshot list is replaced wholesale on every scan;
// there is no diffing against the prior snapshot.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	UpdatedAt   time.Time `json:"updated_at"`
	Published   bool      `json:"published"`
	BrowserLink string    `json:"browser_link,omitempty"`
}

// Table is a table nested inside a document. Tables are fetched per
// scan and not retained afterwards. Rows is only populated by demo
// data sources; live sources deliver rows through a separate fetch.
type Table struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rows []Row  `json:"rows,omitempty"`
}

// Row holds the named column values of one table row.
type Row struct {
	ID     string            `json:"id"`
	Values map[string]string `json:"values"`
}
