// ABOUTME: Ingestion request and receipt records
// ABOUTME: A receipt reports partial embedding success without failing the upload
package models

import "time"

// IngestRequest carries already-extracted guideline text for one carrier
type IngestRequest struct {
	Text           string    `json:"text"`
	CarrierID      string    `json:"carrier_id"`
	Title          string    `json:"title"`
	EffectiveDate  time.Time `json:"effective_date"`
	SourceLocation string    `json:"source_location,omitempty"`
}

// IngestReceipt summarizes the outcome of one ingestion
type IngestReceipt struct {
	DocumentID string `json:"document_id"`
	Version    int    `json:"version"`
	Chunks     int    `json:"chunks"`
	Embedded   int    `json:"embedded"`
	Indexed    int    `json:"indexed"`
	Superseded string `json:"superseded,omitempty"`
}
