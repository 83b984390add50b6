// ABOUTME: Document represents one carrier underwriting guideline upload
// ABOUTME: IDs are derived from carrier, title, effective date and content hash
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the layout used for effective dates on the wire and in storage
const DateLayout = "2006-01-02"

var documentNamespace = uuid.MustParse("6f1d7c3e-2b8a-5d4f-9e61-0a7c3b5d8e21")

// Document is an immutable guideline document owned by a carrier
type Document struct {
	ID             string    `json:"id"`
	CarrierID      string    `json:"carrier_id"`
	Title          string    `json:"title"`
	EffectiveDate  time.Time `json:"effective_date"`
	Version        int       `json:"version"`
	SourceLocation string    `json:"source_location,omitempty"`
	ContentHash    string    `json:"content_hash"`
	SupersededBy   string    `json:"superseded_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewDocument validates the upload fields and derives a stable document ID.
// Version is left at zero; the ingestor resolves it against the store.
func NewDocument(carrierID, title string, effective time.Time, source, text string) (*Document, error) {
	carrierID = strings.TrimSpace(carrierID)
	title = strings.TrimSpace(title)

	if carrierID == "" {
		return nil, fmt.Errorf("%w: carrier id cannot be empty", ErrInvalidInput)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: document title cannot be empty", ErrInvalidInput)
	}
	if effective.IsZero() {
		return nil, fmt.Errorf("%w: effective date is required", ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document text cannot be empty", ErrInvalidInput)
	}

	effective = time.Date(effective.Year(), effective.Month(), effective.Day(), 0, 0, 0, 0, time.UTC)
	hash := ContentHash(text)

	return &Document{
		ID:             DocumentID(carrierID, title, effective, hash),
		CarrierID:      carrierID,
		Title:          title,
		EffectiveDate:  effective,
		SourceLocation: source,
		ContentHash:    hash,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// IsSuperseded reports whether a newer version replaced this document
func (d *Document) IsSuperseded() bool {
	return d.SupersededBy != ""
}

// ContentHash returns the hex sha256 of document text
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DocumentID derives the document identity from its upload fields
func DocumentID(carrierID, title string, effective time.Time, contentHash string) string {
	key := strings.Join([]string{carrierID, title, effective.Format(DateLayout), contentHash}, "\x1f")
	return "doc_" + uuid.NewSHA1(documentNamespace, []byte(key)).String()
}

// ParseDate parses a YYYY-MM-DD effective date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: effective date must be YYYY-MM-DD: %v", ErrInvalidInput, err)
	}
	return t, nil
}
