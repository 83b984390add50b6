// ABOUTME: Document and chunk storage operations for SQLite
// ABOUTME: Saves a document with its chunks atomically and serves citation context
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/carrierfit/internal/models"
)

// DocumentStore handles document and chunk persistence
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, carrier_id, title, effective_date, version, source_location, content_hash, superseded_by, created_at`

// Save upserts a document and replaces its chunks in one transaction
func (s *DocumentStore) Save(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (`+documentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				version = excluded.version,
				source_location = excluded.source_location,
				superseded_by = NULL
		`, doc.ID, doc.CarrierID, doc.Title, doc.EffectiveDate.Format(models.DateLayout), doc.Version,
			nullString(doc.SourceLocation), doc.ContentHash, doc.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
			return fmt.Errorf("failed to clear chunks: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, document_id, sequence, section, text, overlap_len, token_estimate, embedded)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, c := range chunks {
			if _, err := stmt.ExecContext(ctx, c.ID, doc.ID, c.Sequence, nullString(c.Section), c.Text,
				c.OverlapLen, c.TokenEstimate, c.HasEmbedding()); err != nil {
				return fmt.Errorf("failed to save chunk %d: %w", c.Sequence, err)
			}
		}
		return nil
	})
}

// Get retrieves a document by ID, returning models.ErrNotFound when absent
func (s *DocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return doc, err
}

// Latest returns the highest version for (carrier, title), or nil when none exists
func (s *DocumentStore) Latest(ctx context.Context, carrierID, title string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE carrier_id = ? AND title = ?
		ORDER BY version DESC
		LIMIT 1
	`, carrierID, title)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// ListByCarrier returns a carrier's documents, newest version first.
// Superseded versions are included only when includeSuperseded is set.
func (s *DocumentStore) ListByCarrier(ctx context.Context, carrierID string, includeSuperseded bool) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE carrier_id = ?`
	if !includeSuperseded {
		query += ` AND superseded_by IS NULL`
	}
	query += ` ORDER BY title ASC, version DESC`

	rows, err := s.db.QueryContext(ctx, query, carrierID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// MarkSuperseded records that documentID was replaced by supersededBy
func (s *DocumentStore) MarkSuperseded(ctx context.Context, documentID, supersededBy string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE documents SET superseded_by = ? WHERE id = ?", supersededBy, documentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", documentID, models.ErrNotFound)
	}
	return nil
}

// Count returns the number of current (not superseded) documents
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE superseded_by IS NULL").Scan(&n)
	return n, err
}

// Chunks returns a document's chunks in sequence order, without embeddings
func (s *DocumentStore) Chunks(ctx context.Context, documentID string) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, sequence, section, text, overlap_len, token_estimate
		FROM chunks
		WHERE document_id = ?
		ORDER BY sequence ASC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []models.Chunk
	for rows.Next() {
		var (
			c       models.Chunk
			section sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Sequence, &section, &c.Text, &c.OverlapLen, &c.TokenEstimate); err != nil {
			return nil, err
		}
		c.Section = section.String
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CitationSources loads chunk bodies with their document title and date
func (s *DocumentStore) CitationSources(ctx context.Context, chunkIDs []string) (map[string]models.CitationSource, error) {
	out := make(map[string]models.CitationSource, len(chunkIDs))
	if len(chunkIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunkIDs)), ",")
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.text, c.overlap_len, c.section, d.title, d.effective_date
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			c         models.Chunk
			section   sql.NullString
			title     string
			effective string
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.OverlapLen, &section, &title, &effective); err != nil {
			return nil, err
		}
		eff, _ := time.Parse(models.DateLayout, effective)
		out[c.ID] = models.CitationSource{
			ChunkID:       c.ID,
			Body:          c.Body(),
			Section:       section.String,
			DocumentTitle: title,
			EffectiveDate: eff,
		}
	}
	return out, rows.Err()
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc          models.Document
		effective    string
		source       sql.NullString
		supersededBy sql.NullString
	)
	if err := row.Scan(&doc.ID, &doc.CarrierID, &doc.Title, &effective, &doc.Version, &source,
		&doc.ContentHash, &supersededBy, &doc.CreatedAt); err != nil {
		return nil, err
	}
	eff, err := time.Parse(models.DateLayout, effective)
	if err != nil {
		return nil, fmt.Errorf("invalid effective date %q on document %s: %w", effective, doc.ID, err)
	}
	doc.EffectiveDate = eff
	doc.SourceLocation = source.String
	doc.SupersededBy = supersededBy.String
	return &doc, nil
}
