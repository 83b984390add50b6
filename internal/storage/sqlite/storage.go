// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Satisfies the pipeline's document store, vector index and evaluation cache
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/carrierfit/internal/core"
	"github.com/harper/carrierfit/internal/models"
)

var (
	_ core.DocumentStore       = (*Storage)(nil)
	_ core.RecommendationCache = (*Storage)(nil)
	_ core.VectorIndex         = (*VectorStore)(nil)
)

// Storage manages all persistent carrier guideline data using SQLite
type Storage struct {
	db          *DB
	carriers    *CarrierStore
	documents   *DocumentStore
	vectors     *VectorStore
	evaluations *EvaluationStore
}

// Stats summarizes what is stored
type Stats struct {
	Carriers    int `json:"carriers"`
	Documents   int `json:"documents"`
	Chunks      int `json:"chunks"`
	Vectors     int `json:"vectors"`
	Evaluations int `json:"evaluations"`
}

// NewStorage initializes storage at the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:          db,
		carriers:    NewCarrierStore(db),
		documents:   NewDocumentStore(db),
		vectors:     NewVectorStore(db),
		evaluations: NewEvaluationStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Vectors returns the SQLite-backed vector index
func (s *Storage) Vectors() *VectorStore {
	return s.vectors
}

// SaveCarrier registers or updates a carrier
func (s *Storage) SaveCarrier(ctx context.Context, c *models.Carrier) error {
	return s.carriers.Save(ctx, c)
}

// GetCarrier retrieves a carrier by ID
func (s *Storage) GetCarrier(ctx context.Context, id string) (*models.Carrier, error) {
	return s.carriers.Get(ctx, id)
}

// ListCarriers returns all carriers by preference rank
func (s *Storage) ListCarriers(ctx context.Context) ([]models.Carrier, error) {
	return s.carriers.List(ctx)
}

// DeleteCarrier removes a carrier, its documents and their vectors
func (s *Storage) DeleteCarrier(ctx context.Context, id string) error {
	docs, err := s.documents.ListByCarrier(ctx, id, true)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := s.vectors.DeleteDocument(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete vectors for %s: %w", d.ID, err)
		}
	}
	return s.carriers.Delete(ctx, id)
}

// LatestDocument returns the newest version for (carrier, title), or nil
func (s *Storage) LatestDocument(ctx context.Context, carrierID, title string) (*models.Document, error) {
	return s.documents.Latest(ctx, carrierID, title)
}

// GetDocument retrieves a document by ID
func (s *Storage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.documents.Get(ctx, id)
}

// SaveDocument stores a document and its chunks
func (s *Storage) SaveDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	return s.documents.Save(ctx, doc, chunks)
}

// MarkSuperseded records that a document version was replaced
func (s *Storage) MarkSuperseded(ctx context.Context, documentID, supersededBy string) error {
	return s.documents.MarkSuperseded(ctx, documentID, supersededBy)
}

// CountDocuments returns the number of current documents
func (s *Storage) CountDocuments(ctx context.Context) (int, error) {
	return s.documents.Count(ctx)
}

// ListDocuments returns a carrier's documents
func (s *Storage) ListDocuments(ctx context.Context, carrierID string, includeSuperseded bool) ([]models.Document, error) {
	return s.documents.ListByCarrier(ctx, carrierID, includeSuperseded)
}

// GetChunks returns a document's chunks in order
func (s *Storage) GetChunks(ctx context.Context, documentID string) ([]models.Chunk, error) {
	return s.documents.Chunks(ctx, documentID)
}

// CitationSources loads citation context for chunks
func (s *Storage) CitationSources(ctx context.Context, chunkIDs []string) (map[string]models.CitationSource, error) {
	return s.documents.CitationSources(ctx, chunkIDs)
}

// SaveEvaluation caches an evaluation
func (s *Storage) SaveEvaluation(ctx context.Context, eval *models.Evaluation) error {
	return s.evaluations.Save(ctx, eval)
}

// GetEvaluation returns the newest cached evaluation for a fingerprint
func (s *Storage) GetEvaluation(ctx context.Context, fingerprint string) (*models.Evaluation, error) {
	return s.evaluations.Latest(ctx, fingerprint)
}

// ListEvaluations returns recent cached evaluations
func (s *Storage) ListEvaluations(ctx context.Context, limit int) ([]models.Evaluation, error) {
	return s.evaluations.List(ctx, limit)
}

// Stats counts rows in each table
func (s *Storage) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		table string
		dest  *int
	}{
		{"carriers", &st.Carriers},
		{"documents", &st.Documents},
		{"chunks", &st.Chunks},
		{"vectors", &st.Vectors},
		{"evaluations", &st.Evaluations},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return &st, nil
}

// IsNotFound reports whether err means a record was missing
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
