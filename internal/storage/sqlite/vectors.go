// ABOUTME: Vector index operations for SQLite
// ABOUTME: Stores chunk vectors as BLOBs and answers filtered cosine similarity queries
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/util"
)

// VectorStore handles vector persistence and similarity search
type VectorStore struct {
	db *DB
}

// NewVectorStore creates a new VectorStore
func NewVectorStore(db *DB) *VectorStore {
	return &VectorStore{db: db}
}

// Upsert stores or replaces the vector for a chunk
func (s *VectorStore) Upsert(ctx context.Context, id string, vector []float64, meta models.VectorMetadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("chunk %s: %w", id, models.ErrEmptyEmbedding)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vectors (chunk_id, document_id, carrier_id, section, sequence, vector, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			carrier_id = excluded.carrier_id,
			section = excluded.section,
			sequence = excluded.sequence,
			vector = excluded.vector,
			updated_at = excluded.updated_at
	`, id, meta.DocumentID, meta.CarrierID, nullString(meta.Section), meta.Sequence, vectorToBlob(vector), time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert vector %s: %w", id, err)
	}
	return nil
}

// Query returns the topK entries most similar to vector that match filter
func (s *VectorStore) Query(ctx context.Context, vector []float64, topK int, filter models.VectorFilter) ([]models.VectorSearchResult, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, nil
	}

	query := `SELECT chunk_id, document_id, carrier_id, section, sequence, vector FROM vectors`
	var args []any
	if filter.CarrierID != "" {
		query += ` WHERE carrier_id = ?`
		args = append(args, filter.CarrierID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.VectorSearchResult
	for rows.Next() {
		var (
			r       models.VectorSearchResult
			section sql.NullString
			blob    []byte
		)
		if err := rows.Scan(&r.ChunkID, &r.Metadata.DocumentID, &r.Metadata.CarrierID, &section, &r.Metadata.Sequence, &blob); err != nil {
			return nil, err
		}
		r.Metadata.Section = section.String
		r.SimilarityScore = models.ClampScore(util.CosineSimilarity(vector, blobToVector(blob)))
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocument removes every vector belonging to a document
func (s *VectorStore) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vectors WHERE document_id = ?", documentID)
	return err
}

// Count returns the number of vectors matching filter
func (s *VectorStore) Count(ctx context.Context, filter models.VectorFilter) (int, error) {
	var n int
	var err error
	if filter.CarrierID != "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors WHERE carrier_id = ?", filter.CarrierID).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&n)
	}
	return n, err
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}
