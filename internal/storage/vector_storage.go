// ABOUTME: Vector index with Charm KV backend and cosine similarity search
// ABOUTME: Stores chunk vectors in Charm KV so an index can sync between machines
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harper/carrierfit/internal/charm"
	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/util"
)

// KV is the subset of the charm client the vector index needs
type KV interface {
	SetJSON(key string, value any) error
	GetJSON(key string, dest any) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
}

var _ KV = (*charm.Client)(nil)

// vectorEntry is the JSON payload stored under each vector key
type vectorEntry struct {
	ChunkID   string                `json:"chunk_id"`
	Metadata  models.VectorMetadata `json:"metadata"`
	Vector    []float64             `json:"vector"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// VectorStorage manages chunk vectors and similarity search using Charm KV
type VectorStorage struct {
	kv KV
}

// NewVectorStorage creates a new VectorStorage backed by kv
func NewVectorStorage(kv KV) *VectorStorage {
	return &VectorStorage{kv: kv}
}

// Upsert stores or replaces the vector for a chunk
func (vs *VectorStorage) Upsert(ctx context.Context, id string, vector []float64, meta models.VectorMetadata) error {
	if len(vector) == 0 {
		return fmt.Errorf("chunk %s: %w", id, models.ErrEmptyEmbedding)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := vectorEntry{
		ChunkID:   id,
		Metadata:  meta,
		Vector:    vector,
		UpdatedAt: time.Now().UTC(),
	}
	return vs.kv.SetJSON(charm.VectorKey(id), entry)
}

// Query performs a filtered cosine similarity search across stored vectors
func (vs *VectorStorage) Query(ctx context.Context, vector []float64, topK int, filter models.VectorFilter) ([]models.VectorSearchResult, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, nil
	}

	entries, err := vs.scan(ctx)
	if err != nil {
		return nil, err
	}

	var results []models.VectorSearchResult
	for _, e := range entries {
		if !filter.Matches(e.Metadata) {
			continue
		}
		results = append(results, models.VectorSearchResult{
			ChunkID:         e.ChunkID,
			Metadata:        e.Metadata,
			SimilarityScore: models.ClampScore(util.CosineSimilarity(vector, e.Vector)),
		})
	}

	// Sort by similarity descending, chunk id for ties
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
func (vs *VectorStorage) DeleteDocument(ctx context.Context, documentID string) error {
	entries, err := vs.scan(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Metadata.DocumentID != documentID {
			continue
		}
		if err := vs.kv.Delete(charm.VectorKey(e.ChunkID)); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of vectors matching filter
func (vs *VectorStorage) Count(ctx context.Context, filter models.VectorFilter) (int, error) {
	entries, err := vs.scan(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if filter.Matches(e.Metadata) {
			n++
		}
	}
	return n, nil
}

// scan loads every vector entry, skipping unreadable keys
func (vs *VectorStorage) scan(ctx context.Context) ([]vectorEntry, error) {
	keys, err := vs.kv.ListKeys(charm.VectorPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list vector keys: %w", err)
	}

	entries := make([]vectorEntry, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var e vectorEntry
		if err := vs.kv.GetJSON(key, &e); err != nil {
			continue
		}
		if e.ChunkID == "" {
			e.ChunkID = charm.ChunkIDFromKey(key)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
