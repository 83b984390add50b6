// ABOUTME: Tests for SQLite vector index operations
// ABOUTME: Verifies upsert idempotency, filtered similarity search and BLOB encoding
package sqlite

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/harper/carrierfit/internal/models"
)

func TestVectorBlobRoundTrip(t *testing.T) {
	original := []float64{1.5, -2.25, 0, math.Pi, 1e-9}

	got := blobToVector(vectorToBlob(original))
	if len(got) != len(original) {
		t.Fatalf("length = %d, want %d", len(got), len(original))
	}
	for i := range original {
		if got[i] != original[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], original[i])
		}
	}
}

func TestVectorUpsertIsIdempotent(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	vs := NewVectorStore(db)
	ctx := context.Background()

	meta := models.VectorMetadata{CarrierID: "acme", DocumentID: "doc_1", Section: "Build"}
	for i := 0; i < 3; i++ {
		if err := vs.Upsert(ctx, "chunk_1", []float64{1, 0}, meta); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	n, err := vs.Count(ctx, models.VectorFilter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestVectorUpsertRejectsEmpty(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	err = NewVectorStore(db).Upsert(context.Background(), "chunk_1", nil, models.VectorMetadata{})
	if !errors.Is(err, models.ErrEmptyEmbedding) {
		t.Errorf("Upsert(nil) error = %v, want ErrEmptyEmbedding", err)
	}
}

func TestVectorQuery(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	vs := NewVectorStore(db)
	ctx := context.Background()

	entries := []struct {
		id      string
		carrier string
		vec     []float64
	}{
		{"chunk_a", "acme", []float64{1, 0}},
		{"chunk_b", "acme", []float64{0.6, 0.8}},
		{"chunk_c", "acme", []float64{-1, 0}},
		{"chunk_z", "zen", []float64{1, 0}},
	}
	for _, e := range entries {
		meta := models.VectorMetadata{CarrierID: e.carrier, DocumentID: "doc_" + e.carrier}
		if err := vs.Upsert(ctx, e.id, e.vec, meta); err != nil {
			t.Fatalf("Upsert(%s) error = %v", e.id, err)
		}
	}

	tests := []struct {
		name    string
		topK    int
		filter  models.VectorFilter
		wantIDs []string
	}{
		{"filtered to carrier", 3, models.VectorFilter{CarrierID: "acme"}, []string{"chunk_a", "chunk_b", "chunk_c"}},
		{"top k limits", 1, models.VectorFilter{CarrierID: "acme"}, []string{"chunk_a"}},
		{"ties break by id", 2, models.VectorFilter{}, []string{"chunk_a", "chunk_z"}},
		{"other carrier", 5, models.VectorFilter{CarrierID: "zen"}, []string{"chunk_z"}},
		{"unknown carrier", 5, models.VectorFilter{CarrierID: "ghost"}, nil},
		{"zero k", 0, models.VectorFilter{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := vs.Query(ctx, []float64{1, 0}, tt.topK, tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("Query() count = %d, want %d", len(results), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if results[i].ChunkID != id {
					t.Errorf("results[%d] = %v, want %v", i, results[i].ChunkID, id)
				}
				if results[i].SimilarityScore < 0 || results[i].SimilarityScore > 1 {
					t.Errorf("score %v outside [0,1]", results[i].SimilarityScore)
				}
			}
		})
	}

	results, err := vs.Query(ctx, []float64{1, 0}, 3, models.VectorFilter{CarrierID: "acme"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if math.Abs(results[1].SimilarityScore-0.6) > 1e-9 {
		t.Errorf("chunk_b score = %v, want 0.6", results[1].SimilarityScore)
	}
	if results[2].SimilarityScore != 0 {
		t.Errorf("opposite vector score = %v, want clamped 0", results[2].SimilarityScore)
	}
	if results[0].Metadata.DocumentID != "doc_acme" {
		t.Errorf("Metadata.DocumentID = %v, want doc_acme", results[0].Metadata.DocumentID)
	}
}

func TestVectorDeleteDocument(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	vs := NewVectorStore(db)
	ctx := context.Background()

	_ = vs.Upsert(ctx, "chunk_1", []float64{1}, models.VectorMetadata{CarrierID: "acme", DocumentID: "doc_1"})
	_ = vs.Upsert(ctx, "chunk_2", []float64{1}, models.VectorMetadata{CarrierID: "acme", DocumentID: "doc_2"})

	if err := vs.DeleteDocument(ctx, "doc_1"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	n, err := vs.Count(ctx, models.VectorFilter{CarrierID: "acme"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
