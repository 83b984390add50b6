// ABOUTME: Tests for query embedding and per-carrier retrieval fan-out
// ABOUTME: Verifies deduplicated embedding, carrier filtering and failure isolation
package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
)

func TestEmbedQueries_Deduplicates(t *testing.T) {
	emb := newKeywordEmbedder()
	r := NewRetriever(emb, newMemIndex(), config.DefaultRetrieval(), logging.Discard())

	queries := []models.Query{
		{Dimension: models.DimensionTobacco, Text: "tobacco rates"},
		{Dimension: models.DimensionBuild, Text: "build chart"},
		{Dimension: models.DimensionGeneral, Text: "tobacco rates"},
	}
	vectors := r.EmbedQueries(context.Background(), queries)

	require.Len(t, vectors, 3)
	assert.Equal(t, int64(2), emb.calls.Load())
	assert.Equal(t, vectors[0], vectors[2])
}

func TestEmbedQueries_Failure(t *testing.T) {
	emb := newKeywordEmbedder()
	emb.failOn = "build"
	r := NewRetriever(emb, newMemIndex(), config.DefaultRetrieval(), logging.Discard())

	vectors := r.EmbedQueries(context.Background(), []models.Query{{Text: "build chart"}, {Text: "tobacco"}})
	assert.Nil(t, vectors[0])
	assert.NotNil(t, vectors[1])

	vectors = NewRetriever(nil, newMemIndex(), config.DefaultRetrieval(), logging.Discard()).
		EmbedQueries(context.Background(), []models.Query{{Text: "tobacco"}})
	assert.Nil(t, vectors[0])
}

func TestRetrieveCarrier_FiltersByCarrier(t *testing.T) {
	ctx := context.Background()
	idx := newMemIndex()
	emb := newKeywordEmbedder()
	tob, _ := emb.Embed(ctx, "tobacco")
	require.NoError(t, idx.Upsert(ctx, "chunk_acme", tob, models.VectorMetadata{CarrierID: "acme", DocumentID: "doc_a"}))
	require.NoError(t, idx.Upsert(ctx, "chunk_zen", tob, models.VectorMetadata{CarrierID: "zenith", DocumentID: "doc_z"}))

	r := NewRetriever(emb, idx, config.DefaultRetrieval(), logging.Discard())
	queries := []models.Query{{Text: "tobacco rates"}, {Text: "build chart"}}
	vectors := r.EmbedQueries(ctx, queries)

	hits := r.RetrieveCarrier(ctx, "acme", queries, vectors)
	require.Len(t, hits, 2)
	require.Len(t, hits[0], 1)
	assert.Equal(t, "chunk_acme", hits[0][0].ChunkID)
	assert.Equal(t, "doc_a", hits[0][0].DocumentID)
	assert.Equal(t, 0, hits[0][0].QueryIndex)
	assert.InDelta(t, 1.0, hits[0][0].Score, 1e-9)
	assert.InDelta(t, 0.0, hits[1][0].Score, 1e-9)
}

func TestRetrieveCarrier_SkipsMissingVectors(t *testing.T) {
	idx := newMemIndex()
	r := NewRetriever(newKeywordEmbedder(), idx, config.DefaultRetrieval(), logging.Discard())

	hits := r.RetrieveCarrier(context.Background(), "acme", []models.Query{{}, {}}, [][]float64{nil, {1}})
	assert.Nil(t, hits[0])
	assert.Equal(t, int64(1), idx.queries.Load())
}

func TestRetrieveCarrier_IndexFailure(t *testing.T) {
	idx := newMemIndex()
	idx.queryErr = errors.New("index offline")
	r := NewRetriever(newKeywordEmbedder(), idx, config.Retrieval{TopK: 3, Timeout: time.Second, Concurrency: 2}, logging.Discard())

	hits := r.RetrieveCarrier(context.Background(), "acme", []models.Query{{}, {}}, [][]float64{{1}, {1}})
	require.Len(t, hits, 2)
	assert.Empty(t, hits[0])
	assert.Empty(t, hits[1])
}
