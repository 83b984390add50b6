// ABOUTME: Tests for the ingestion pipeline over in-memory fakes
// ABOUTME: Covers validation, unknown carriers, versioning and degraded embedding
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
)

var guideEffective = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func tobaccoGuide() string {
	return "## Tobacco\nApplicants with no tobacco use in 12 months qualify for non-tobacco rates.\n"
}

func newTestIngestor(emb Embedder, idx VectorIndex, store DocumentStore) *Ingestor {
	return NewIngestor(NewChunkEngine(), emb, idx, store, 4, logging.Discard())
}

func TestIngest_Success(t *testing.T) {
	store := newMemStore(testCarrier)
	idx := newMemIndex()
	in := newTestIngestor(newKeywordEmbedder(), idx, store)

	receipt, err := in.Ingest(context.Background(), models.IngestRequest{
		Text: tobaccoGuide(), CarrierID: "acme", Title: "Field Guide", EffectiveDate: guideEffective,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, receipt.Version)
	assert.Equal(t, 1, receipt.Chunks)
	assert.Equal(t, 1, receipt.Embedded)
	assert.Equal(t, 1, receipt.Indexed)
	assert.Empty(t, receipt.Superseded)

	n, _ := idx.Count(context.Background(), models.VectorFilter{CarrierID: "acme"})
	assert.Equal(t, 1, n)
}

func TestIngest_Validation(t *testing.T) {
	in := newTestIngestor(newKeywordEmbedder(), newMemIndex(), newMemStore(testCarrier))

	_, err := in.Ingest(context.Background(), models.IngestRequest{CarrierID: "acme", Title: "x", EffectiveDate: guideEffective})
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "err = %v", err)

	_, err = in.Ingest(context.Background(), models.IngestRequest{
		Text: "text", CarrierID: "ghost", Title: "x", EffectiveDate: guideEffective,
	})
	assert.True(t, errors.Is(err, models.ErrUnknownCarrier), "err = %v", err)
}

func TestIngest_IdempotentReingest(t *testing.T) {
	store := newMemStore(testCarrier)
	idx := newMemIndex()
	in := newTestIngestor(newKeywordEmbedder(), idx, store)
	req := models.IngestRequest{
		Text: strings.Repeat("Cardiac history reviewed case by case. ", 300), CarrierID: "acme",
		Title: "Field Guide", EffectiveDate: guideEffective,
	}

	first, err := in.Ingest(context.Background(), req)
	require.NoError(t, err)
	second, err := in.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Equal(t, first.Version, second.Version)
	assert.Empty(t, second.Superseded)

	n, _ := idx.Count(context.Background(), models.VectorFilter{CarrierID: "acme"})
	assert.Equal(t, first.Indexed, n)
	assert.Greater(t, n, 1)
}

func TestIngest_NewVersionSupersedes(t *testing.T) {
	store := newMemStore(testCarrier)
	idx := newMemIndex()
	in := newTestIngestor(newKeywordEmbedder(), idx, store)
	ctx := context.Background()

	v1, err := in.Ingest(ctx, models.IngestRequest{Text: "Old tobacco rules.", CarrierID: "acme", Title: "Guide", EffectiveDate: guideEffective})
	require.NoError(t, err)
	v2, err := in.Ingest(ctx, models.IngestRequest{Text: "New tobacco rules.", CarrierID: "acme", Title: "Guide", EffectiveDate: guideEffective})
	require.NoError(t, err)

	assert.NotEqual(t, v1.DocumentID, v2.DocumentID)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, v1.DocumentID, v2.Superseded)

	old, err := store.GetDocument(ctx, v1.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, v2.DocumentID, old.SupersededBy)

	n, _ := idx.Count(ctx, models.VectorFilter{CarrierID: "acme"})
	assert.Equal(t, v2.Indexed, n, "superseded vectors must be removed")
}

func TestIngest_EmbeddingFailureDegrades(t *testing.T) {
	store := newMemStore(testCarrier)
	idx := newMemIndex()
	emb := newKeywordEmbedder()
	emb.failOn = "cannabis"
	in := NewIngestor(NewChunkEngine(WithTargetTokens(20), WithOverlapWords(0)), emb, idx, store, 2, logging.Discard())

	text := "## Tobacco\nNo tobacco for 12 months.\n## Cannabis\nCannabis users rated standard.\n"
	receipt, err := in.Ingest(context.Background(), models.IngestRequest{
		Text: text, CarrierID: "acme", Title: "Guide", EffectiveDate: guideEffective,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, receipt.Chunks)
	assert.Equal(t, 1, receipt.Embedded)
	assert.Equal(t, 1, receipt.Indexed)
	assert.Len(t, store.chunks, 2, "failed chunks are still stored")
}

func TestIngest_NoEmbedder(t *testing.T) {
	store := newMemStore(testCarrier)
	in := newTestIngestor(nil, newMemIndex(), store)

	receipt, err := in.Ingest(context.Background(), models.IngestRequest{
		Text: tobaccoGuide(), CarrierID: "acme", Title: "Guide", EffectiveDate: guideEffective,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Embedded)
	assert.Equal(t, 0, receipt.Indexed)
	assert.Equal(t, 1, receipt.Chunks)
}

func TestIngest_ConcurrentRevisionsGetDistinctVersions(t *testing.T) {
	store := newMemStore(testCarrier)
	in := newTestIngestor(newKeywordEmbedder(), newMemIndex(), store)

	const revisions = 8
	var wg sync.WaitGroup
	errs := make([]error, revisions)
	for i := 0; i < revisions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = in.Ingest(context.Background(), models.IngestRequest{
				Text:          fmt.Sprintf("## Tobacco\nLook-back period is %d months.\n", 12+i),
				CarrierID:     "acme",
				Title:         "Field Guide",
				EffectiveDate: guideEffective,
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.docs, revisions)

	versions := make(map[int]bool)
	current := 0
	for _, d := range store.docs {
		versions[d.Version] = true
		if !d.IsSuperseded() {
			current++
		}
	}
	assert.Len(t, versions, revisions)
	assert.Equal(t, 1, current)
}
