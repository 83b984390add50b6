// ABOUTME: Ingestor chunks, embeds, stores and indexes one carrier guideline document
// ABOUTME: Store failures abort; embedding and index failures degrade and are counted
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
)

// Ingestor runs the ingestion pipeline
type Ingestor struct {
	chunker     *ChunkEngine
	embedder    Embedder
	index       VectorIndex
	store       DocumentStore
	concurrency int
	logger      *log.Logger

	// titleLocks serializes ingests of the same (carrier, title)
	titleLocks sync.Map
}

// NewIngestor creates an Ingestor. A nil embedder stores chunks without vectors.
func NewIngestor(chunker *ChunkEngine, embedder Embedder, index VectorIndex, store DocumentStore, concurrency int, logger *log.Logger) *Ingestor {
	if chunker == nil {
		chunker = NewChunkEngine()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingestor{
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		store:       store,
		concurrency: concurrency,
		logger:      logging.Component(logger, "ingestor"),
	}
}

// Ingest stores a document for a registered carrier. Re-ingesting identical
// content keeps the document ID, version and chunk IDs.
func (in *Ingestor) Ingest(ctx context.Context, req models.IngestRequest) (*models.IngestReceipt, error) {
	doc, err := models.NewDocument(req.CarrierID, req.Title, req.EffectiveDate, req.SourceLocation, req.Text)
	if err != nil {
		return nil, err
	}

	if _, err := in.store.GetCarrier(ctx, doc.CarrierID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownCarrier, doc.CarrierID)
		}
		return nil, fmt.Errorf("failed to load carrier: %w", err)
	}

	unlock := in.lockTitle(doc.CarrierID, doc.Title)
	defer unlock()

	previous, err := in.resolveVersion(ctx, doc)
	if err != nil {
		return nil, err
	}

	chunks := in.chunker.Chunk(doc.ID, req.Text)
	embedded := in.embedChunks(ctx, chunks)

	if err := in.store.SaveDocument(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	receipt := &models.IngestReceipt{
		DocumentID: doc.ID,
		Version:    doc.Version,
		Chunks:     len(chunks),
		Embedded:   embedded,
	}

	if previous != nil {
		if err := in.store.MarkSuperseded(ctx, previous.ID, doc.ID); err != nil {
			return nil, fmt.Errorf("failed to supersede previous version: %w", err)
		}
		if in.index != nil {
			if err := in.index.DeleteDocument(ctx, previous.ID); err != nil {
				in.logger.Warn("failed to remove superseded vectors", "document", previous.ID, "err", err)
			}
		}
		receipt.Superseded = previous.ID
	}

	receipt.Indexed = in.indexChunks(ctx, doc, chunks)

	in.logger.Info("ingested document",
		"carrier", doc.CarrierID, "document", doc.ID, "version", doc.Version,
		"chunks", receipt.Chunks, "embedded", receipt.Embedded, "indexed", receipt.Indexed)
	return receipt, nil
}

func (in *Ingestor) lockTitle(carrierID, title string) func() {
	v, _ := in.titleLocks.LoadOrStore(carrierID+"\x00"+title, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// resolveVersion assigns doc.Version and returns the document it replaces, if any
func (in *Ingestor) resolveVersion(ctx context.Context, doc *models.Document) (*models.Document, error) {
	latest, err := in.store.LatestDocument(ctx, doc.CarrierID, doc.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to look up previous version: %w", err)
	}

	switch {
	case latest == nil:
		doc.Version = 1
		return nil, nil
	case latest.ID == doc.ID:
		doc.Version = latest.Version
		doc.CreatedAt = latest.CreatedAt
		return nil, nil
	}

	// Content matching an older superseded version is reinstated as the newest version
	doc.Version = latest.Version + 1
	return latest, nil
}

// embedChunks fills chunk embeddings in place and returns how many succeeded
func (in *Ingestor) embedChunks(ctx context.Context, chunks []models.Chunk) int {
	if in.embedder == nil {
		in.logger.Warn("no embedder configured; chunks stored without vectors", "chunks", len(chunks))
		return 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)
	for i := range chunks {
		g.Go(func() error {
			vec, err := in.embedder.Embed(gctx, chunks[i].Text)
			if err != nil || len(vec) == 0 {
				in.logger.Warn("chunk embedding failed", "chunk", chunks[i].ID, "err", err)
				return nil
			}
			chunks[i].Embedding = vec
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for i := range chunks {
		if chunks[i].HasEmbedding() {
			n++
		}
	}
	return n
}

// indexChunks upserts embedded chunks and returns how many were indexed
func (in *Ingestor) indexChunks(ctx context.Context, doc *models.Document, chunks []models.Chunk) int {
	if in.index == nil {
		return 0
	}
	n := 0
	for i := range chunks {
		c := &chunks[i]
		if !c.HasEmbedding() {
			continue
		}
		meta := models.VectorMetadata{
			CarrierID:  doc.CarrierID,
			DocumentID: doc.ID,
			Section:    c.Section,
			Sequence:   c.Sequence,
		}
		if err := in.index.Upsert(ctx, c.ID, c.Embedding, meta); err != nil {
			in.logger.Warn("vector upsert failed", "chunk", c.ID, "err", err)
			continue
		}
		n++
	}
	return n
}
