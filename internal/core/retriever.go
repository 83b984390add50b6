// ABOUTME: Retriever embeds profile queries and fans out filtered vector searches per carrier
// ABOUTME: Failures degrade to empty results for the affected query; no scoring happens here
package core

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
)

// Retriever runs similarity search for (carrier, query) pairs
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	cfg      config.Retrieval
	logger   *log.Logger
}

// NewRetriever creates a Retriever over the given embedder and index
func NewRetriever(embedder Embedder, index VectorIndex, cfg config.Retrieval, logger *log.Logger) *Retriever {
	if cfg.TopK < 1 {
		cfg.TopK = config.DefaultRetrieval().TopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultRetrieval().Timeout
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = config.DefaultRetrieval().Concurrency
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		logger:   logging.Component(logger, "retriever"),
	}
}

// EmbedQueries embeds each distinct query text once. The returned slice is
// indexed like queries; a nil entry marks a query whose embedding failed.
func (r *Retriever) EmbedQueries(ctx context.Context, queries []models.Query) [][]float64 {
	vectors := make([][]float64, len(queries))
	if r.embedder == nil {
		r.logger.Warn("no embedder configured; all queries excluded")
		return vectors
	}

	distinct := make(map[string][]int)
	var order []string
	for i, q := range queries {
		if _, seen := distinct[q.Text]; !seen {
			order = append(order, q.Text)
		}
		distinct[q.Text] = append(distinct[q.Text], i)
	}

	embedded := make([][]float64, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, text := range order {
		g.Go(func() error {
			vec, err := r.embedder.Embed(gctx, text)
			if err != nil {
				r.logger.Warn("query embedding failed", "query", text, "err", err)
				return nil
			}
			if len(vec) == 0 {
				r.logger.Warn("query embedding empty", "query", text)
				return nil
			}
			embedded[i] = vec
			return nil
		})
	}
	_ = g.Wait()

	for i, text := range order {
		for _, qi := range distinct[text] {
			vectors[qi] = embedded[i]
		}
	}
	return vectors
}

// RetrieveCarrier issues one filtered query per embedded probe, concurrently,
// and returns results indexed by query. Each call gets its own timeout.
func (r *Retriever) RetrieveCarrier(ctx context.Context, carrierID string, queries []models.Query, vectors [][]float64) [][]models.RetrievalResult {
	results := make([][]models.RetrievalResult, len(queries))
	filter := models.VectorFilter{CarrierID: carrierID}

	var g errgroup.Group
	for i := range queries {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
			defer cancel()

			hits, err := r.index.Query(callCtx, vectors[i], r.cfg.TopK, filter)
			if err != nil {
				r.logger.Warn("vector query failed", "carrier", carrierID, "dimension", queries[i].Dimension, "err", err)
				return nil
			}

			out := make([]models.RetrievalResult, 0, len(hits))
			for _, h := range hits {
				if !filter.Matches(h.Metadata) {
					continue
				}
				out = append(out, models.RetrievalResult{
					QueryIndex: i,
					ChunkID:    h.ChunkID,
					DocumentID: h.Metadata.DocumentID,
					CarrierID:  h.Metadata.CarrierID,
					Section:    h.Metadata.Section,
					Score:      models.ClampScore(h.SimilarityScore),
				})
			}
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return results
}
