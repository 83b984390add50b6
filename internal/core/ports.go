// ABOUTME: Interfaces the pipeline depends on for embeddings, search, storage and advice
// ABOUTME: Adapters live in internal/llm and internal/storage; tests supply fakes
package core

import (
	"context"

	"github.com/harper/carrierfit/internal/models"
)

// Embedder turns text into a dense vector. Any error or empty vector is an
// embedding failure that the caller recovers from.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex stores chunk vectors and answers filtered similarity queries.
// Scores are cosine similarity clamped to [0,1], highest first.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float64, meta models.VectorMetadata) error
	Query(ctx context.Context, vector []float64, topK int, filter models.VectorFilter) ([]models.VectorSearchResult, error)
	DeleteDocument(ctx context.Context, documentID string) error
	Count(ctx context.Context, filter models.VectorFilter) (int, error)
}

// DocumentStore persists carriers, documents and chunk text
type DocumentStore interface {
	GetCarrier(ctx context.Context, id string) (*models.Carrier, error)
	ListCarriers(ctx context.Context) ([]models.Carrier, error)

	// LatestDocument returns the newest version for (carrier, title), or nil when none exists
	LatestDocument(ctx context.Context, carrierID, title string) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	SaveDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error
	MarkSuperseded(ctx context.Context, documentID, supersededBy string) error
	CountDocuments(ctx context.Context) (int, error)

	// CitationSources loads body text and document context for the given chunks
	CitationSources(ctx context.Context, chunkIDs []string) (map[string]models.CitationSource, error)
}

// RecommendationCache keeps copies of past evaluations keyed by fingerprint
type RecommendationCache interface {
	SaveEvaluation(ctx context.Context, eval *models.Evaluation) error
	GetEvaluation(ctx context.Context, fingerprint string) (*models.Evaluation, error)
}

// Advisor produces optional narrative reasons for a recommendation.
// Its output is untrusted text that ParseAdvice must accept before use.
type Advisor interface {
	Advise(ctx context.Context, req models.AdviceRequest) (string, error)
}
