// ABOUTME: Evaluator runs query generation, retrieval, aggregation and ranking for one profile
// ABOUTME: Only document store failures abort an evaluation; everything else degrades
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
)

// EvaluateOptions tunes a single evaluation
type EvaluateOptions struct {
	// TopN truncates the ranked list when positive
	TopN int
}

// Evaluator matches client profiles against carriers
type Evaluator struct {
	queries    *QueryGenerator
	retriever  *Retriever
	aggregator *Aggregator
	store      DocumentStore
	cache      RecommendationCache
	advisor    Advisor
	scoring    config.Scoring
	retrieval  config.Retrieval
	logger     *log.Logger
}

// EvaluatorOption configures optional Evaluator collaborators
type EvaluatorOption func(*Evaluator)

// WithCache stores a copy of every evaluation
func WithCache(c RecommendationCache) EvaluatorOption {
	return func(e *Evaluator) { e.cache = c }
}

// WithAdvisor enables narrative advice on top of rule-based reasons
func WithAdvisor(a Advisor) EvaluatorOption {
	return func(e *Evaluator) { e.advisor = a }
}

// NewEvaluator wires the evaluation pipeline
func NewEvaluator(embedder Embedder, index VectorIndex, store DocumentStore,
	scoring config.Scoring, retrieval config.Retrieval, logger *log.Logger, opts ...EvaluatorOption) *Evaluator {

	e := &Evaluator{
		queries:    NewQueryGenerator(scoring),
		retriever:  NewRetriever(embedder, index, retrieval, logger),
		aggregator: NewAggregator(scoring),
		store:      store,
		scoring:    scoring,
		retrieval:  retrieval,
		logger:     logging.Component(logger, "evaluator"),
	}
	if e.retrieval.Concurrency < 1 {
		e.retrieval.Concurrency = config.DefaultRetrieval().Concurrency
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate ranks carriers for a profile. It always returns at least one
// recommendation unless the profile is invalid or the document store fails.
func (e *Evaluator) Evaluate(ctx context.Context, profile models.ClientProfile, carriers []models.Carrier, opts EvaluateOptions) ([]models.CarrierRecommendation, error) {
	p := profile.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	eligible := make([]models.Carrier, 0, len(carriers))
	for _, c := range carriers {
		if c.AvailableIn(p.State) {
			eligible = append(eligible, c)
		}
	}

	recs, err := e.evaluate(ctx, p, eligible)
	if err != nil {
		return nil, err
	}

	ranked := Rank(recs, opts.TopN, e.scoring.NeutralScore)
	e.remember(ctx, p, eligible, ranked)
	return ranked, nil
}

func (e *Evaluator) evaluate(ctx context.Context, p models.ClientProfile, carriers []models.Carrier) ([]models.CarrierRecommendation, error) {
	if len(carriers) == 0 {
		e.logger.Warn("no carriers available; returning fallback", "state", p.State)
		return []models.CarrierRecommendation{FallbackRecommendation(e.scoring.NeutralScore)}, nil
	}

	docs, err := e.store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if docs == 0 {
		e.logger.Warn("empty corpus; returning fallback")
		return []models.CarrierRecommendation{FallbackRecommendation(e.scoring.NeutralScore)}, nil
	}

	queries := e.queries.Generate(p)
	vectors := e.retriever.EmbedQueries(ctx, queries)
	e.logger.Debug("generated queries", "count", len(queries), "carriers", len(carriers))

	recs := make([]models.CarrierRecommendation, len(carriers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.retrieval.Concurrency)
	for i, carrier := range carriers {
		g.Go(func() error {
			hits := e.retriever.RetrieveCarrier(gctx, carrier.ID, queries, vectors)

			sources, err := e.store.CitationSources(gctx, e.aggregator.CitationCandidates(hits))
			if err != nil {
				return fmt.Errorf("failed to load citations for %s: %w", carrier.ID, err)
			}

			rec := e.aggregator.Aggregate(p, carrier, queries, hits, sources)
			e.advise(gctx, p, carrier, &rec)
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

// advise applies advisor output when it parses cleanly; otherwise the rule-based text stands
func (e *Evaluator) advise(ctx context.Context, p models.ClientProfile, carrier models.Carrier, rec *models.CarrierRecommendation) {
	if e.advisor == nil {
		return
	}
	raw, err := e.advisor.Advise(ctx, models.AdviceRequest{
		Carrier:    carrier,
		Profile:    p,
		FitScore:   rec.FitScore,
		Confidence: rec.Confidence,
		Reasons:    rec.Reasons,
		Advisories: rec.Advisories,
		Citations:  rec.Citations,
	})
	if err != nil {
		e.logger.Warn("advisor unavailable", "carrier", carrier.ID, "err", err)
		return
	}
	adv, err := ParseAdvice(raw)
	if err != nil {
		e.logger.Warn("discarding advisor output", "carrier", carrier.ID, "err", err)
		return
	}
	ApplyAdvice(rec, adv)
}

// remember writes a cached copy; failures are logged only
func (e *Evaluator) remember(ctx context.Context, p models.ClientProfile, carriers []models.Carrier, recs []models.CarrierRecommendation) {
	if e.cache == nil {
		return
	}
	eval := &models.Evaluation{
		ID:              "eval_" + uuid.New().String(),
		Fingerprint:     Fingerprint(p, carriers),
		Profile:         p,
		Recommendations: recs,
		CreatedAt:       time.Now().UTC(),
	}
	if err := e.cache.SaveEvaluation(ctx, eval); err != nil {
		e.logger.Warn("failed to cache evaluation", "fingerprint", eval.Fingerprint, "err", err)
	}
}

// Fingerprint identifies an evaluation by normalized profile and carrier set
func Fingerprint(p models.ClientProfile, carriers []models.Carrier) string {
	ids := make([]string, len(carriers))
	for i, c := range carriers {
		ids[i] = c.ID
	}
	sort.Strings(ids)

	payload, _ := json.Marshal(struct {
		Profile  models.ClientProfile `json:"profile"`
		Carriers []string             `json:"carriers"`
	}{p.Normalize(), ids})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}
