// ABOUTME: Wires configuration, storage, OpenAI adapters and the core pipeline together
// ABOUTME: Shared by the CLI commands, the MCP server and the directory watcher
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harper/carrierfit/internal/charm"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/core"
	"github.com/harper/carrierfit/internal/llm"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/storage"
	"github.com/harper/carrierfit/internal/storage/sqlite"
)

// App holds the long-lived collaborators for one process
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Store     *sqlite.Storage
	Index     core.VectorIndex
	Charm     *charm.Client
	Ingestor  *core.Ingestor
	Evaluator *core.Evaluator
}

// Open builds an App from configuration, opening the database and the
// configured vector backend
func Open(cfg *config.Config, logger *log.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = sqlite.DefaultDBPath()
	}
	store, err := sqlite.NewStorageWithPath(dbPath)
	if err != nil {
		return nil, err
	}

	var (
		index       core.VectorIndex = store.Vectors()
		charmClient *charm.Client
	)
	if cfg.VectorBackend == config.BackendCharm {
		charmClient, err = charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to open charm vector index: %w", err)
		}
		index = storage.NewVectorStorage(charmClient)
	}

	var (
		embedder core.Embedder = llm.UnavailableEmbedder{}
		advisor  core.Advisor
	)
	if cfg.OpenAIKey != "" {
		client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg), logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		embedder = client
		if cfg.AdvisorEnabled {
			advisor = client
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set; documents will be stored without vectors")
	}

	a := New(cfg, logger, store, index, embedder, advisor)
	a.Charm = charmClient
	return a, nil
}

// New assembles an App from already-open collaborators. A nil advisor
// disables narrative advice.
func New(cfg *config.Config, logger *log.Logger, store *sqlite.Storage, index core.VectorIndex, embedder core.Embedder, advisor core.Advisor) *App {
	logger = logging.OrDiscard(logger)

	chunker := core.NewChunkEngine(
		core.WithTargetTokens(cfg.Chunking.TargetTokens),
		core.WithOverlapWords(cfg.Chunking.OverlapWords),
	)

	opts := []core.EvaluatorOption{core.WithCache(store)}
	if advisor != nil {
		opts = append(opts, core.WithAdvisor(advisor))
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Index:     index,
		Ingestor:  core.NewIngestor(chunker, embedder, index, store, cfg.Retrieval.Concurrency, logger),
		Evaluator: core.NewEvaluator(embedder, index, store, cfg.Scoring, cfg.Retrieval, logger, opts...),
	}
}

// Close releases the database and charm handles
func (a *App) Close() error {
	var errs []error
	if a.Charm != nil {
		errs = append(errs, a.Charm.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

// Ingest stores one guideline document
func (a *App) Ingest(ctx context.Context, req models.IngestRequest) (*models.IngestReceipt, error) {
	return a.Ingestor.Ingest(ctx, req)
}

// Evaluate ranks the named carriers, or every registered carrier when none
// are named, for a client profile
func (a *App) Evaluate(ctx context.Context, profile models.ClientProfile, carrierIDs []string, topN int) ([]models.CarrierRecommendation, error) {
	carriers, err := a.ResolveCarriers(ctx, carrierIDs)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = a.Config.Retrieval.TopN
	}
	return a.Evaluator.Evaluate(ctx, profile, carriers, core.EvaluateOptions{TopN: topN})
}

// ResolveCarriers loads carriers by ID, or all carriers when ids is empty
func (a *App) ResolveCarriers(ctx context.Context, ids []string) ([]models.Carrier, error) {
	if len(ids) == 0 {
		return a.Store.ListCarriers(ctx)
	}

	carriers := make([]models.Carrier, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		c, err := a.Store.GetCarrier(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownCarrier, id)
		}
		if err != nil {
			return nil, err
		}
		carriers = append(carriers, *c)
	}
	return carriers, nil
}

// DeleteCarrier removes a carrier with its documents, purging their vectors
// from the configured index as well as the database
func (a *App) DeleteCarrier(ctx context.Context, id string) error {
	if _, err := a.Store.GetCarrier(ctx, id); err != nil {
		return err
	}
	docs, err := a.Store.ListDocuments(ctx, id, true)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := a.Index.DeleteDocument(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete vectors for %s: %w", d.ID, err)
		}
	}
	return a.Store.DeleteCarrier(ctx, id)
}

// CachedEvaluation looks up a past evaluation by fingerprint
func (a *App) CachedEvaluation(ctx context.Context, fingerprint string) (*models.Evaluation, error) {
	return a.Store.GetEvaluation(ctx, fingerprint)
}

// Fingerprint returns the cache key an evaluation of profile over carrierIDs would use
func (a *App) Fingerprint(ctx context.Context, profile models.ClientProfile, carrierIDs []string) (string, error) {
	carriers, err := a.ResolveCarriers(ctx, carrierIDs)
	if err != nil {
		return "", err
	}
	p := profile.Normalize()
	eligible := carriers[:0:0]
	for _, c := range carriers {
		if c.AvailableIn(p.State) {
			eligible = append(eligible, c)
		}
	}
	return core.Fingerprint(p, eligible), nil
}
