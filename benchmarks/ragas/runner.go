// ABOUTME: Benchmark runner - ingests each scenario's corpus and scores the evaluation
// ABOUTME: Every scenario runs against its own in-memory store for isolation
package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/core"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/storage/sqlite"
)

// BenchmarkRunner executes benchmark scenarios
type BenchmarkRunner struct {
	embedder core.Embedder
	cfg      *config.Config
	logger   *log.Logger
	metrics  *MetricsCalculator
	out      io.Writer
	verbose  bool
}

// NewBenchmarkRunner creates a runner that embeds with embedder.
// A nil cfg uses the built-in thresholds.
func NewBenchmarkRunner(embedder core.Embedder, cfg *config.Config, logger *log.Logger, out io.Writer, verbose bool) *BenchmarkRunner {
	if cfg == nil {
		cfg = &config.Config{
			VectorBackend: config.BackendSQLite,
			Scoring:       config.DefaultScoring(),
			Retrieval:     config.DefaultRetrieval(),
			Chunking:      config.DefaultChunking(),
		}
	}
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		embedder: embedder,
		cfg:      cfg,
		logger:   logging.OrDiscard(logger),
		metrics:  NewMetricsCalculator(),
		out:      out,
		verbose:  verbose,
	}
}

// RunTest executes a single benchmark scenario
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to create test storage: %w", err)
	}
	a := app.New(r.cfg, r.logger, store, store.Vectors(), r.embedder, nil)
	defer func() { _ = a.Close() }()

	if err := r.setupTest(ctx, a, scenario); err != nil {
		return TestResult{}, fmt.Errorf("setup failed: %w", err)
	}

	recs, err := a.Evaluate(ctx, scenario.Profile, nil, 0)
	if err != nil {
		return TestResult{}, fmt.Errorf("evaluation failed: %w", err)
	}

	if r.verbose {
		for i, rec := range recs {
			fmt.Fprintf(r.out, "  %d. %s fit=%d confidence=%s citations=%d\n",
				i+1, rec.CarrierName, rec.FitScore, rec.Confidence, len(rec.Citations))
		}
	}

	result := r.metrics.EvaluateTest(scenario, recs)

	if r.verbose {
		fmt.Fprintf(r.out, "\nFaithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Fprintf(r.out, "Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Fprintf(r.out, "Top carrier correct: %v\n", result.TopCarrierCorrect)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}

	return result, nil
}

// setupTest registers the scenario's carriers and ingests its guidelines in order
func (r *BenchmarkRunner) setupTest(ctx context.Context, a *app.App, scenario TestScenario) error {
	for i := range scenario.Carriers {
		if err := a.Store.SaveCarrier(ctx, &scenario.Carriers[i]); err != nil {
			return fmt.Errorf("failed to register %s: %w", scenario.Carriers[i].ID, err)
		}
	}

	for _, g := range scenario.Guidelines {
		receipt, err := a.Ingest(ctx, models.IngestRequest{
			Text:          g.Text,
			CarrierID:     g.CarrierID,
			Title:         g.Title,
			EffectiveDate: g.EffectiveDate,
		})
		if err != nil {
			return fmt.Errorf("failed to ingest %s/%s: %w", g.CarrierID, g.Title, err)
		}
		if r.verbose {
			fmt.Fprintf(r.out, "Ingested %s/%s v%d (%d chunks, %d indexed)\n",
				g.CarrierID, g.Title, receipt.Version, receipt.Chunks, receipt.Indexed)
		}
	}
	return nil
}

// RunAllTests executes every scenario. A scenario that errors is recorded as FAIL.
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := AllScenarios()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			r.logger.Warn("scenario failed", "scenario", scenario.ID, "err", err)
			result = TestResult{
				TestID:       scenario.ID,
				TestName:     scenario.Name,
				Status:       "FAIL",
				ErrorMessage: err.Error(),
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	passed, failed := 0, 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	summary := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"total_tests": len(results),
		"passed":      passed,
		"failed":      failed,
		"results":     results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
