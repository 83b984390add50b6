// ABOUTME: Command-line benchmark runner for carrier recommendation quality
// ABOUTME: Runs scenarios against OpenAI embeddings and writes JSON results
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/harper/carrierfit/benchmarks/ragas"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/llm"
	"github.com/harper/carrierfit/internal/logging"
)

func main() {
	testID := flag.String("test", "", "Run specific scenario (diabetes, revision, avocation). If empty, runs all.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	logger := logging.New(os.Stderr, "warn")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if cfg.OpenAIKey == "" {
		logger.Fatal("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg), logger)
	if err != nil {
		logger.Fatal("failed to create OpenAI client", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("========================================")
	fmt.Println("Carrier Fit Benchmarks")
	fmt.Println("========================================")

	runner := ragas.NewBenchmarkRunner(client, cfg, logger, os.Stdout, *verbose)

	var results []ragas.TestResult
	if *testID == "" {
		results, err = runner.RunAllTests(ctx)
		if err != nil {
			logger.Fatal("benchmark failed", "err", err)
		}
	} else {
		scenario, ok := ragas.ScenarioByID(*testID)
		if !ok {
			logger.Fatal("unknown scenario", "id", *testID, "valid", "diabetes, revision, avocation")
		}
		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			logger.Fatal("scenario failed", "id", *testID, "err", err)
		}
		results = []ragas.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	failed := 0
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Top carrier correct: %v\n", result.TopCarrierCorrect)
		fmt.Printf("  Status: %s\n", result.Status)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", result.ErrorMessage)
		}
		if result.Status != "PASS" {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total: %d  Passed: %d  Failed: %d\n", len(results), len(results)-failed, failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		logger.Fatal("failed to export results", "err", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
